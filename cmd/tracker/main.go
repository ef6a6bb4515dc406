package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/export"
	fxmodules "unfc-tracker/internal/fx"
	"unfc-tracker/internal/service"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

func main() {
	app := &cli.App{
		Name:  "unfc-tracker",
		Usage: "track ranked osu! beatmaps nobody on the top 50 has full-comboed",
		Commands: []*cli.Command{
			serveCommand(),
			refreshCommand(),
			discoverCommand(),
			addCommand(),
			settleCommand(),
			moveCommand(),
			sortHistoryCommand(),
			scheduleCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type deps struct {
	tracker *service.TrackerService
	cfg     *config.Config
}

// withTracker builds the core graph for a one-shot command. Ctrl-C cancels
// the operation between chunks.
func withTracker(c *cli.Context, fn func(ctx context.Context, d deps) error) error {
	var (
		d     deps
		sqlDB *sql.DB
	)
	app := fx.New(
		fxmodules.Core,
		fx.NopLogger,
		fx.Populate(&d.tracker, &d.cfg, &sqlDB),
	)
	if err := app.Err(); err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, d)
}

func reportAction(op func(ctx context.Context, d deps, c *cli.Context) (service.Report, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		return withTracker(c, func(ctx context.Context, d deps) error {
			report, err := op(ctx, d, c)
			if err != nil {
				return err
			}
			fmt.Println(report.Message)
			return nil
		})
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "re-fetch every tracked beatmap and archive settled full combos",
		Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
			return d.tracker.Refresh(ctx)
		}),
	}
}

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "add newly ranked beatmaps without a full combo",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "since",
				Usage: `start of the window: a date, an RFC 3339 time or a phrase like "3 days ago"`,
			},
		},
		Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
			var since *time.Time
			if raw := c.String("since"); raw != "" {
				t, err := service.ParseSince(raw, time.Now().In(d.cfg.Timezone))
				if err != nil {
					return service.Report{}, err
				}
				since = &t
			}
			return d.tracker.Discover(ctx, since)
		}),
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "track a single beatmap",
		ArgsUsage: "<beatmap link or id>",
		Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
			return d.tracker.Add(ctx, c.Args().First())
		}),
	}
}

func settleCommand() *cli.Command {
	return &cli.Command{
		Name:  "settle",
		Usage: "archive full combos older than the settle threshold",
		Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
			return d.tracker.Settle(ctx)
		}),
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "move a Data row to History by hand",
		ArgsUsage: "<row>",
		Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
			return d.tracker.Move(ctx, c.Args().First())
		}),
	}
}

func sortHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "sort-history",
		Usage: "order History by score date, newest first",
		Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
			return d.tracker.SortHistory(ctx)
		}),
	}
}

func scheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "manage the daily refresh and discover triggers",
		Subcommands: []*cli.Command{
			{
				Name:  "install",
				Usage: "enable both daily triggers",
				Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
					return d.tracker.SetSchedule(ctx, true)
				}),
			},
			{
				Name:  "remove",
				Usage: "disable both daily triggers",
				Action: reportAction(func(ctx context.Context, d deps, c *cli.Context) (service.Report, error) {
					return d.tracker.SetSchedule(ctx, false)
				}),
			},
			{
				Name:  "status",
				Usage: "print schedule, lease and table sizes",
				Action: func(c *cli.Context) error {
					return withTracker(c, func(ctx context.Context, d deps) error {
						st, err := d.tracker.Status(ctx)
						if err != nil {
							return err
						}
						enc := json.NewEncoder(os.Stdout)
						enc.SetIndent("", "  ")
						return enc.Encode(st)
					})
				},
			},
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write Data and History to an xlsx workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "unfc.xlsx",
				Usage:   "output path",
			},
		},
		Action: func(c *cli.Context) error {
			return withTracker(c, func(ctx context.Context, d deps) error {
				wb, err := d.tracker.Workbook(ctx)
				if err != nil {
					return err
				}
				if err := export.WriteFile(c.String("out"), wb); err != nil {
					return err
				}
				fmt.Printf("Exported %d records and %d history entries to %s\n", len(wb.Records), len(wb.History), c.String("out"))
				return nil
			})
		},
	}
}
