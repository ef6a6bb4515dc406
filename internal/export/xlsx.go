package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unfc-tracker/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	DataSheet    = "Data"
	HistorySheet = "History"
	InfoSheet    = "Info"

	dateLayout = "2006-01-02"
)

var DataHeaders = []string{
	"Beatmap", "Beatmap ID", "Set ID", "Mapper", "Stars", "Length", "BPM",
	"CS", "AR", "OD", "HP", "Max Combo", "Status", "Ranked Date", "Days Ranked",
	"Player", "Mods", "Combo", "Rank", "Score Date", "% FC",
}

var HistoryHeaders = []string{
	"Beatmap", "Beatmap ID", "Set ID", "Mapper", "Stars", "Length", "BPM",
	"CS", "AR", "OD", "HP", "Max Combo", "Status", "Ranked Date", "Days to FC",
	"Player", "Mods", "Combo", "Rank", "Score Date",
}

// link columns, 1-based
const (
	beatmapCol = 1
	mapperCol  = 4
	playerCol  = 16
)

type Workbook struct {
	Records     []domain.Record
	History     []domain.HistoryEntry
	LastUpdated string
}

func WriteFile(path string, wb Workbook) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, wb); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders the Data and History tables as an xlsx workbook. Link fields
// become hyperlink cells.
func Write(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		return fmt.Errorf("failed to name data sheet: %w", err)
	}
	for _, name := range []string{HistorySheet, InfoSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	if err := writeRow(f, DataSheet, 1, toCells(DataHeaders)); err != nil {
		return err
	}
	for i, r := range wb.Records {
		row := i + 2
		if err := writeRow(f, DataSheet, row, DataRow(r)); err != nil {
			return err
		}
		if err := writeLinks(f, DataSheet, row, r.Link, r.Creator, r.Player); err != nil {
			return err
		}
	}

	if err := writeRow(f, HistorySheet, 1, toCells(HistoryHeaders)); err != nil {
		return err
	}
	for i, e := range wb.History {
		row := i + 2
		if err := writeRow(f, HistorySheet, row, HistoryRow(e)); err != nil {
			return err
		}
		if err := writeLinks(f, HistorySheet, row, e.Link, e.Creator, e.Player); err != nil {
			return err
		}
	}

	if err := writeRow(f, InfoSheet, 1, []interface{}{"Last Updated", wb.LastUpdated}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// DataRow is the 21-column rendering of a Data row. Error placeholders carry
// only the id and the message.
func DataRow(r domain.Record) []interface{} {
	if r.IsError() {
		row := make([]interface{}, len(DataHeaders))
		row[0] = "Error: " + r.Error
		row[1] = r.BeatmapID
		return row
	}
	return []interface{}{
		r.Link.Label, r.BeatmapID, r.BeatmapsetID, r.Creator.Label, r.Stars,
		FormatLength(r.Length), r.BPM, r.CS, r.AR, r.OD, r.HP, r.MaxCombo,
		r.Status.String(), formatDate(r.RankedAt), r.DaysRanked, r.Player.Label,
		r.Mods.String(), r.Combo, string(r.Rank), formatDatePtr(r.ScoreDate),
		roundPercent(r.PercentFC),
	}
}

func HistoryRow(e domain.HistoryEntry) []interface{} {
	var daysToFC interface{} = ""
	if e.DaysToFC != nil {
		daysToFC = *e.DaysToFC
	}
	return []interface{}{
		e.Link.Label, e.BeatmapID, e.BeatmapsetID, e.Creator.Label, e.Stars,
		FormatLength(e.Length), e.BPM, e.CS, e.AR, e.OD, e.HP, e.MaxCombo,
		e.Status.String(), formatDate(e.RankedAt), daysToFC, e.Player.Label,
		e.Mods.String(), e.Combo, string(e.Rank), formatDatePtr(e.ScoreDate),
	}
}

// FormatLength renders seconds as m:ss.
func FormatLength(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeLinks(f *excelize.File, sheet string, row int, beatmap, mapper, player domain.Link) error {
	links := []struct {
		col  int
		link domain.Link
	}{
		{beatmapCol, beatmap},
		{mapperCol, mapper},
		{playerCol, player},
	}
	for _, l := range links {
		if l.link.URL == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(l.col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellHyperLink(sheet, cell, l.link.URL, "External"); err != nil {
			return fmt.Errorf("failed to link %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func roundPercent(p float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 2, 64), 64)
	return v
}
