package service

import (
	"context"
	"fmt"
	"time"
	"unfc-tracker/internal/api"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/domain"
	"unfc-tracker/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job is one beatmap to ingest. Beatmap and Scores, when present, skip the
// corresponding fetch. LinkURL is the tracking input carried into the built
// record.
type Job struct {
	Position       int
	BeatmapID      int
	LinkURL        string
	Beatmap        *domain.Beatmap
	Scores         []domain.Score
	HasScores      bool
	WantsWriteback bool
}

type Result struct {
	Job       Job
	Record    domain.Record
	FullCombo bool
	// Writeback is the canonical beatmap URL for jobs that asked for one. It
	// replaces the tracking input when the flush applies it.
	Writeback     string
	ScoreFallback bool
}

type Summary struct {
	Jobs           int
	Built          int
	Errored        int
	ScoreFallbacks int
	Chunks         int
}

// ChunkError aborts a run. It names the chunk and the beatmap whose request
// failed.
type ChunkError struct {
	Chunk     int
	BeatmapID int
	Err       error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d aborted on beatmap %d: %v", e.Chunk, e.BeatmapID, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// FlushFunc persists one chunk of results, in submitted order.
type FlushFunc func(ctx context.Context, chunk int, results []Result) error

type Pipeline struct {
	fetcher   Fetcher
	chunkSize int
	pause     time.Duration
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewPipeline(fetcher Fetcher, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		chunkSize: cfg.ChunkSize,
		pause:     cfg.ChunkPause,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Run ingests jobs chunk by chunk. Chunks flushed before a failure stay
// flushed.
func (p *Pipeline) Run(ctx context.Context, jobs []Job, flush FlushFunc) (Summary, error) {
	summary := Summary{Jobs: len(jobs)}
	size := p.chunkSize
	if size <= 0 {
		size = 1
	}

	for start := 0; start < len(jobs); start += size {
		chunk := start/size + 1
		end := min(start+size, len(jobs))

		if chunk > 1 && p.pause > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(p.pause):
			}
		}

		results, err := p.runChunk(ctx, chunk, jobs[start:end])
		if err != nil {
			p.logger.Error().Err(err).Int("chunk", chunk).Msg("chunk aborted")
			return summary, err
		}

		for _, res := range results {
			switch {
			case res.Record.IsError():
				summary.Errored++
				p.metrics.JobDone("errored")
			default:
				summary.Built++
				p.metrics.JobDone("built")
			}
			if res.ScoreFallback {
				summary.ScoreFallbacks++
				p.metrics.JobDone("fallback")
			}
		}

		if flush != nil {
			if err := flush(ctx, chunk, results); err != nil {
				return summary, fmt.Errorf("failed to flush chunk %d: %w", chunk, err)
			}
		}
		summary.Chunks++

		p.logger.Debug().
			Int("chunk", chunk).
			Int("jobs", len(results)).
			Int("done", end).
			Int("total", len(jobs)).
			Msg("chunk flushed")
	}

	return summary, nil
}

func (p *Pipeline) runChunk(ctx context.Context, chunk int, jobs []Job) ([]Result, error) {
	needMeta := func(i int) bool { return jobs[i].Beatmap == nil }
	metaBodies, err := p.fetchAll(ctx, chunk, jobs, needMeta, p.fetcher.GetBeatmap)
	if err != nil {
		return nil, err
	}

	now := p.now()
	results := make([]Result, len(jobs))
	beatmaps := make([]*domain.Beatmap, len(jobs))
	for i, job := range jobs {
		results[i].Job = job
		if job.WantsWriteback {
			results[i].Writeback = domain.BeatmapURL(job.BeatmapID)
		}

		if job.Beatmap != nil {
			beatmaps[i] = job.Beatmap
			continue
		}
		b, err := parseBeatmap(metaBodies[i], job.BeatmapID)
		if err != nil {
			p.logger.Warn().Err(err).Int("beatmap_id", job.BeatmapID).Msg("unusable beatmap metadata")
			results[i].Record = domain.ErrorRecord(job.BeatmapID, err.Error(), now)
			continue
		}
		beatmaps[i] = b
	}

	// no point asking for scores of a beatmap that failed to resolve
	needScores := func(i int) bool { return !jobs[i].HasScores && beatmaps[i] != nil }
	scoreBodies, err := p.fetchAll(ctx, chunk, jobs, needScores, p.fetcher.GetScores)
	if err != nil {
		return nil, err
	}

	for i, job := range jobs {
		b := beatmaps[i]
		if b == nil {
			continue
		}

		scores := job.Scores
		if !job.HasScores {
			parsed, err := api.ParseScores(scoreBodies[i])
			if err != nil {
				p.logger.Warn().Err(err).Int("beatmap_id", job.BeatmapID).Msg("unparseable scores, using empty leaderboard")
				results[i].ScoreFallback = true
			}
			scores = parsed
		}

		results[i].Record = domain.BuildRecord(*b, scores, now)
		results[i].Record.Link.URL = job.LinkURL
		results[i].FullCombo = domain.SelectBestScore(scores, b.MaxCombo).FullCombo
	}

	return results, nil
}

// fetchAll issues one concurrent batch of requests. Any transport failure or
// non-success status aborts the whole batch.
func (p *Pipeline) fetchAll(ctx context.Context, chunk int, jobs []Job, want func(i int) bool, fetch func(context.Context, int) ([]byte, error)) ([][]byte, error) {
	bodies := make([][]byte, len(jobs))
	g, gCtx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		if !want(i) {
			continue
		}
		g.Go(func() error {
			body, err := fetch(gCtx, job.BeatmapID)
			if err != nil {
				return &ChunkError{Chunk: chunk, BeatmapID: job.BeatmapID, Err: err}
			}
			bodies[i] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bodies, nil
}

func parseBeatmap(body []byte, beatmapID int) (*domain.Beatmap, error) {
	beatmaps, err := api.ParseBeatmaps(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse beatmap %d: %w", beatmapID, err)
	}
	for _, b := range beatmaps {
		if b.BeatmapID == beatmapID {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("beatmap %d not in response", beatmapID)
}
