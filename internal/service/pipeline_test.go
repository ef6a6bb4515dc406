package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"unfc-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow    = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	rankedLong = testNow.AddDate(0, -6, 0)
)

func newTestPipeline(fetcher Fetcher, chunkSize int) *Pipeline {
	cfg := testConfig()
	cfg.ChunkSize = chunkSize
	p := NewPipeline(fetcher, cfg, nil, zerolog.Nop())
	p.now = func() time.Time { return testNow }
	return p
}

func jobsFor(ids ...int) []Job {
	jobs := make([]Job, len(ids))
	for i, id := range ids {
		jobs[i] = Job{Position: i + 1, BeatmapID: id}
	}
	return jobs
}

func TestPipeline_FlushesInSubmittedOrder(t *testing.T) {
	fetcher := newFakeFetcher()
	ids := []int{1, 2, 3, 4, 5, 6, 7}
	for i, id := range ids {
		fetcher.addBeatmap(testBeatmap(id, 500, rankedLong))
		// earlier jobs finish later
		fetcher.delay[id] = time.Duration(len(ids)-i) * 5 * time.Millisecond
	}

	var flushed [][]int
	var chunks []int
	summary, err := newTestPipeline(fetcher, 3).Run(context.Background(), jobsFor(ids...), func(_ context.Context, chunk int, results []Result) error {
		chunks = append(chunks, chunk)
		var got []int
		for _, r := range results {
			got = append(got, r.Record.BeatmapID)
		}
		flushed = append(flushed, got)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, chunks)
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}, flushed)
	assert.Equal(t, Summary{Jobs: 7, Built: 7, Chunks: 3}, summary)
}

func TestPipeline_AbortsOnTransportFailure(t *testing.T) {
	fetcher := newFakeFetcher()
	for _, id := range []int{1, 2, 3, 4} {
		fetcher.addBeatmap(testBeatmap(id, 500, rankedLong))
	}
	transport := errors.New("connection reset")
	fetcher.scoreErr[3] = transport

	var flushed []int
	summary, err := newTestPipeline(fetcher, 2).Run(context.Background(), jobsFor(1, 2, 3, 4), func(_ context.Context, _ int, results []Result) error {
		for _, r := range results {
			flushed = append(flushed, r.Record.BeatmapID)
		}
		return nil
	})

	var chunkErr *ChunkError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 2, chunkErr.Chunk)
	assert.Equal(t, 3, chunkErr.BeatmapID)
	require.ErrorIs(t, err, transport)

	assert.Equal(t, []int{1, 2}, flushed, "chunks before the failure stay flushed")
	assert.Equal(t, 1, summary.Chunks)
}

func TestPipeline_MetadataFailureAborts(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addBeatmap(testBeatmap(1, 500, rankedLong))
	fetcher.metaErr[1] = errors.New("dial tcp: timeout")

	_, err := newTestPipeline(fetcher, 15).Run(context.Background(), jobsFor(1), nil)

	var chunkErr *ChunkError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 1, chunkErr.Chunk)
	assert.Empty(t, fetcher.scoreCalls)
}

func TestPipeline_DegradesMalformedResponses(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.beatmaps[1] = []byte("<html>502</html>")
	fetcher.beatmaps[2] = []byte("[]")
	fetcher.addBeatmap(testBeatmap(3, 500, rankedLong))
	fetcher.scores[3] = []byte("{broken")

	var results []Result
	summary, err := newTestPipeline(fetcher, 15).Run(context.Background(), jobsFor(1, 2, 3), func(_ context.Context, _ int, rs []Result) error {
		results = rs
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results[:2] {
		assert.True(t, r.Record.IsError())
		assert.NotEmpty(t, r.Record.Error)
		assert.Empty(t, r.Record.Link.Label)
	}

	fallback := results[2]
	assert.False(t, fallback.Record.IsError())
	assert.True(t, fallback.ScoreFallback)
	assert.Zero(t, fallback.Record.Combo)
	assert.Zero(t, fallback.Record.PercentFC)

	assert.Equal(t, Summary{Jobs: 3, Built: 1, Errored: 2, ScoreFallbacks: 1, Chunks: 1}, summary)
	assert.ElementsMatch(t, []int{3}, fetcher.scoreCalls, "failed beatmaps are not asked for scores")
}

func TestPipeline_ResponseForAnotherBeatmapIsAnError(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.beatmaps[1] = beatmapBody(testBeatmap(999, 500, rankedLong))
	fetcher.addBeatmap(testBeatmap(2, 500, rankedLong))

	var results []Result
	summary, err := newTestPipeline(fetcher, 15).Run(context.Background(), jobsFor(1, 2), func(_ context.Context, _ int, rs []Result) error {
		results = rs
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Record.IsError())
	assert.Equal(t, 1, results[0].Record.BeatmapID)
	assert.Contains(t, results[0].Record.Error, "not in response")

	assert.False(t, results[1].Record.IsError())
	assert.Equal(t, 2, results[1].Record.BeatmapID)

	assert.Equal(t, 1, summary.Errored)
	assert.Equal(t, []int{2}, fetcher.scoreCalls)
}

func TestPipeline_LinkURLCarriedIntoRecord(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addBeatmap(testBeatmap(1, 500, rankedLong))
	fetcher.addBeatmap(testBeatmap(2, 500, rankedLong))

	jobs := []Job{
		{Position: 1, BeatmapID: 1, LinkURL: "https://osu.ppy.sh/beatmapsets/1001#osu/1"},
		{Position: 2, BeatmapID: 2, WantsWriteback: true},
	}
	var results []Result
	_, err := newTestPipeline(fetcher, 15).Run(context.Background(), jobs, func(_ context.Context, _ int, rs []Result) error {
		results = rs
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "https://osu.ppy.sh/beatmapsets/1001#osu/1", results[0].Record.Link.URL)
	assert.Empty(t, results[0].Writeback)

	assert.Empty(t, results[1].Record.Link.URL)
	assert.Equal(t, "https://osu.ppy.sh/b/2", results[1].Writeback)
}

func TestPipeline_UsesPrefetchedData(t *testing.T) {
	fetcher := newFakeFetcher()
	b := testBeatmap(9, 1000, rankedLong)
	date := testNow.AddDate(0, 0, -1)

	jobs := []Job{{
		BeatmapID:      9,
		Beatmap:        &b,
		Scores:         []domain.Score{{UserID: 5, Username: "cookiezi", Combo: 1000, Rank: domain.RankS, Date: &date}},
		HasScores:      true,
		WantsWriteback: true,
	}}

	var result Result
	_, err := newTestPipeline(fetcher, 15).Run(context.Background(), jobs, func(_ context.Context, _ int, rs []Result) error {
		result = rs[0]
		return nil
	})
	require.NoError(t, err)

	assert.Empty(t, fetcher.metaCalls)
	assert.Empty(t, fetcher.scoreCalls)
	assert.True(t, result.FullCombo)
	assert.Equal(t, "https://osu.ppy.sh/b/9", result.Writeback)
	assert.Equal(t, "cookiezi", result.Record.Player.Label)
}

func TestPipeline_CancelledDuringPause(t *testing.T) {
	fetcher := newFakeFetcher()
	for _, id := range []int{1, 2} {
		fetcher.addBeatmap(testBeatmap(id, 500, rankedLong))
	}
	p := newTestPipeline(fetcher, 1)
	p.pause = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	_, err := p.Run(ctx, jobsFor(1, 2), func(context.Context, int, []Result) error {
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1}, fetcher.metaCalls)
}

func TestPipeline_FlushErrorStopsRun(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addBeatmap(testBeatmap(1, 500, rankedLong))
	fetcher.addBeatmap(testBeatmap(2, 500, rankedLong))

	boom := errors.New("disk full")
	calls := 0
	_, err := newTestPipeline(fetcher, 1).Run(context.Background(), jobsFor(1, 2), func(context.Context, int, []Result) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
