package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"
	"unfc-tracker/internal/api"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/domain"
	"unfc-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// fakeStore keeps rows in slices so that deleting a position shifts every
// later row, like the real table.
type fakeStore struct {
	records []domain.Record
	history []domain.HistoryEntry
	meta    map[string]string
	deleted []int
	nextID  int
}

func newFakeStore(records ...domain.Record) *fakeStore {
	s := &fakeStore{meta: map[string]string{}}
	for _, r := range records {
		_, _ = s.AppendRecord(context.Background(), r)
	}
	return s
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	records := append([]domain.Record(nil), s.records...)
	history := append([]domain.HistoryEntry(nil), s.history...)
	if err := fn(ctx); err != nil {
		s.records, s.history = records, history
		return err
	}
	return nil
}

func (s *fakeStore) renumber() {
	for i := range s.records {
		s.records[i].Position = i + 1
	}
}

func (s *fakeStore) ListRecords(context.Context) ([]domain.Record, error) {
	s.renumber()
	return append([]domain.Record(nil), s.records...), nil
}

func (s *fakeStore) GetRecordAt(_ context.Context, position int) (domain.Record, error) {
	if position < 1 || position > len(s.records) {
		return domain.Record{}, repository.ErrNotFound
	}
	s.renumber()
	return s.records[position-1], nil
}

func (s *fakeStore) CountRecords(context.Context) (int, error) {
	return len(s.records), nil
}

func (s *fakeStore) Tracked(_ context.Context, beatmapID int) (bool, error) {
	for _, r := range s.records {
		if r.BeatmapID == beatmapID {
			return true, nil
		}
	}
	for _, e := range s.history {
		if e.BeatmapID == beatmapID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) AppendRecord(_ context.Context, rec domain.Record) (int, error) {
	for _, r := range s.records {
		if r.BeatmapID == rec.BeatmapID {
			return 0, fmt.Errorf("duplicate beatmap %d", rec.BeatmapID)
		}
	}
	s.records = append(s.records, rec)
	s.renumber()
	return len(s.records), nil
}

func (s *fakeStore) UpdateRecord(_ context.Context, rec domain.Record) error {
	for i, r := range s.records {
		if r.BeatmapID == rec.BeatmapID {
			rec.Position = r.Position
			s.records[i] = rec
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeStore) DeleteRecordAt(_ context.Context, position int) error {
	if position < 1 || position > len(s.records) {
		return repository.ErrNotFound
	}
	s.records = append(s.records[:position-1], s.records[position:]...)
	s.renumber()
	s.deleted = append(s.deleted, position)
	return nil
}

func (s *fakeStore) SortRecords(context.Context) error {
	domain.SortRecords(s.records)
	return nil
}

func (s *fakeStore) ListHistory(context.Context) ([]domain.HistoryEntry, error) {
	return append([]domain.HistoryEntry(nil), s.history...), nil
}

func (s *fakeStore) AppendHistory(_ context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	for _, e := range s.history {
		if e.BeatmapID == entry.BeatmapID {
			return domain.HistoryEntry{}, fmt.Errorf("duplicate history beatmap %d", entry.BeatmapID)
		}
	}
	s.nextID++
	entry.ID = "h" + strconv.Itoa(s.nextID)
	entry.Position = len(s.history) + 1
	s.history = append(s.history, entry)
	return entry, nil
}

func (s *fakeStore) SortHistory(context.Context) error {
	domain.SortHistory(s.history)
	return nil
}

func (s *fakeStore) GetMeta(_ context.Context, key string) (string, error) {
	v, ok := s.meta[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) SetMeta(_ context.Context, key, value string) error {
	s.meta[key] = value
	return nil
}

func (s *fakeStore) ids() []int {
	out := make([]int, len(s.records))
	for i, r := range s.records {
		out[i] = r.BeatmapID
	}
	return out
}

// fakeLocker mimics the lease table. A zero expires never expires.
type fakeLocker struct {
	mu      sync.Mutex
	held    bool
	holder  string
	expires time.Time
	renewed int
	seq     int
}

func (l *fakeLocker) live() bool {
	return l.held && (l.expires.IsZero() || time.Now().Before(l.expires))
}

func (l *fakeLocker) Acquire(_ context.Context, _ string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.live() {
		return "", repository.ErrLeaseHeld
	}
	l.seq++
	l.held = true
	l.holder = fmt.Sprintf("holder-%d", l.seq)
	l.expires = time.Now().Add(ttl)
	return l.holder, nil
}

func (l *fakeLocker) Renew(_ context.Context, _ string, holder string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held || l.holder != holder {
		return repository.ErrLeaseLost
	}
	l.renewed++
	l.expires = time.Now().Add(ttl)
	return nil
}

func (l *fakeLocker) Release(_ context.Context, _ string, holder string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held || l.holder != holder {
		return repository.ErrNotFound
	}
	l.held = false
	return nil
}

// steal hands the lease to another holder, as a takeover after expiry would.
func (l *fakeLocker) steal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = true
	l.holder = "intruder"
	l.expires = time.Now().Add(time.Hour)
}

func (l *fakeLocker) isHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live()
}

func (l *fakeLocker) Get(context.Context, string) (*domain.Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return nil, repository.ErrNotFound
	}
	return &domain.Lease{Name: "tracker", Holder: l.holder, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeFetcher struct {
	mu          sync.Mutex
	beatmaps    map[int][]byte
	scores      map[int][]byte
	metaErr     map[int]error
	scoreErr    map[int]error
	delay       map[int]time.Duration
	pages       [][]domain.Beatmap
	metaCalls   []int
	scoreCalls  []int
	sinceCalled []time.Time
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		beatmaps: map[int][]byte{},
		scores:   map[int][]byte{},
		metaErr:  map[int]error{},
		scoreErr: map[int]error{},
		delay:    map[int]time.Duration{},
	}
}

func (f *fakeFetcher) GetBeatmap(ctx context.Context, id int) ([]byte, error) {
	f.mu.Lock()
	f.metaCalls = append(f.metaCalls, id)
	body, err, delay := f.beatmaps[id], f.metaErr[id], f.delay[id]
	f.mu.Unlock()

	time.Sleep(delay)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []byte("[]"), nil
	}
	return body, nil
}

func (f *fakeFetcher) GetScores(ctx context.Context, id int) ([]byte, error) {
	f.mu.Lock()
	f.scoreCalls = append(f.scoreCalls, id)
	body, err, delay := f.scores[id], f.scoreErr[id], f.delay[id]
	f.mu.Unlock()

	time.Sleep(delay)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return []byte("[]"), nil
	}
	return body, nil
}

func (f *fakeFetcher) GetBeatmapsSince(_ context.Context, since time.Time, _ int) ([]domain.Beatmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinceCalled = append(f.sinceCalled, since)
	if len(f.pages) == 0 {
		return nil, fmt.Errorf("failed to parse beatmaps: %w", api.ErrEmptyResponse)
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeFetcher) addBeatmap(b domain.Beatmap, scores ...domain.Score) {
	f.beatmaps[b.BeatmapID] = beatmapBody(b)
	f.scores[b.BeatmapID] = scoresBody(scores...)
}

func testBeatmap(id, maxCombo int, rankedAt time.Time) domain.Beatmap {
	return domain.Beatmap{
		BeatmapID:    id,
		BeatmapsetID: id + 1000,
		Artist:       "Artist",
		Title:        "Title " + strconv.Itoa(id),
		Version:      "Insane",
		Creator:      "mapper",
		CreatorID:    7,
		Stars:        5.5,
		Length:       120,
		BPM:          180,
		MaxCombo:     maxCombo,
		Status:       domain.StatusRanked,
		RankedAt:     rankedAt,
	}
}

func beatmapBody(b domain.Beatmap) []byte {
	body, _ := json.Marshal([]api.BeatmapResponse{{
		BeatmapID:        strconv.Itoa(b.BeatmapID),
		BeatmapsetID:     strconv.Itoa(b.BeatmapsetID),
		Approved:         strconv.Itoa(int(b.Status)),
		ApprovedDate:     b.RankedAt.UTC().Format(time.DateTime),
		Artist:           b.Artist,
		Title:            b.Title,
		Version:          b.Version,
		Creator:          b.Creator,
		CreatorID:        strconv.Itoa(b.CreatorID),
		DifficultyRating: strconv.FormatFloat(b.Stars, 'f', -1, 64),
		TotalLength:      strconv.Itoa(b.Length),
		BPM:              strconv.FormatFloat(b.BPM, 'f', -1, 64),
		MaxCombo:         strconv.Itoa(b.MaxCombo),
		Mode:             "0",
	}})
	return body
}

func scoresBody(scores ...domain.Score) []byte {
	raw := make([]api.ScoreResponse, len(scores))
	for i, s := range scores {
		raw[i] = api.ScoreResponse{
			Username:    s.Username,
			UserID:      strconv.Itoa(s.UserID),
			MaxCombo:    strconv.Itoa(s.Combo),
			EnabledMods: strconv.Itoa(int(s.Mods)),
			Rank:        string(s.Rank),
		}
		if s.Date != nil {
			raw[i].Date = s.Date.UTC().Format(time.DateTime)
		}
	}
	body, _ := json.Marshal(raw)
	return body
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:        3,
		Timezone:         time.UTC,
		LeaseTTL:         time.Minute,
		DiscoverLookback: 24 * time.Hour,
		RefreshAt:        config.ClockTime{Hour: 23},
	}
}

func newTestTracker(t *testing.T, fetcher Fetcher, store Store, now time.Time) (*TrackerService, *fakeLocker) {
	t.Helper()
	cfg := testConfig()
	pipeline := NewPipeline(fetcher, cfg, nil, zerolog.Nop())
	pipeline.now = func() time.Time { return now }

	locker := &fakeLocker{}
	svc := NewTrackerService(store, locker, fetcher, pipeline, cfg, nil, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc, locker
}
