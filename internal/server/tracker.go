package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/domain"
	"unfc-tracker/internal/export"
	"unfc-tracker/internal/metrics"
	"unfc-tracker/internal/middleware"
	"unfc-tracker/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Tracker is what the HTTP surface needs from the tracker service.
type Tracker interface {
	Records(ctx context.Context) ([]domain.Record, error)
	History(ctx context.Context) ([]domain.HistoryEntry, error)
	Status(ctx context.Context) (service.Status, error)
	Workbook(ctx context.Context) (export.Workbook, error)

	Refresh(ctx context.Context) (service.Report, error)
	Discover(ctx context.Context, since *time.Time) (service.Report, error)
	Settle(ctx context.Context) (service.Report, error)
	Add(ctx context.Context, input string) (service.Report, error)
	Move(ctx context.Context, input string) (service.Report, error)
	SortHistory(ctx context.Context) (service.Report, error)
	SetSchedule(ctx context.Context, enabled bool) (service.Report, error)
}

type TrackerServer struct {
	tracker Tracker
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewTrackerServer(tracker Tracker, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{
		tracker: tracker,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Handler returns the full HTTP surface with request IDs and CORS applied.
func (s *TrackerServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.healthz)
	mux.HandleFunc("GET /status", s.status)
	mux.HandleFunc("GET /records", s.records)
	mux.HandleFunc("GET /history", s.history)
	mux.HandleFunc("GET /export.xlsx", s.exportWorkbook)

	mux.HandleFunc("POST /records", s.add)
	mux.HandleFunc("POST /records/{row}/move", s.move)
	mux.HandleFunc("POST /refresh", s.refresh)
	mux.HandleFunc("POST /discover", s.discover)
	mux.HandleFunc("POST /settle", s.settle)
	mux.HandleFunc("POST /history/sort", s.sortHistory)
	mux.HandleFunc("PUT /schedule", s.schedule)

	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins(s.cfg.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *TrackerServer) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *TrackerServer) status(w http.ResponseWriter, r *http.Request) {
	st, err := s.tracker.Status(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *TrackerServer) records(w http.ResponseWriter, r *http.Request) {
	records, err := s.tracker.Records(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *TrackerServer) history(w http.ResponseWriter, r *http.Request) {
	entries, err := s.tracker.History(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]HistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *TrackerServer) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	wb, err := s.tracker.Workbook(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="unfc.xlsx"`)
	if err := export.Write(w, wb); err != nil {
		// headers are already out
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write workbook")
	}
}

func (s *TrackerServer) add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, r, http.StatusBadRequest, err)
		return
	}
	s.run(w, r, func(ctx context.Context) (service.Report, error) {
		return s.tracker.Add(ctx, req.Link)
	})
}

func (s *TrackerServer) move(w http.ResponseWriter, r *http.Request) {
	row := r.PathValue("row")
	s.run(w, r, func(ctx context.Context) (service.Report, error) {
		return s.tracker.Move(ctx, row)
	})
}

func (s *TrackerServer) refresh(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, s.tracker.Refresh)
}

func (s *TrackerServer) discover(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := service.ParseSince(raw, s.now().In(s.cfg.Timezone))
		if err != nil {
			s.writeErrorStatus(w, r, http.StatusBadRequest, err)
			return
		}
		since = &t
	}
	s.run(w, r, func(ctx context.Context) (service.Report, error) {
		return s.tracker.Discover(ctx, since)
	})
}

func (s *TrackerServer) settle(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, s.tracker.Settle)
}

func (s *TrackerServer) sortHistory(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, s.tracker.SortHistory)
}

func (s *TrackerServer) schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, r, http.StatusBadRequest, err)
		return
	}
	s.run(w, r, func(ctx context.Context) (service.Report, error) {
		return s.tracker.SetSchedule(ctx, req.Enabled)
	})
}

// run executes a mutating operation and answers with its report.
func (s *TrackerServer) run(w http.ResponseWriter, r *http.Request, op func(ctx context.Context) (service.Report, error)) {
	report, err := op(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("operation", report.Operation).Msg(report.Message)
	writeJSON(w, http.StatusOK, report)
}

func (s *TrackerServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorStatus(w, r, statusFor(err), err)
}

func (s *TrackerServer) writeErrorStatus(w http.ResponseWriter, r *http.Request, code int, err error) {
	logger := zerolog.Ctx(r.Context())
	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}
	writeJSON(w, code, ErrorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRow), errors.Is(err, domain.ErrInvalidBeatmapLink):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func allowedOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
