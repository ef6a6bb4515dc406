package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/constants"
	"unfc-tracker/internal/domain"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const v1DateLayout = "2006-01-02 15:04:05"

var ErrStatus = errors.New("osu! API returned non-success status")

// StatusError carries the status of a failed request. The API key is never
// part of Endpoint.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned %d", ErrStatus, e.Endpoint, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// OsuClient talks to the legacy osu! API. Every request waits on a shared
// token bucket.
type OsuClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
	limiter *rate.Limiter
}

func NewOsuClient(cfg *config.Config) *OsuClient {
	return &OsuClient{
		apiKey:  cfg.OsuAPIKey,
		baseURL: cfg.OsuAPIBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     cfg.ChunkSize * 2,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), cfg.Burst),
	}
}

// GetBeatmap returns the raw get_beatmaps body for a single beatmap id.
func (c *OsuClient) GetBeatmap(ctx context.Context, beatmapID int) ([]byte, error) {
	q := url.Values{}
	q.Set("b", strconv.Itoa(beatmapID))
	return c.get(ctx, "get_beatmaps", q)
}

// GetScores returns the raw get_scores body for the leading leaderboard
// window of a standard-mode beatmap.
func (c *OsuClient) GetScores(ctx context.Context, beatmapID int) ([]byte, error) {
	q := url.Values{}
	q.Set("b", strconv.Itoa(beatmapID))
	q.Set("m", "0")
	q.Set("limit", strconv.Itoa(constants.ScoresLimit))
	return c.get(ctx, "get_scores", q)
}

// GetBeatmapsSince lists standard-mode beatmaps whose approved date is after
// since. The API returns at most limit rows per call.
func (c *OsuClient) GetBeatmapsSince(ctx context.Context, since time.Time, limit int) ([]domain.Beatmap, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(v1DateLayout))
	q.Set("m", "0")
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "get_beatmaps", q)
	if err != nil {
		return nil, err
	}
	beatmaps, err := ParseBeatmaps(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse beatmaps since %s: %w", since.Format(time.RFC3339), err)
	}
	return beatmaps, nil
}

func (c *OsuClient) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	q.Set("k", c.apiKey)
	uri := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode()}
	}

	// resp is released on return
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
