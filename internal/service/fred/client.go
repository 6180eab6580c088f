package fred

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	xhttp "MacroPulse/pkg/http"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/util"
)

const defaultBaseURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"

// Client pulls daily macro series from the FRED CSV export endpoint. One
// request per series; a series that keeps failing after retries is skipped,
// but a run where every series failed is an error.
type Client struct {
	http       *xhttp.Client
	logger     *applogger.Logger
	baseURL    string
	series     map[string]string // FRED id -> internal name
	start      time.Time
	retryMax   int
	backoffMin time.Duration
	backoffMax time.Duration
}

// Option configures Client.
type Option func(*Client)

// New creates a FRED client for the given series map.
func New(l *applogger.Logger, series map[string]string, opts ...Option) *Client {
	c := &Client{
		http:       xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
		logger:     l,
		baseURL:    defaultBaseURL,
		series:     series,
		start:      time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
		retryMax:   3,
		backoffMin: 500 * time.Millisecond,
		backoffMax: 8 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL overrides the CSV endpoint (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithStartDate drops observations before the given day.
func WithStartDate(t time.Time) Option {
	return func(c *Client) {
		c.start = t
	}
}

// WithRetry sets retry count and backoff bounds.
func WithRetry(max int, min, maxBackoff time.Duration) Option {
	return func(c *Client) {
		c.retryMax = max
		c.backoffMin = min
		c.backoffMax = maxBackoff
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(d))
	}
}

// Fetch downloads every configured series and returns observations keyed by
// internal series name.
func (c *Client) Fetch(ctx context.Context) (map[string][]models.Observation, error) {
	out := make(map[string][]models.Observation, len(c.series))
	var failed []string

	for id, name := range c.series {
		obs, err := c.fetchSeries(ctx, id, name)
		if err != nil {
			c.logger.Error("fred series fetch failed",
				applogger.String("series", name),
				applogger.String("fred_id", id),
				applogger.Error(err),
			)
			failed = append(failed, name)
			continue
		}
		c.logger.Info("fred series fetched",
			applogger.String("series", name),
			applogger.Int("points", len(obs)),
		)
		out[name] = obs
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("all %d series failed: %s", len(c.series), strings.Join(failed, ", "))
	}
	return out, nil
}

func (c *Client) fetchSeries(ctx context.Context, id, name string) ([]models.Observation, error) {
	var lastErr error
	backoff := c.backoffMin

	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.backoffMax {
				backoff = c.backoffMax
			}
		}

		var body []byte
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         c.baseURL,
			QueryParams: map[string][]string{"id": {id}},
		}, &body)
		if err != nil {
			lastErr = err
			continue
		}

		obs, err := c.parseCSV(body, name)
		if err != nil {
			lastErr = err
			continue
		}
		return obs, nil
	}
	return nil, fmt.Errorf("after %d attempts: %w", c.retryMax+1, lastErr)
}

// parseCSV reads a fredgraph CSV export: a DATE column plus one value column.
// "." marks a missing value and is skipped; duplicated days keep the last
// value seen.
func (c *Client) parseCSV(body []byte, name string) ([]models.Observation, error) {
	r := csv.NewReader(strings.NewReader(string(body)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	byDay := make(map[time.Time]float64)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) < 2 {
			continue
		}

		day, ok := util.ParseDate(strings.TrimSpace(rec[0]))
		if !ok {
			return nil, fmt.Errorf("bad date %q", rec[0])
		}
		if day.Before(c.start) {
			continue
		}

		raw := strings.TrimSpace(rec[1])
		if raw == "" || raw == "." {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		byDay[day] = v
	}

	if len(byDay) == 0 {
		return nil, fmt.Errorf("series %s: no usable observations", name)
	}

	obs := make([]models.Observation, 0, len(byDay))
	for day, v := range byDay {
		obs = append(obs, models.Observation{Series: name, Date: day, Value: v})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}

var _ repository.MacroSource = (*Client)(nil)
