// Package telemetry fetches live flight-tracking data as a newline-delimited
// JSON stream and caches the most recent batch.
package telemetry

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hackclub/shipwrecked-sub001/internal/apperror"
	"github.com/hackclub/shipwrecked-sub001/internal/config"
	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

const (
	maxAttempts  = 5
	maxBackoff   = 32 * time.Second
	maxLineBytes = 1024 * 1024
)

// line is one record of the tracker's NDJSON stream. Lines with any other
// type, or without a result, are ignored.
type line struct {
	Type         string            `json:"type"`
	FlightNumber string            `json:"flight_number"`
	Result       *model.ServerData `json:"result"`
}

// Client talks to the flight tracker. It keeps a single cached batch keyed
// by the requested flight-number set; one periodic caller refreshes it while
// request handlers only read.
type Client struct {
	log    *zap.Logger
	cfg    *config.Config
	client *http.Client

	mu        sync.Mutex
	cacheKey  string
	cached    []model.TrackedFlight
	fetchedAt time.Time
}

// New initializes a new Client.
func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		log:    logger,
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Tracked returns telemetry for the given flight numbers, serving the cached
// batch while it is younger than the configured TTL.
func (c *Client) Tracked(ctx context.Context, flightNumbers []string) ([]model.TrackedFlight, error) {
	key := strings.Join(flightNumbers, ",")

	c.mu.Lock()
	if key == c.cacheKey && time.Since(c.fetchedAt) < c.cfg.TelemetryCacheTTL {
		cached := c.cached
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	tracked, err := c.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cacheKey = key
	c.cached = tracked
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return tracked, nil
}

func (c *Client) fetch(ctx context.Context, joined string) ([]model.TrackedFlight, error) {
	if c.cfg.TrackerAPIKey == "" {
		return nil, apperror.ErrMissingAPIKey
	}

	endpoint := c.cfg.TrackerEndpoint + "?flights=" + url.QueryEscape(joined)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tracker request: %w", err)
	}
	req.Header.Set("X-API-Key", c.cfg.TrackerAPIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &apperror.UpstreamError{Status: resp.StatusCode}
	}

	tracked := make([]model.TrackedFlight, 0)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var l line
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			c.log.Warn("skipping unparseable telemetry line", zap.Error(err))
			continue
		}
		if l.Type != "flight_data" || l.Result == nil {
			continue
		}
		tracked = append(tracked, model.TrackedFlight{
			FlightNumber: l.FlightNumber,
			Data:         *l.Result,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tracker stream: %w", err)
	}

	c.log.Info("fetched telemetry",
		zap.Int("flights", len(tracked)),
		zap.Duration("duration", time.Since(start)))
	return tracked, nil
}

// WithBackoff runs fn up to five times, doubling the delay from one second
// and capping it at 32 seconds. Only retryable upstream failures are
// retried; anything else is returned immediately.
func WithBackoff(ctx context.Context, log *zap.Logger, fn func() error) error {
	delay := time.Second
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var upstream *apperror.UpstreamError
		if !errors.As(err, &upstream) || !upstream.Retryable() {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		log.Warn("tracker fetch failed, backing off",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
	return err
}
