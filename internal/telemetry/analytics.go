package telemetry

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/agentes/internal/shared"
	"golang.org/x/time/rate"
)

// Event is a single analytics record.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Properties map[string]any `json:"properties,omitempty"`
}

// NewEvent creates an event with a generated ID and the current UTC time.
func NewEvent(name string, props map[string]any) Event {
	return Event{ID: shared.GenerateID(), Name: name, Timestamp: time.Now().UTC(), Properties: props}
}

// Analytics sends events somewhere.
type Analytics interface {
	Track(ctx context.Context, event Event) error
}

// NopAnalytics discards every event.
type NopAnalytics struct{}

func (NopAnalytics) Track(context.Context, Event) error { return nil }

// HTTPAnalytics posts events as JSON to an endpoint, throttled by a token bucket.
//
// Events that arrive while the bucket is empty are dropped with [shared.ErrRateLimited] rather than queued.
type HTTPAnalytics struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPAnalytics creates an [HTTPAnalytics]. A non-positive rate disables throttling.
func NewHTTPAnalytics(endpoint string, perSecond float64, burst int, client *http.Client) *HTTPAnalytics {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	return &HTTPAnalytics{endpoint: endpoint, httpClient: client, limiter: rate.NewLimiter(limit, burst)}
}

// Track sends event, failing on throttling, transport errors and non-2xx responses.
func (a *HTTPAnalytics) Track(ctx context.Context, event Event) error {
	if !a.limiter.Allow() {
		return shared.ErrRateLimited
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}

// SQLAnalytics records "error" events in the local error_events table and ignores the rest.
// It backs error reporting when no analytics endpoint is configured and the sqlite store is in use.
type SQLAnalytics struct {
	db *sql.DB
}

// NewSQLAnalytics creates a [SQLAnalytics] on a migrated database.
func NewSQLAnalytics(db *sql.DB) *SQLAnalytics {
	return &SQLAnalytics{db: db}
}

func (a *SQLAnalytics) Track(ctx context.Context, event Event) error {
	if event.Name != EventError {
		return nil
	}

	props, err := json.Marshal(event.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	message, _ := event.Properties["message"].(string)
	_, err = a.db.ExecContext(ctx, `INSERT INTO error_events (id, message, properties, created_at) VALUES (?, ?, ?, ?)`,
		event.ID, message, string(props), event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record error event: %w", err)
	}
	return nil
}
