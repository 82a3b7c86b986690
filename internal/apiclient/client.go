// Package apiclient talks to the external ticket API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/miniinbox/inbox/internal/domain"
)

const maxErrorBody = 512

// Client issues reads and partial updates against the ticket API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for upstream call tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ticket api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("ticket api url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListTickets returns every ticket in server order.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	const op = "list tickets"
	var tickets []domain.Ticket
	if err := c.do(ctx, op, http.MethodGet, "/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		return nil, &PayloadError{Op: op, Err: errors.New("expected a JSON array")}
	}
	return tickets, nil
}

// GetTicket returns the ticket with the given id. The API exposes no
// single-ticket read, so the full list is fetched and searched.
func (c *Client) GetTicket(ctx context.Context, id int) (domain.Ticket, error) {
	tickets, err := c.ListTickets(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}
	for _, t := range tickets {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Ticket{}, fmt.Errorf("ticket %d: %w", id, ErrNotFound)
}

// UpdateTicket applies patch to ticket id. Any 2xx answer means the change is
// stored; the API acknowledges with a message rather than the ticket.
func (c *Client) UpdateTicket(ctx context.Context, id int, patch domain.TicketPatch) error {
	const op = "update ticket"
	if patch.Empty() {
		return fmt.Errorf("%s %d: empty patch", op, id)
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("%s: encode patch: %w", op, err)
	}
	if err := c.do(ctx, op, http.MethodPatch, "/tickets/"+strconv.Itoa(id), body, nil); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("ticket %d: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

// GetMetrics returns the validated aggregate snapshot.
func (c *Client) GetMetrics(ctx context.Context) (domain.MetricsSnapshot, error) {
	var snapshot domain.MetricsSnapshot
	if err := c.do(ctx, "get metrics", http.MethodGet, "/metrics", nil, &snapshot); err != nil {
		return domain.MetricsSnapshot{}, err
	}
	return snapshot, nil
}

// Ping checks that the ticket API answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/tickets", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	endpoint := c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("ticket api call failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("ticket api call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &TransportError{Op: op, Err: ctxErr}
		}
		return &PayloadError{Op: op, Err: err}
	}
	return nil
}
