package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/renovalabs/voice-frontdesk/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client talks to the hosted calendar API over REST/JSON.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a calendar API client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type listEventsResponse struct {
	Events []Event `json:"events"`
}

// ListEvents returns events intersecting [from, to).
func (c *Client) ListEvents(ctx context.Context, from, to time.Time, doctor string) ([]Event, error) {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	if doctor != "" {
		q.Set("doctor", doctor)
	}

	var out listEventsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/events?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

type createEventResponse struct {
	ID string `json:"id"`
}

// CreateEvent adds the event; a 409 from the calendar maps to ErrSlotTaken.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (string, error) {
	var out createEventResponse
	if err := c.do(ctx, http.MethodPost, "/v1/events", ev, &out); err != nil {
		return "", err
	}
	c.logger.Info("calendar event created", "event_id", out.ID, "doctor", ev.Doctor, "start", ev.Start)
	return out.ID, nil
}

// DeleteEvent removes the event with the given ID.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/events/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("calendar: marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrSlotTaken
	case resp.StatusCode == http.StatusNotFound:
		return ErrEventNotFound
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Error("calendar API error", "status", resp.StatusCode, "path", path, "body", string(data))
		return fmt.Errorf("calendar: %s %s returned status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendar: decode response: %w", err)
	}
	return nil
}

var _ Service = (*Client)(nil)
