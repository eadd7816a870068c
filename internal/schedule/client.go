// Package schedule talks to the external MES work-schedule API and caches
// its answers. Schedules are the production context shown next to a card:
// what a work center was supposed to be producing on a given date and shift.
package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the MES API answers 404 for a schedule id.
var ErrNotFound = errors.New("schedule not found")

// WorkSchedule is one planned production run on a work center.
type WorkSchedule struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"` // YYYY-MM-DD
	Shift           string  `json:"shift"`
	WorkCenter      string  `json:"workCenter"`
	WorkCenterID    string  `json:"workCenterId"`
	SalesOrder      string  `json:"salesOrder"`
	Item            string  `json:"item"`
	ProductionOrder string  `json:"productionOrder"`
	Product         string  `json:"product"`
	Quantity        float64 `json:"quantity"`
	TimeInMinutes   int     `json:"timeInMinutes"`
}

// Client is the HTTP client for the MES schedule API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a schedule API client. apiKey may be empty when the MES
// endpoint is open inside the plant network.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchSchedules returns the planned runs for a work center on a date,
// optionally narrowed to one shift. The workCenter parameter is the MES work
// center number, not our internal id.
func (c *Client) FetchSchedules(ctx context.Context, workCenter, date, shift string) ([]WorkSchedule, error) {
	q := url.Values{}
	q.Set("workCenter", workCenter)
	q.Set("date", date)
	if shift != "" {
		q.Set("shift", shift)
	}

	var result struct {
		Schedules []WorkSchedule `json:"schedules"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/schedules?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return result.Schedules, nil
}

// FetchSchedule returns a single schedule by its MES id.
func (c *Client) FetchSchedule(ctx context.Context, id string) (*WorkSchedule, error) {
	var result WorkSchedule
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/schedules/"+url.PathEscape(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSchedule registers a new planned run in the MES. The API assigns the
// id and echoes the stored schedule back.
func (c *Client) CreateSchedule(ctx context.Context, ws WorkSchedule) (*WorkSchedule, error) {
	var result WorkSchedule
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/schedules", ws, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateSchedule replaces the schedule with the given MES id.
func (c *Client) UpdateSchedule(ctx context.Context, id string, ws WorkSchedule) (*WorkSchedule, error) {
	var result WorkSchedule
	if err := c.doRequest(ctx, http.MethodPut, "/api/v1/schedules/"+url.PathEscape(id), ws, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSchedule removes the schedule with the given MES id.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/v1/schedules/"+url.PathEscape(id), nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode schedule request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build schedule request: %w", err)
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
		return fmt.Errorf("schedule API request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read schedule response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w (path=%s)", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("schedule API status %d (path=%s)", resp.StatusCode, path)
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decode schedule response: %w", err)
	}
	return nil
}
