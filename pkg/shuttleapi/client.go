// Package shuttleapi is a client for the university shuttle timetable
// endpoint. The service exposes one resource per travel direction, each
// returning named buckets of departure times.
package shuttleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the public shuttle timetable endpoint.
const DefaultBaseURL = "https://my.ozyegin.edu.tr/api/v1.4-2/shuttle"

// Direction resource ids used by the shuttle service.
const (
	DirectionIDCampusToMetro = 27
	DirectionIDMetroToCampus = 26
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Response is the shuttle service's per-direction payload.
type Response struct {
	Status    int             `json:"status"`
	ShowDates bool            `json:"show_dates"`
	Data      []ScheduleGroup `json:"data"`
}

// ScheduleGroup is one named timetable (the service may publish several,
// e.g. one per stop served).
type ScheduleGroup struct {
	Key     int          `json:"key"`
	ID      string       `json:"id"`
	TitleTR string       `json:"title_tr"`
	TitleEN string       `json:"title_en"`
	Data    []TimeBucket `json:"data"`
}

// TimeBucket is an ordered list of HH:MM departure times under a day-type
// label ("HAFTA İÇİ" weekday, "HAFTA SONU" weekend).
type TimeBucket struct {
	Key     int      `json:"key"`
	TitleTR string   `json:"title_tr"`
	TitleEN string   `json:"title_en"`
	Data    []string `json:"data"`
}

// Schedules fetches the timetable for one direction resource id.
func (c *Client) Schedules(ctx context.Context, directionID int) (*Response, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, directionID)

	// The upstream only answers POST, with no body.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}
