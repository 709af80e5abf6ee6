package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Zachkp/zach-dev/internal/config"
	"github.com/Zachkp/zach-dev/internal/content"
	"github.com/Zachkp/zach-dev/internal/fetch"
)

const NotionName = "notion"

const notionPageSize = 100

// Subscriber database property names.
const (
	subscriberNameProp  = "Name"
	subscriberEmailProp = "Email"
	subscriberDateProp  = "Subscribed At"
)

// Notion is the workspace database client. One instance is built at
// startup and shared by every handler that reads or writes databases.
type Notion struct {
	cfg     config.NotionConfig
	fetcher Fetcher
}

func NewNotion(cfg config.NotionConfig, f Fetcher) *Notion {
	return &Notion{cfg: cfg, fetcher: f}
}

// Configured reports whether the integration token and databaseID are set.
func (n *Notion) Configured(databaseID string) bool {
	return n.cfg.Token != "" && databaseID != ""
}

type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
	Filter      any    `json:"filter,omitempty"`
}

type queryResponse struct {
	Results    *[]content.NotionPage `json:"results"`
	HasMore    bool                  `json:"has_more"`
	NextCursor string                `json:"next_cursor"`
}

// Query returns the rows of databaseID matching filter (nil for all),
// following cursors up to MaxPages.
func (n *Notion) Query(ctx context.Context, databaseID string, filter any) ([]content.NotionPage, error) {
	if !n.Configured(databaseID) {
		return nil, fmt.Errorf("%s: %w", NotionName, ErrNotConfigured)
	}

	var pages []content.NotionPage
	cursor := ""
	for i := 0; i < max(n.cfg.MaxPages, 1); i++ {
		payload, err := json.Marshal(queryRequest{PageSize: notionPageSize, StartCursor: cursor, Filter: filter})
		if err != nil {
			return nil, fmt.Errorf("encode notion query: %w", err)
		}
		resp, err := n.fetcher.Do(ctx, n.request(http.MethodPost, "/databases/"+databaseID+"/query", payload))
		if err != nil {
			return nil, err
		}

		var body queryResponse
		if err := decode(NotionName, resp.Body, &body); err != nil {
			return nil, err
		}
		if body.Results == nil {
			return nil, fmt.Errorf("%w: %s: missing results", ErrMalformedResponse, NotionName)
		}
		pages = append(pages, *body.Results...)

		if !body.HasMore || body.NextCursor == "" {
			break
		}
		cursor = body.NextCursor
	}
	return pages, nil
}

// HasSubscriber reports whether a row with exactly this email exists.
func (n *Notion) HasSubscriber(ctx context.Context, databaseID, email string) (bool, error) {
	filter := map[string]any{
		"property": subscriberEmailProp,
		"email":    map[string]string{"equals": email},
	}
	pages, err := n.Query(ctx, databaseID, filter)
	if err != nil {
		return false, err
	}
	return len(pages) > 0, nil
}

// AddSubscriber creates one subscriber row.
func (n *Notion) AddSubscriber(ctx context.Context, databaseID, email, name string, at time.Time) error {
	if !n.Configured(databaseID) {
		return fmt.Errorf("%s: %w", NotionName, ErrNotConfigured)
	}

	page := map[string]any{
		"parent": map[string]string{"database_id": databaseID},
		"properties": map[string]any{
			subscriberNameProp: map[string]any{
				"title": []map[string]any{{"text": map[string]string{"content": name}}},
			},
			subscriberEmailProp: map[string]any{"email": email},
			subscriberDateProp:  map[string]any{"date": map[string]string{"start": at.UTC().Format(time.RFC3339)}},
		},
	}
	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode notion page: %w", err)
	}
	_, err = n.fetcher.Do(ctx, n.request(http.MethodPost, "/pages", payload))
	return err
}

func (n *Notion) request(method, path string, body []byte) fetch.Request {
	return fetch.Request{
		Source: NotionName,
		Method: method,
		URL:    n.cfg.BaseURL + path,
		Header: http.Header{
			"Authorization":  {"Bearer " + n.cfg.Token},
			"Notion-Version": {n.cfg.Version},
			"Content-Type":   {"application/json"},
		},
		Body:    body,
		Timeout: n.cfg.Timeout,
	}
}
