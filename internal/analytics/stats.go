package analytics

import (
	"context"
	"fmt"
	"time"
)

const recentVisitorLimit = 50

// Visitor is one recorded visit.
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// SourceHealth summarizes the fetch history of one upstream source.
type SourceHealth struct {
	Source       string    `json:"source"`
	Ok           int64     `json:"ok"`
	Empty        int64     `json:"empty"`
	Failed       int64     `json:"failed"`
	Unconfigured int64     `json:"unconfigured"`
	LastOutcome  string    `json:"last_outcome"`
	LastError    string    `json:"last_error,omitempty"`
	LastFetched  time.Time `json:"last_fetched"`
}

type Stats struct {
	TotalVisitors    int64          `json:"total_visitors"`
	UniqueVisitors   int64          `json:"unique_visitors"`
	VisitorsToday    int64          `json:"visitors_today"`
	VisitorsThisWeek int64          `json:"visitors_this_week"`
	RecentVisitors   []Visitor      `json:"recent_visitors"`
	Sources          []SourceHealth `json:"sources"`
}

// Stats aggregates the admin dashboard figures.
func (t *Tracker) Stats(ctx context.Context) (*Stats, error) {
	now := t.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats := &Stats{RecentVisitors: []Visitor{}, Sources: []SourceHealth{}}

	err := t.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT hashed_ip),
			COALESCE(SUM(timestamp >= ?), 0), COALESCE(SUM(timestamp >= ?), 0)
		FROM visitors
	`, today.Unix(), now.Add(-7*24*time.Hour).Unix()).Scan(
		&stats.TotalVisitors, &stats.UniqueVisitors, &stats.VisitorsToday, &stats.VisitorsThisWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("visitor counts: %w", err)
	}

	if stats.RecentVisitors, err = t.recentVisitors(ctx); err != nil {
		return nil, err
	}
	if stats.Sources, err = t.sourceHealth(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (t *Tracker) recentVisitors(ctx context.Context) ([]Visitor, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, recentVisitorLimit)
	if err != nil {
		return nil, fmt.Errorf("recent visitors: %w", err)
	}
	defer rows.Close()

	visitors := []Visitor{}
	for rows.Next() {
		var (
			v  Visitor
			ts int64
		)
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp = time.Unix(ts, 0).UTC()
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

func (t *Tracker) sourceHealth(ctx context.Context) ([]SourceHealth, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT f.source,
			SUM(f.outcome = 'ok'), SUM(f.outcome = 'empty'),
			SUM(f.outcome = 'failed'), SUM(f.outcome = 'unconfigured'),
			l.outcome, COALESCE(l.error, ''), l.timestamp
		FROM source_fetches f
		JOIN source_fetches l ON l.id = (
			SELECT id FROM source_fetches WHERE source = f.source ORDER BY timestamp DESC, id DESC LIMIT 1
		)
		GROUP BY f.source
		ORDER BY f.source
	`)
	if err != nil {
		return nil, fmt.Errorf("source health: %w", err)
	}
	defer rows.Close()

	out := []SourceHealth{}
	for rows.Next() {
		var (
			h  SourceHealth
			ts int64
		)
		if err := rows.Scan(&h.Source, &h.Ok, &h.Empty, &h.Failed, &h.Unconfigured,
			&h.LastOutcome, &h.LastError, &ts); err != nil {
			return nil, fmt.Errorf("scan source health: %w", err)
		}
		h.LastFetched = time.Unix(ts, 0).UTC()
		out = append(out, h)
	}
	return out, rows.Err()
}
