// Package analytics records privacy-conscious visitor metrics and the
// outcome of every upstream content fetch.
//
// Client IPs are never stored: they are hashed with a per-process salt and
// truncated. Requests carrying "DNT: 1" are not recorded.
package analytics

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-dev/internal/logger"
)

// Retention is how long visitor rows are kept.
const Retention = 365 * 24 * time.Hour

var untrackedPrefixes = []string{
	"/static/",
	"/images/",
	"/admin/",
	"/favicon",
	"/metrics",
	"/health",
}

// Tracker writes visits and fetch outcomes to SQLite.
type Tracker struct {
	db   *sql.DB
	salt string
	log  logger.Logger
	now  func() time.Time
	wg   sync.WaitGroup
}

func NewTracker(db *sql.DB, salt string, log logger.Logger) *Tracker {
	return &Tracker{db: db, salt: salt, log: log, now: time.Now}
}

// HashIP returns a stable, salted, truncated hash of ip.
func (t *Tracker) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + t.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Tracked reports whether a request path counts as a page visit.
func Tracked(path string) bool {
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// Middleware records each tracked request in the background.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !Tracked(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			if err := t.RecordVisit(context.Background(), ip, ua, path); err != nil {
				t.log.Error("Error recording visitor", logger.Error(err))
			}
		}()
		c.Next()
	}
}

// Wait blocks until background writes started by Middleware finish.
func (t *Tracker) Wait() { t.wg.Wait() }

func (t *Tracker) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, timestamp) VALUES (?, ?, ?, ?)`,
		t.HashIP(ip), userAgent, path, t.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// Fetch is one logical upstream fetch as seen by an API endpoint.
type Fetch struct {
	Endpoint string
	Source   string
	Outcome  string
	Err      string
	Duration time.Duration
}

func (t *Tracker) RecordFetch(ctx context.Context, f Fetch) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO source_fetches (endpoint, source, outcome, error, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.Endpoint, f.Source, f.Outcome, f.Err, f.Duration.Milliseconds(), t.now().Unix())
	if err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}
	return nil
}

// Cleanup removes visitor and fetch rows older than retention.
func (t *Tracker) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := t.now().Add(-retention).Unix()
	var removed int64
	for _, table := range []string{"visitors", "source_fetches"} {
		res, err := t.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE timestamp < ?`, cutoff)
		if err != nil {
			return removed, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if removed > 0 {
		t.log.Info("Privacy cleanup removed old records", logger.Any("rows", removed))
	}
	return removed, nil
}
