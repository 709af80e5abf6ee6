// Package aggregate serves the site's content API. Each read endpoint loads
// one upstream source, normalizes it and answers with a flat JSON array,
// falling back to [] when the source fails.
package aggregate

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-dev/internal/analytics"
	"github.com/Zachkp/zach-dev/internal/cache"
	"github.com/Zachkp/zach-dev/internal/config"
	"github.com/Zachkp/zach-dev/internal/content"
	"github.com/Zachkp/zach-dev/internal/fetch"
	"github.com/Zachkp/zach-dev/internal/listing"
	"github.com/Zachkp/zach-dev/internal/logger"
)

const (
	configErrorMessage = "Server configuration error"
	logBodyLimit       = 512
)

// PostSource lists raw blog posts.
type PostSource interface {
	Configured() bool
	Posts(ctx context.Context) ([]content.BloggerPost, error)
}

// VideoSource lists raw channel videos.
type VideoSource interface {
	Configured() bool
	Videos(ctx context.Context) ([]content.YouTubeItem, error)
}

// Workspace queries and writes workspace databases.
type Workspace interface {
	Configured(databaseID string) bool
	Query(ctx context.Context, databaseID string, filter any) ([]content.NotionPage, error)
	HasSubscriber(ctx context.Context, databaseID, email string) (bool, error)
	AddSubscriber(ctx context.Context, databaseID, email, name string, at time.Time) error
}

// FetchLog persists fetch outcomes.
type FetchLog interface {
	RecordFetch(ctx context.Context, f analytics.Fetch) error
}

// Observer receives fetch and cache metrics.
type Observer interface {
	ObserveFetch(endpoint, source, outcome string, d time.Duration)
	ObserveCache(endpoint string, hit bool)
}

// Deps are the collaborators of Handler. Cache, FetchLog and Observer are
// optional.
type Deps struct {
	Blogger   PostSource
	YouTube   VideoSource
	Workspace Workspace
	Databases config.NotionConfig
	Projects  []content.Project

	Cache    cache.Store
	CacheTTL time.Duration
	FetchLog FetchLog
	Observer Observer
	Log      logger.Logger
	Now      func() time.Time
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handler{Deps: d}
}

// Register mounts the API under r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/posts", serveList(h, h.posts()))
	r.GET("/videos", serveList(h, h.videos()))
	r.GET("/testimonials", serveList(h, h.testimonials()))
	r.GET("/services", serveList(h, h.services()))
	r.GET("/gallery", serveList(h, h.gallery()))
	r.GET("/gallery/grouped", h.groupedGallery)
	r.GET("/landing", h.landing)
	r.GET("/projects", h.projects)
	r.POST("/subscribe", h.subscribe)
}

// feed binds one endpoint to the source it reads.
type feed[T listing.Record] struct {
	endpoint   string
	source     string
	configured func() bool
	load       func(ctx context.Context) ([]T, error)
}

func serveList[T listing.Record](h *Handler, f feed[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := load(c.Request.Context(), h, f)
		switch {
		case res.Outcome == OutcomeUnconfigured:
			c.JSON(http.StatusInternalServerError, gin.H{"error": configErrorMessage})
		case !res.Outcome.Served():
			c.JSON(http.StatusOK, []T{})
		default:
			h.setCacheControl(c)
			c.JSON(http.StatusOK, listing.Apply(res.Items, listQuery(c)))
		}
	}
}

// load answers from the cache when possible, otherwise from the source.
// Only served results are cached.
func load[T listing.Record](ctx context.Context, h *Handler, f feed[T]) Result[T] {
	if !f.configured() {
		res := Result[T]{Items: []T{}, Outcome: OutcomeUnconfigured}
		h.record(ctx, f.endpoint, f.source, res.Outcome, nil, 0)
		return res
	}

	if items, ok := cachedItems[T](ctx, h, f.endpoint); ok {
		return Result[T]{Items: items, Outcome: OutcomeOK, Cached: true}
	}

	start := time.Now()
	items, err := f.load(ctx)
	res := classify(items, err)
	h.record(ctx, f.endpoint, f.source, res.Outcome, res.Err, time.Since(start))

	if res.Outcome.Served() {
		h.storeItems(ctx, f.endpoint, res.Items)
	}
	return res
}

func cachedItems[T any](ctx context.Context, h *Handler, key string) ([]T, bool) {
	raw, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		h.Log.Warn("Cache read failed", logger.String("key", key), logger.Error(err))
	}
	if h.Observer != nil {
		h.Observer.ObserveCache(key, ok && err == nil)
	}
	if !ok || err != nil {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		h.Log.Warn("Discarding unreadable cache entry", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}

func (h *Handler) storeItems(ctx context.Context, key string, items any) {
	if h.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		h.Log.Warn("Cache encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := h.Cache.Set(ctx, key, raw, h.CacheTTL); err != nil {
		h.Log.Warn("Cache write failed", logger.String("key", key), logger.Error(err))
	}
}

func (h *Handler) setCacheControl(c *gin.Context) {
	if h.CacheTTL > 0 {
		c.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(h.CacheTTL.Seconds())))
	}
}

// record logs the outcome and forwards it to metrics and the fetch log.
func (h *Handler) record(ctx context.Context, endpoint, src string, outcome Outcome, err error, d time.Duration) {
	fields := []logger.Field{
		logger.String("endpoint", endpoint),
		logger.String("source", src),
		logger.String("outcome", string(outcome)),
		logger.Duration("duration", d),
	}
	switch outcome {
	case OutcomeFailed:
		if status, ok := fetch.StatusCode(err); ok {
			fields = append(fields, logger.Int("status", status))
		}
		fields = append(fields, logger.String("error", fetch.Truncate(errString(err), logBodyLimit)))
		h.Log.Error("Content fetch failed", fields...)
	case OutcomeUnconfigured:
		h.Log.Error("Content source is not configured", fields...)
	default:
		h.Log.Debug("Content fetched", fields...)
	}

	if h.Observer != nil {
		h.Observer.ObserveFetch(endpoint, src, string(outcome), d)
	}
	if h.FetchLog != nil {
		entry := analytics.Fetch{
			Endpoint: endpoint,
			Source:   src,
			Outcome:  string(outcome),
			Err:      fetch.Truncate(errString(err), logBodyLimit),
			Duration: d,
		}
		if err := h.FetchLog.RecordFetch(context.WithoutCancel(ctx), entry); err != nil {
			h.Log.Warn("Error recording fetch outcome", logger.Error(err))
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func listQuery(c *gin.Context) listing.Query {
	sort, _ := listing.ParseSort(c.Query("sort"))
	return listing.Query{
		Search: c.Query("q"),
		Tags:   c.QueryArray("tag"),
		Sort:   sort,
	}
}
