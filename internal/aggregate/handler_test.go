package aggregate_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/zach-dev/internal/aggregate"
	"github.com/Zachkp/zach-dev/internal/analytics"
	"github.com/Zachkp/zach-dev/internal/cache"
	"github.com/Zachkp/zach-dev/internal/config"
	"github.com/Zachkp/zach-dev/internal/content"
	"github.com/Zachkp/zach-dev/internal/database"
	"github.com/Zachkp/zach-dev/internal/fetch"
	"github.com/Zachkp/zach-dev/internal/logger"
	"github.com/Zachkp/zach-dev/internal/source"
)

const (
	bloggerPosts = `{"items":[
		{"id":"p1","title":"Go","published":"2024-02-01T00:00:00Z","content":"<p>hi<img src=\"https://x/y.png\"></p>","labels":["go"]},
		{"id":"p2","title":"Life","published":"2024-03-01T00:00:00Z","content":"training","labels":["life"]},
		{"id":"p3","title":"HTMX","published":"2024-01-01T00:00:00Z","content":"server","labels":["web","go"]}
	]}`
	youtubeVideos = `{"items":[{"id":{"videoId":"v1"},"snippet":{"title":"Demo","publishedAt":"2024-01-01T00:00:00Z",
		"thumbnails":{"high":{"url":"https://i.ytimg.com/hi.jpg"}}}}]}`
	testimonialRows = `{"results":[{"id":"t1","created_time":"2024-01-01T00:00:00.000Z","properties":{
		"Name":{"type":"title","title":[{"plain_text":"Jane"}]},
		"Quote":{"type":"rich_text","rich_text":[{"plain_text":"Great work"}]},
		"Rating":{"type":"number","number":4}}}],"has_more":false}`
	galleryRows = `{"results":[
		{"id":"g1","properties":{"Name":{"type":"title","title":[{"plain_text":"Ring"}]},
			"Category":{"type":"select","select":{"name":"Fights"}},
			"Image":{"type":"files","files":[{"type":"external","external":{"url":"https://img/1.jpg"}}]}}},
		{"id":"g2","properties":{"Name":{"type":"title","title":[{"plain_text":"Pool"}]},
			"Image":{"type":"url","url":"https://img/2.jpg"}}},
		{"id":"g3","properties":{"Name":{"type":"title","title":[{"plain_text":"No image"}]},
			"Category":{"type":"select","select":{"name":"fights"}}}}
	],"has_more":false}`
)

// upstream fakes the three content APIs and counts every request.
type upstream struct {
	*http.ServeMux
	calls atomic.Int32
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	u.ServeMux.ServeHTTP(w, r)
}

// newUpstream serves fixtures; overrides replace routes by pattern.
func newUpstream(overrides map[string]http.HandlerFunc) *upstream {
	routes := map[string]http.HandlerFunc{
		"GET /blogs/blog/posts":     respond(http.StatusOK, bloggerPosts),
		"GET /search":               respond(http.StatusOK, youtubeVideos),
		"POST /databases/tdb/query": respond(http.StatusOK, testimonialRows),
		"POST /databases/gdb/query": respond(http.StatusOK, galleryRows),
		"POST /databases/sdb/query": respond(http.StatusOK, `{"results":[],"has_more":false}`),
	}
	maps.Copy(routes, overrides)

	u := &upstream{ServeMux: http.NewServeMux()}
	for pattern, h := range routes {
		u.HandleFunc(pattern, h)
	}
	return u
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

type fetchLog struct {
	mu      sync.Mutex
	entries []analytics.Fetch
}

func (l *fetchLog) RecordFetch(_ context.Context, f analytics.Fetch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, f)
	return nil
}

func (l *fetchLog) outcomes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Endpoint + " " + e.Outcome
	}
	return out
}

type testEnv struct {
	upstream *upstream
	router   *gin.Engine
	log      *fetchLog
}

func newEnv(t *testing.T, u *upstream, mutate func(*aggregate.Deps)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)

	db, err := database.Open(context.Background(), database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := fetch.New(srv.Client(), logger.NewNop(), fetch.WithRetries(0))
	notionCfg := config.NotionConfig{
		Token: "secret", BaseURL: srv.URL, Version: "2022-06-28", MaxPages: 1,
		TestimonialsDB: "tdb", ServicesDB: "sdb", GalleryDB: "gdb", NewsletterDB: "ndb",
	}
	log := &fetchLog{}
	deps := aggregate.Deps{
		Blogger:   source.NewBlogger(config.BloggerConfig{APIKey: "k", BlogID: "blog", BaseURL: srv.URL, MaxPages: 1}, f),
		YouTube:   source.NewYouTube(config.YouTubeConfig{APIKey: "k", ChannelID: "c", BaseURL: srv.URL, MaxResults: 12}, f),
		Workspace: source.NewNotion(notionCfg, f),
		Databases: notionCfg,
		Projects: []content.Project{
			{Item: content.Item{ID: "mail", Title: "Mail client", Body: "TUI", Tags: []string{"go"}}},
			{Item: content.Item{ID: "site", Title: "Portfolio", Body: "gin", Tags: []string{"web"}}},
		},
		Cache:    cache.NewSQLite(db),
		CacheTTL: time.Hour,
		FetchLog: log,
		Now:      func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	if mutate != nil {
		mutate(&deps)
	}

	r := gin.New()
	aggregate.New(deps).Register(r.Group("/api"))
	return &testEnv{upstream: u, router: r, log: log}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeItems[T any](t *testing.T, w *httptest.ResponseRecorder) []T {
	t.Helper()
	var items []T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	return items
}

func TestPosts_NormalizesAndCaches(t *testing.T) {
	env := newEnv(t, newUpstream(nil), nil)

	w := env.do(http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

	posts := decodeItems[content.Post](t, w)
	require.Len(t, posts, 3)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, "https://x/y.png", posts[0].Thumbnail)
	assert.Equal(t, content.FallbackThumbnail, posts[1].Thumbnail)
	assert.Equal(t, content.AnonymousTitle, posts[0].Author)

	w = env.do(http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeItems[content.Post](t, w), 3)
	assert.Equal(t, int32(1), env.upstream.calls.Load())
	assert.Equal(t, []string{"/api/posts ok"}, env.log.outcomes())
}

func TestPosts_ListingParameters(t *testing.T) {
	env := newEnv(t, newUpstream(nil), nil)

	w := env.do(http.MethodGet, "/api/posts?tag=go&tag=life&sort=oldest", "")
	require.Equal(t, http.StatusOK, w.Code)

	var ids []string
	for _, p := range decodeItems[content.Post](t, w) {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p3", "p1", "p2"}, ids)

	w = env.do(http.MethodGet, "/api/posts?q=TRAINING", "")
	posts := decodeItems[content.Post](t, w)
	require.Len(t, posts, 1)
	assert.Equal(t, "p2", posts[0].ID)
}

func TestRead_MissingConfigurationMakesNoCall(t *testing.T) {
	env := newEnv(t, newUpstream(nil), func(d *aggregate.Deps) {
		d.Blogger = source.NewBlogger(config.BloggerConfig{BlogID: "blog"}, nil)
		d.Databases.GalleryDB = ""
	})

	for _, path := range []string{"/api/posts", "/api/gallery", "/api/gallery/grouped"} {
		w := env.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.JSONEq(t, `{"error":"Server configuration error"}`, w.Body.String(), path)
	}
	assert.Zero(t, env.upstream.calls.Load())
	assert.Contains(t, env.log.outcomes(), "/api/posts unconfigured")
}

func TestRead_UpstreamFailureIsEmptyArrayAndNotCached(t *testing.T) {
	env := newEnv(t, newUpstream(map[string]http.HandlerFunc{
		"GET /blogs/blog/posts": respond(http.StatusServiceUnavailable, `{"error":"down"}`),
	}), nil)

	for range 2 {
		w := env.do(http.MethodGet, "/api/posts", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
		assert.Empty(t, w.Header().Get("Cache-Control"))
	}
	assert.Equal(t, int32(2), env.upstream.calls.Load())
	assert.Equal(t, []string{"/api/posts failed", "/api/posts failed"}, env.log.outcomes())
}

func TestRead_MalformedResponseIsEmptyArray(t *testing.T) {
	env := newEnv(t, newUpstream(map[string]http.HandlerFunc{
		"GET /search": respond(http.StatusOK, `{"kind":"youtube#searchListResponse"}`),
	}), nil)

	w := env.do(http.MethodGet, "/api/videos", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, []string{"/api/videos failed"}, env.log.outcomes())
}

func TestRead_EmptyUpstreamIsServed(t *testing.T) {
	env := newEnv(t, newUpstream(nil), nil)

	w := env.do(http.MethodGet, "/api/services", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.Equal(t, []string{"/api/services empty"}, env.log.outcomes())
}

func TestVideosAndTestimonials(t *testing.T) {
	env := newEnv(t, newUpstream(nil), nil)

	videos := decodeItems[content.Video](t, env.do(http.MethodGet, "/api/videos", ""))
	require.Len(t, videos, 1)
	assert.Equal(t, "https://i.ytimg.com/hi.jpg", videos[0].Thumbnail)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", videos[0].SourceURL)

	testimonials := decodeItems[content.Testimonial](t, env.do(http.MethodGet, "/api/testimonials", ""))
	require.Len(t, testimonials, 1)
	assert.Equal(t, "Jane", testimonials[0].Title)
	assert.Equal(t, 4, testimonials[0].Rating)
}

func TestGalleryGrouped(t *testing.T) {
	env := newEnv(t, newUpstream(nil), nil)

	w := env.do(http.MethodGet, "/api/gallery/grouped", "")
	require.Equal(t, http.StatusOK, w.Code)

	var groups map[string][]content.GalleryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	require.Len(t, groups, 2)
	require.Len(t, groups["fights"], 1)
	assert.Equal(t, "g1", groups["fights"][0].ID)
	require.Len(t, groups[content.UncategorizedGroup], 1)
	assert.Equal(t, "https://img/2.jpg", groups[content.UncategorizedGroup][0].Thumbnail)

	flat := decodeItems[content.GalleryItem](t, env.do(http.MethodGet, "/api/gallery", ""))
	assert.Len(t, flat, 3)
}

func TestGalleryGrouped_FailureIsEmptyObject(t *testing.T) {
	env := newEnv(t, newUpstream(map[string]http.HandlerFunc{
		"POST /databases/gdb/query": respond(http.StatusInternalServerError, `{}`),
	}), nil)

	w := env.do(http.MethodGet, "/api/gallery/grouped", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestLanding(t *testing.T) {
	t.Run("both served", func(t *testing.T) {
		env := newEnv(t, newUpstream(nil), nil)
		w := env.do(http.MethodGet, "/api/landing", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got aggregate.Landing
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got.Posts, 3)
		assert.Len(t, got.Testimonials, 1)
	})

	t.Run("one failure empties both", func(t *testing.T) {
		env := newEnv(t, newUpstream(map[string]http.HandlerFunc{
			"POST /databases/tdb/query": respond(http.StatusBadGateway, ``),
		}), nil)
		w := env.do(http.MethodGet, "/api/landing", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"posts":[],"testimonials":[]}`, w.Body.String())
	})
}

func TestProjects(t *testing.T) {
	env := newEnv(t, newUpstream(nil), nil)

	all := decodeItems[content.Project](t, env.do(http.MethodGet, "/api/projects", ""))
	assert.Len(t, all, 2)

	web := decodeItems[content.Project](t, env.do(http.MethodGet, "/api/projects?tag=web", ""))
	require.Len(t, web, 1)
	assert.Equal(t, "site", web[0].ID)
	assert.Zero(t, env.upstream.calls.Load())
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Close() error { return nil }

func TestRead_CacheErrorsAreIgnored(t *testing.T) {
	env := newEnv(t, newUpstream(nil), func(d *aggregate.Deps) { d.Cache = brokenCache{} })

	for range 2 {
		w := env.do(http.MethodGet, "/api/videos", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeItems[content.Video](t, w), 1)
	}
	assert.Equal(t, int32(2), env.upstream.calls.Load())
}
