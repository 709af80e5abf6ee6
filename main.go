package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-dev/internal/aggregate"
	"github.com/Zachkp/zach-dev/internal/analytics"
	"github.com/Zachkp/zach-dev/internal/cache"
	"github.com/Zachkp/zach-dev/internal/chat"
	"github.com/Zachkp/zach-dev/internal/config"
	"github.com/Zachkp/zach-dev/internal/contact"
	"github.com/Zachkp/zach-dev/internal/database"
	"github.com/Zachkp/zach-dev/internal/fetch"
	"github.com/Zachkp/zach-dev/internal/logger"
	"github.com/Zachkp/zach-dev/internal/metrics"
	"github.com/Zachkp/zach-dev/internal/source"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	cleanupInterval   = 24 * time.Hour
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: cfg.Server.Debug})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store, err := cache.New(cfg.Cache, db)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer store.Close()

	salt, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate hashing salt: %w", err)
	}
	tracker := analytics.NewTracker(db, salt, log)
	log.Info("Visitor tracking enabled with hashed IP addresses")

	m := metrics.New()
	s, err := newSite(cfg, log, store, tracker, m)
	if err != nil {
		return err
	}

	go s.content.Warm(ctx)
	go housekeeping(ctx, tracker, store, log)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           s.router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	tracker.Wait()
	return nil
}

// site holds the wired components behind the router.
type site struct {
	log     logger.Logger
	tracker *analytics.Tracker
	metrics *metrics.Metrics
	content *aggregate.Handler
	mailer  contact.Sender
	bot     *chat.Bot
	admin   *adminConsole
}

// newSite wires the upstream clients. A single fetcher and a single
// workspace client are shared by every handler.
func newSite(cfg *config.Config, log logger.Logger, store cache.Store, tracker *analytics.Tracker, m *metrics.Metrics) (*site, error) {
	fetcher := fetch.New(&http.Client{}, log,
		fetch.WithRetries(cfg.Fetch.Retries),
		fetch.WithBaseDelay(cfg.Fetch.BaseDelay),
		fetch.WithObserver(m.ObserveAttempt),
	)
	workspace := source.NewNotion(cfg.Notion, fetcher)

	api := aggregate.New(aggregate.Deps{
		Blogger:   source.NewBlogger(cfg.Blogger, fetcher),
		YouTube:   source.NewYouTube(cfg.YouTube, fetcher),
		Workspace: workspace,
		Databases: cfg.Notion,
		Projects:  Projects,
		Cache:     store,
		CacheTTL:  cfg.Cache.TTL,
		FetchLog:  tracker,
		Observer:  m,
		Log:       log,
	})

	admin, err := newAdminConsole(cfg.Admin, cfg.Server.Debug, tracker, log)
	if err != nil {
		return nil, err
	}

	return &site{
		log:     log,
		tracker: tracker,
		metrics: m,
		content: api,
		mailer:  contact.NewMailer(cfg.SMTP),
		bot:     chat.New(chat.DefaultRules),
		admin:   admin,
	}, nil
}

func (s *site) router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(s.log), recovery(s.log), s.metrics.Middleware(), s.tracker.Middleware())

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.POST("/contact", contact.Handler(s.mailer, s.log))

	api := r.Group("/api")
	s.content.Register(api)
	api.POST("/chat", s.bot.Handler())
	api.GET("/about", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"about":      AboutMe,
			"experience": Experience,
			"education":  Education,
		})
	})

	s.admin.register(r)
	return r
}

// housekeeping runs the retention cleanup and purges the sqlite cache once
// at startup and then daily.
func housekeeping(ctx context.Context, tracker *analytics.Tracker, store cache.Store, log logger.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		if _, err := tracker.Cleanup(ctx, analytics.Retention); err != nil {
			log.Error("Error cleaning up old records", logger.Error(err))
		}
		if s, ok := store.(*cache.SQLite); ok {
			if _, err := s.Purge(ctx); err != nil {
				log.Error("Error purging expired cache entries", logger.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
