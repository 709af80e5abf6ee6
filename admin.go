// admin.go - privacy-conscious admin console
package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-dev/internal/analytics"
	"github.com/Zachkp/zach-dev/internal/config"
	"github.com/Zachkp/zach-dev/internal/logger"
)

const (
	adminCookie    = "admin_token"
	adminCookieTTL = 24 * time.Hour

	devAdminUsername = "admin"
	devAdminPassword = "admin123"
)

// adminConsole guards the admin API with a per-process random token that
// is handed out as a cookie on login.
type adminConsole struct {
	token    string
	username string
	password string
	tracker  *analytics.Tracker
	log      logger.Logger
	now      func() time.Time
}

// newAdminConsole falls back to development credentials in debug mode.
// Without credentials outside debug mode every login is refused.
func newAdminConsole(cfg config.AdminConfig, debug bool, tracker *analytics.Tracker, log logger.Logger) (*adminConsole, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate admin token: %w", err)
	}

	a := &adminConsole{
		token:    token,
		username: cfg.Username,
		password: cfg.Password,
		tracker:  tracker,
		log:      log,
		now:      time.Now,
	}
	if debug {
		if a.username == "" {
			a.username = devAdminUsername
			log.Warn("Using default admin username. Set ADMIN_USERNAME.")
		}
		if a.password == "" {
			a.password = devAdminPassword
			log.Warn("Using default admin password. Set ADMIN_PASSWORD.")
		}
	} else if a.username == "" || a.password == "" {
		log.Warn("Admin console disabled: ADMIN_USERNAME or ADMIN_PASSWORD not set")
	}
	return a, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (a *adminConsole) enabled() bool {
	return a.username != "" && a.password != ""
}

func (a *adminConsole) checkCredentials(username, password string) bool {
	if !a.enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

func (a *adminConsole) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// sourceView adds a human readable age to a source's last fetch.
type sourceView struct {
	analytics.SourceHealth
	LastFetchedAgo string `json:"last_fetched_ago"`
}

type statsView struct {
	*analytics.Stats
	Sources     []sourceView `json:"sources"`
	GeneratedAt time.Time    `json:"generated_at"`
}

func (a *adminConsole) stats(c *gin.Context) (*statsView, bool) {
	stats, err := a.tracker.Stats(c.Request.Context())
	if err != nil {
		a.log.Error("Error loading admin stats", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statistics"})
		return nil, false
	}

	now := a.now()
	view := &statsView{Stats: stats, Sources: make([]sourceView, len(stats.Sources)), GeneratedAt: now.UTC()}
	for i, s := range stats.Sources {
		view.Sources[i] = sourceView{
			SourceHealth:   s,
			LastFetchedAgo: humanize.RelTime(s.LastFetched, now, "ago", "from now"),
		}
	}
	return view, true
}

func (a *adminConsole) register(r *gin.Engine) {
	r.POST("/admin/login", func(c *gin.Context) {
		visitor := a.tracker.HashIP(c.ClientIP())
		if !a.checkCredentials(c.PostForm("username"), c.PostForm("password")) {
			a.log.Warn("Failed admin login attempt", logger.String("visitor", visitor))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, a.token, int(adminCookieTTL.Seconds()), "/admin", "", c.Request.TLS != nil, true)
		a.log.Info("Admin login successful", logger.String("visitor", visitor))
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", c.Request.TLS != nil, true)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	admin := r.Group("/admin")
	admin.Use(a.authMiddleware())

	admin.GET("/api/stats", func(c *gin.Context) {
		if view, ok := a.stats(c); ok {
			c.JSON(http.StatusOK, view)
		}
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		view, ok := a.stats(c)
		if !ok {
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, view)
	})

	// Removes visitor and fetch records past the retention window.
	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := a.tracker.Cleanup(c.Request.Context(), analytics.Retention)
		if err != nil {
			a.log.Error("Privacy cleanup failed", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})
}
