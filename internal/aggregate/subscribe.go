package aggregate

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Zachkp/zach-dev/internal/logger"
	"github.com/Zachkp/zach-dev/internal/source"
)

type subscribeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// subscribe adds an email to the newsletter database unless it is already
// there. Check-then-create is not atomic; two concurrent requests for the
// same address can both create a row.
func (h *Handler) subscribe(c *gin.Context) {
	var req subscribeRequest
	bindErr := c.ShouldBindJSON(&req)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}
	// Surrounding whitespace fails the first validation; check the trimmed value.
	if bindErr != nil && binding.Validator.ValidateStruct(req) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	ctx := c.Request.Context()
	db := h.Databases.NewsletterDB
	if !h.Workspace.Configured(db) {
		h.record(ctx, SubscribeEndpoint, source.NotionName, OutcomeUnconfigured, nil, 0)
		c.JSON(http.StatusInternalServerError, gin.H{"error": configErrorMessage})
		return
	}

	email := req.Email
	start := time.Now()

	exists, err := h.Workspace.HasSubscriber(ctx, db, email)
	if err == nil && !exists {
		err = h.Workspace.AddSubscriber(ctx, db, email, displayName(email), h.Now())
	}
	if err != nil {
		h.record(ctx, SubscribeEndpoint, source.NotionName, OutcomeFailed, err, time.Since(start))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}
	h.record(ctx, SubscribeEndpoint, source.NotionName, OutcomeOK, nil, time.Since(start))

	if exists {
		h.Log.Info("Subscriber already exists", logger.String("endpoint", SubscribeEndpoint))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "You're already subscribed!"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully subscribed!"})
}

// displayName is the local part of an email address.
func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
