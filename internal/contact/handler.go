package contact

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-dev/internal/logger"
)

const (
	successMessage = "Thank you for your message! I'll get back to you soon."
	failureMessage = "Sorry, there was an error sending your message. Please try again later."
)

// Handler accepts the contact form (form-encoded or JSON).
func Handler(sender Sender, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var msg Message
		if err := c.ShouldBind(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, a valid email and a message are required"})
			return
		}

		if err := sender.Send(msg); err != nil {
			log.Error("Error sending contact email", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": failureMessage})
			return
		}

		log.Info("Contact email sent", logger.String("name", msg.Name))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": successMessage})
	}
}
