// Package chat answers the site's chat widget with scripted replies.
package chat

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Fallback is the reply when no rule matches.
const Fallback = "I'm not sure about that one. Try asking about projects, the blog, videos, services or how to get in touch."

// Rule replies with Reply when the message contains any keyword as a whole
// word. A trailing plural "s" on the word is ignored.
type Rule struct {
	Keywords []string
	Reply    string
}

// DefaultRules covers the site's sections. Earlier rules win.
var DefaultRules = []Rule{
	{Keywords: []string{"hello", "hi", "hey"}, Reply: "Hi there! Ask me about projects, the blog, videos or services."},
	{Keywords: []string{"project", "portfolio", "work"}, Reply: "Check out the Projects section for terminal apps, a music streamer and this very site."},
	{Keywords: []string{"blog", "post", "article"}, Reply: "The latest posts are on the Blog page, newest first."},
	{Keywords: []string{"video", "youtube"}, Reply: "Recent videos from the channel are on the Videos page."},
	{Keywords: []string{"service", "hire", "price", "pricing"}, Reply: "The Services page lists what I offer. Use the contact form for a quote."},
	{Keywords: []string{"contact", "email", "reach"}, Reply: "Use the contact form and I'll get back to you soon."},
	{Keywords: []string{"gallery", "photo"}, Reply: "Photos are grouped by category in the Gallery."},
}

// Reply is one bot message.
type Reply struct {
	ID    string `json:"id"`
	Reply string `json:"reply"`
}

type Bot struct {
	rules []Rule
	newID func() string
}

func New(rules []Rule) *Bot {
	return &Bot{rules: rules, newID: uuid.NewString}
}

// Respond picks the first rule with a keyword among the words of message, ignoring case.
func (b *Bot) Respond(message string) Reply {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	reply := Fallback
	for _, r := range b.rules {
		if matchesAny(words, r.Keywords) {
			reply = r.Reply
			break
		}
	}
	return Reply{ID: b.newID(), Reply: reply}
}

func matchesAny(words, keywords []string) bool {
	for _, w := range words {
		singular := strings.TrimSuffix(w, "s")
		for _, k := range keywords {
			if w == k || singular == k {
				return true
			}
		}
	}
	return false
}

type request struct {
	Message string `json:"message" binding:"required,max=1000"`
}

// Handler serves POST {message} -> {id, reply}.
func (b *Bot) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}
		c.JSON(http.StatusOK, b.Respond(req.Message))
	}
}
