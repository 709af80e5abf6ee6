package aggregate

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/zach-dev/internal/content"
	"github.com/Zachkp/zach-dev/internal/listing"
)

var errLandingSource = errors.New("landing source not served")

// groupedGallery answers with the gallery grouped by category, {} on failure.
func (h *Handler) groupedGallery(c *gin.Context) {
	res := load(c.Request.Context(), h, h.gallery())
	switch {
	case res.Outcome == OutcomeUnconfigured:
		c.JSON(http.StatusInternalServerError, gin.H{"error": configErrorMessage})
	case !res.Outcome.Served():
		c.JSON(http.StatusOK, map[string][]content.GalleryItem{})
	default:
		h.setCacheControl(c)
		c.JSON(http.StatusOK, content.GroupGallery(listing.Apply(res.Items, listQuery(c))))
	}
}

// Landing is the home page payload.
type Landing struct {
	Posts        []content.Post        `json:"posts"`
	Testimonials []content.Testimonial `json:"testimonials"`
}

// landing loads posts and testimonials concurrently. Both must be served;
// otherwise both are returned empty. Neither load cancels the other, so a
// served half is still cached.
func (h *Handler) landing(c *gin.Context) {
	var (
		posts        Result[content.Post]
		testimonials Result[content.Testimonial]
		g            errgroup.Group
	)
	ctx := c.Request.Context()
	g.Go(func() error {
		posts = load(ctx, h, h.posts())
		return servedErr(posts.Outcome)
	})
	g.Go(func() error {
		testimonials = load(ctx, h, h.testimonials())
		return servedErr(testimonials.Outcome)
	})

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusOK, Landing{Posts: []content.Post{}, Testimonials: []content.Testimonial{}})
		return
	}
	h.setCacheControl(c)
	c.JSON(http.StatusOK, Landing{Posts: posts.Items, Testimonials: testimonials.Items})
}

func servedErr(o Outcome) error {
	if o.Served() {
		return nil
	}
	return errLandingSource
}

// projects serves the static project list with the listing parameters applied.
func (h *Handler) projects(c *gin.Context) {
	items := h.Projects
	if items == nil {
		items = []content.Project{}
	}
	c.JSON(http.StatusOK, listing.Apply(items, listQuery(c)))
}

// Warm fills the cache for every configured source.
func (h *Handler) Warm(ctx context.Context) {
	warm(ctx, h, h.posts())
	warm(ctx, h, h.videos())
	warm(ctx, h, h.testimonials())
	warm(ctx, h, h.services())
	warm(ctx, h, h.gallery())
}

func warm[T listing.Record](ctx context.Context, h *Handler, f feed[T]) {
	if f.configured() {
		load(ctx, h, f)
	}
}
