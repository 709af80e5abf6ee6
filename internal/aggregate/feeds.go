package aggregate

import (
	"context"

	"github.com/Zachkp/zach-dev/internal/content"
	"github.com/Zachkp/zach-dev/internal/listing"
	"github.com/Zachkp/zach-dev/internal/source"
)

// Endpoint paths, also used as cache keys and metric labels.
const (
	PostsEndpoint        = "/api/posts"
	VideosEndpoint       = "/api/videos"
	TestimonialsEndpoint = "/api/testimonials"
	ServicesEndpoint     = "/api/services"
	GalleryEndpoint      = "/api/gallery"
	SubscribeEndpoint    = "/api/subscribe"
)

func (h *Handler) posts() feed[content.Post] {
	return feed[content.Post]{
		endpoint:   PostsEndpoint,
		source:     source.BloggerName,
		configured: h.Blogger.Configured,
		load: func(ctx context.Context) ([]content.Post, error) {
			raw, err := h.Blogger.Posts(ctx)
			return normalizeAll(raw, err, content.NormalizePost)
		},
	}
}

func (h *Handler) videos() feed[content.Video] {
	return feed[content.Video]{
		endpoint:   VideosEndpoint,
		source:     source.YouTubeName,
		configured: h.YouTube.Configured,
		load: func(ctx context.Context) ([]content.Video, error) {
			raw, err := h.YouTube.Videos(ctx)
			return normalizeAll(raw, err, content.NormalizeVideo)
		},
	}
}

func (h *Handler) testimonials() feed[content.Testimonial] {
	return workspaceFeed(h, TestimonialsEndpoint, h.Databases.TestimonialsDB, content.NormalizeTestimonial)
}

func (h *Handler) services() feed[content.Service] {
	return workspaceFeed(h, ServicesEndpoint, h.Databases.ServicesDB, content.NormalizeService)
}

func (h *Handler) gallery() feed[content.GalleryItem] {
	return workspaceFeed(h, GalleryEndpoint, h.Databases.GalleryDB, content.NormalizeGalleryItem)
}

func workspaceFeed[T listing.Record](h *Handler, endpoint, databaseID string, normalize func(content.NotionPage) T) feed[T] {
	return feed[T]{
		endpoint:   endpoint,
		source:     source.NotionName,
		configured: func() bool { return h.Workspace.Configured(databaseID) },
		load: func(ctx context.Context) ([]T, error) {
			pages, err := h.Workspace.Query(ctx, databaseID, nil)
			return normalizeAll(pages, err, normalize)
		},
	}
}

func normalizeAll[R, T any](raw []R, err error, normalize func(R) T) ([]T, error) {
	if err != nil {
		return nil, err
	}
	out := make([]T, len(raw))
	for i, r := range raw {
		out[i] = normalize(r)
	}
	return out, nil
}
