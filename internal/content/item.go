// Package content defines the normalized records served to pages and the
// pure functions that build them from raw upstream JSON.
package content

// FallbackThumbnail is used when neither a structured image nor an image in
// the body is available. It is served from the site's /images directory.
const FallbackThumbnail = "/images/placeholder.png"

const (
	// AnonymousTitle replaces a missing display name.
	AnonymousTitle = "Anonymous"
	// UntitledTitle replaces a missing title.
	UntitledTitle = "Untitled"
	// DefaultRating is used when a rating is absent, not numeric or out of range.
	DefaultRating = 5
	// MaxRating is the highest accepted rating.
	MaxRating = 5
)

// Item is the shape shared by every content kind.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	PublishedAt string   `json:"publishedAt"`
	Thumbnail   string   `json:"thumbnail"`
	Tags        []string `json:"tags"`
	SourceURL   string   `json:"sourceUrl"`
}

// Base returns the shared fields. Kinds embedding Item inherit it, which is
// what the listing engine filters and sorts on.
func (i Item) Base() Item { return i }

type Post struct {
	Item
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
}

type Video struct {
	Item
	Channel string `json:"channel"`
}

// Testimonial carries the person's name in Title and the quote in Body.
type Testimonial struct {
	Item
	Role   string `json:"role"`
	Rating int    `json:"rating"`
}

type Service struct {
	Item
	Icon string `json:"icon,omitempty"`
}

type GalleryItem struct {
	Item
	Category string `json:"category"`
}

// Project is a portfolio entry from the site's own copy.
type Project struct {
	Item
	Stack []string `json:"stack"`
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
