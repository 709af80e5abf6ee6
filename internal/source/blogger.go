package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Zachkp/zach-dev/internal/config"
	"github.com/Zachkp/zach-dev/internal/content"
	"github.com/Zachkp/zach-dev/internal/fetch"
)

// BloggerName identifies the blog source in logs, metrics and the fetch log.
const BloggerName = "blogger"

// Blogger lists published posts from one blog.
type Blogger struct {
	cfg     config.BloggerConfig
	fetcher Fetcher
}

func NewBlogger(cfg config.BloggerConfig, f Fetcher) *Blogger {
	return &Blogger{cfg: cfg, fetcher: f}
}

// Configured reports whether both the API key and blog ID are set.
func (b *Blogger) Configured() bool {
	return b.cfg.APIKey != "" && b.cfg.BlogID != ""
}

type bloggerPage struct {
	Items         *[]content.BloggerPost `json:"items"`
	NextPageToken string                 `json:"nextPageToken"`
}

// Posts returns live posts newest first, following page tokens up to MaxPages.
func (b *Blogger) Posts(ctx context.Context) ([]content.BloggerPost, error) {
	if !b.Configured() {
		return nil, fmt.Errorf("%s: %w", BloggerName, ErrNotConfigured)
	}

	var posts []content.BloggerPost
	token := ""
	for page := 0; page < max(b.cfg.MaxPages, 1); page++ {
		resp, err := b.fetcher.Do(ctx, fetch.Request{
			Source:  BloggerName,
			URL:     b.postsURL(token),
			Timeout: b.cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}

		var body bloggerPage
		if err := decode(BloggerName, resp.Body, &body); err != nil {
			return nil, err
		}
		if body.Items == nil {
			return nil, fmt.Errorf("%w: %s: missing items", ErrMalformedResponse, BloggerName)
		}
		posts = append(posts, *body.Items...)

		if body.NextPageToken == "" {
			break
		}
		token = body.NextPageToken
	}
	return posts, nil
}

func (b *Blogger) postsURL(pageToken string) string {
	q := url.Values{}
	q.Set("key", b.cfg.APIKey)
	q.Set("fetchImages", "true")
	q.Set("status", "live")
	q.Set("orderBy", "published")
	if b.cfg.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(b.cfg.MaxResults))
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return fmt.Sprintf("%s/blogs/%s/posts?%s", b.cfg.BaseURL, url.PathEscape(b.cfg.BlogID), q.Encode())
}
