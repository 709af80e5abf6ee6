package content

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const excerptRunes = 200

// BloggerPost is one entry of a Blogger posts listing.
type BloggerPost struct {
	ID        string   `json:"id"`
	Published string   `json:"published"`
	Updated   string   `json:"updated"`
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Labels    []string `json:"labels"`
	Author    *struct {
		DisplayName string `json:"displayName"`
		Image       *struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"author"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

var textPolicy = bluemonday.StrictPolicy()

// NormalizePost maps a Blogger post to a Post.
func NormalizePost(raw BloggerPost) Post {
	var image, author string
	if len(raw.Images) > 0 {
		image = raw.Images[0].URL
	}
	if raw.Author != nil {
		author = raw.Author.DisplayName
	}
	return Post{
		Item: Item{
			ID:          raw.ID,
			Title:       orDefault(strings.TrimSpace(raw.Title), UntitledTitle),
			Body:        raw.Content,
			PublishedAt: orDefault(raw.Published, raw.Updated),
			Thumbnail:   ResolveThumbnail(raw.Content, image),
			Tags:        tagsOrEmpty(raw.Labels),
			SourceURL:   raw.URL,
		},
		Author:  orDefault(author, AnonymousTitle),
		Excerpt: Excerpt(raw.Content, excerptRunes),
	}
}

// Excerpt strips markup from body and cuts it to at most n runes.
func Excerpt(body string, n int) string {
	// Pad tags so adjacent blocks do not run together once stripped.
	text := html.UnescapeString(textPolicy.Sanitize(strings.ReplaceAll(body, "<", " <")))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
