package content

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NotionPage is one result of a Notion database query. Properties stay raw
// so a single malformed property cannot fail the whole page.
type NotionPage struct {
	ID          string                     `json:"id"`
	CreatedTime string                     `json:"created_time"`
	URL         string                     `json:"url"`
	Properties  map[string]json.RawMessage `json:"properties"`
}

type notionText struct {
	PlainText string `json:"plain_text"`
}

type notionLink struct {
	URL string `json:"url"`
}

type notionFile struct {
	Type     string      `json:"type"`
	External *notionLink `json:"external"`
	File     *notionLink `json:"file"`
}

type notionOption struct {
	Name string `json:"name"`
}

type property struct {
	Type        string          `json:"type"`
	Title       []notionText    `json:"title"`
	RichText    []notionText    `json:"rich_text"`
	Select      *notionOption   `json:"select"`
	MultiSelect []notionOption  `json:"multi_select"`
	Number      json.RawMessage `json:"number"`
	Date        *struct {
		Start string `json:"start"`
	} `json:"date"`
	Files []notionFile `json:"files"`
	URL   *string      `json:"url"`
	Email *string      `json:"email"`
}

// prop decodes the named property. Decoding errors leave whatever fields
// did decode; a missing property yields the zero value.
func (p NotionPage) prop(name string) property {
	var out property
	if raw, ok := p.Properties[name]; ok {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

// first returns the first of names whose property holds a value.
func (p NotionPage) first(names ...string) property {
	for _, n := range names {
		if pr := p.prop(n); pr.hasValue() {
			return pr
		}
	}
	return property{}
}

func (pr property) hasValue() bool {
	return pr.text() != "" || len(pr.Files) > 0 || len(pr.MultiSelect) > 0 || pr.hasNumber()
}

func (pr property) hasNumber() bool {
	return len(pr.Number) > 0 && string(pr.Number) != "null"
}

// title finds the page's title property whatever it is called.
func (p NotionPage) title() string {
	for name := range p.Properties {
		if pr := p.prop(name); pr.Type == "title" {
			return pr.text()
		}
	}
	return ""
}

func (pr property) text() string {
	switch {
	case len(pr.Title) > 0:
		return joinText(pr.Title)
	case len(pr.RichText) > 0:
		return joinText(pr.RichText)
	case pr.Select != nil:
		return pr.Select.Name
	case pr.URL != nil:
		return *pr.URL
	case pr.Email != nil:
		return *pr.Email
	case pr.Date != nil:
		return pr.Date.Start
	}
	return ""
}

func joinText(parts []notionText) string {
	var b strings.Builder
	for _, t := range parts {
		b.WriteString(t.PlainText)
	}
	return strings.TrimSpace(b.String())
}

func (pr property) tags() []string {
	out := make([]string, 0, len(pr.MultiSelect))
	for _, o := range pr.MultiSelect {
		if o.Name != "" {
			out = append(out, o.Name)
		}
	}
	if len(out) == 0 && pr.Select != nil && pr.Select.Name != "" {
		out = append(out, pr.Select.Name)
	}
	return out
}

// imageCandidates lists structured image URLs in precedence order:
// direct URL property, external file, uploaded file.
func (p NotionPage) imageCandidates(names ...string) []string {
	var direct, external, uploaded string
	for _, n := range names {
		pr := p.prop(n)
		if direct == "" && pr.URL != nil {
			direct = *pr.URL
		}
		for _, f := range pr.Files {
			if external == "" && f.External != nil {
				external = f.External.URL
			}
			if uploaded == "" && f.File != nil {
				uploaded = f.File.URL
			}
		}
	}
	return []string{direct, external, uploaded}
}

// rating reads a numeric property, accepting numbers or numeric text.
func (pr property) rating() int {
	if pr.hasNumber() {
		var f float64
		if err := json.Unmarshal(pr.Number, &f); err == nil {
			return clampRating(f)
		}
		var s string
		if err := json.Unmarshal(pr.Number, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return clampRating(f)
			}
		}
		return DefaultRating
	}
	if f, err := strconv.ParseFloat(pr.text(), 64); err == nil {
		return clampRating(f)
	}
	return DefaultRating
}

// clampRating rounds f, falling back to DefaultRating outside 0..MaxRating.
func clampRating(f float64) int {
	if !(f >= 0 && f <= MaxRating) {
		return DefaultRating
	}
	return int(math.Round(f))
}

func (p NotionPage) published(names ...string) string {
	for _, n := range names {
		if pr := p.prop(n); pr.Date != nil && pr.Date.Start != "" {
			return pr.Date.Start
		}
	}
	return p.CreatedTime
}

func (p NotionPage) link(names ...string) string {
	if l := p.first(names...).text(); l != "" {
		return l
	}
	return p.URL
}

// NormalizeTestimonial maps a testimonials database row.
func NormalizeTestimonial(p NotionPage) Testimonial {
	quote := p.first("Quote", "Testimonial", "Content").text()
	role := p.first("Role", "Position").text()
	if company := p.first("Company").text(); company != "" {
		if role == "" {
			role = company
		} else {
			role += ", " + company
		}
	}
	return Testimonial{
		Item: Item{
			ID:          p.ID,
			Title:       orDefault(p.title(), AnonymousTitle),
			Body:        quote,
			PublishedAt: p.published("Date"),
			Thumbnail:   ResolveThumbnail(quote, p.imageCandidates("Avatar", "Photo", "Image")...),
			Tags:        p.first("Tags").tags(),
			SourceURL:   p.link("Link", "URL"),
		},
		Role:   role,
		Rating: p.first("Rating").rating(),
	}
}

// NormalizeService maps a services database row.
func NormalizeService(p NotionPage) Service {
	desc := p.first("Description", "Content").text()
	return Service{
		Item: Item{
			ID:          p.ID,
			Title:       orDefault(p.title(), UntitledTitle),
			Body:        desc,
			PublishedAt: p.published("Date"),
			Thumbnail:   ResolveThumbnail(desc, p.imageCandidates("Image", "Cover")...),
			Tags:        p.first("Tags").tags(),
			SourceURL:   p.link("Link", "URL"),
		},
		Icon: p.first("Icon").text(),
	}
}

// NormalizeGalleryItem maps a gallery database row.
func NormalizeGalleryItem(p NotionPage) GalleryItem {
	desc := p.first("Description", "Caption").text()
	return GalleryItem{
		Item: Item{
			ID:          p.ID,
			Title:       orDefault(p.title(), UntitledTitle),
			Body:        desc,
			PublishedAt: p.published("Date"),
			Thumbnail:   ResolveThumbnail(desc, p.imageCandidates("Image", "Photo")...),
			Tags:        p.first("Tags").tags(),
			SourceURL:   p.link("Link", "URL"),
		},
		Category: p.first("Category").text(),
	}
}

// UncategorizedGroup collects gallery items with no category.
const UncategorizedGroup = "uncategorized"

// GroupGallery buckets items by lower-cased category, keeping source order
// within each bucket. Items without a real image are dropped.
func GroupGallery(items []GalleryItem) map[string][]GalleryItem {
	groups := make(map[string][]GalleryItem)
	for _, it := range items {
		if it.Thumbnail == FallbackThumbnail {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(it.Category))
		if key == "" {
			key = UncategorizedGroup
		}
		groups[key] = append(groups[key], it)
	}
	return groups
}
