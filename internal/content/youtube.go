package content

import "strings"

const watchURL = "https://www.youtube.com/watch?v="

type youTubeThumb struct {
	URL string `json:"url"`
}

// YouTubeItem is one entry of a YouTube search response.
type YouTubeItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		PublishedAt  string `json:"publishedAt"`
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		Thumbnails   struct {
			Default *youTubeThumb `json:"default"`
			Medium  *youTubeThumb `json:"medium"`
			High    *youTubeThumb `json:"high"`
		} `json:"thumbnails"`
		Tags []string `json:"tags"`
	} `json:"snippet"`
}

// NormalizeVideo maps a YouTube search item to a Video.
func NormalizeVideo(raw YouTubeItem) Video {
	s := raw.Snippet
	var link string
	if raw.ID.VideoID != "" {
		link = watchURL + raw.ID.VideoID
	}
	return Video{
		Item: Item{
			ID:          raw.ID.VideoID,
			Title:       orDefault(strings.TrimSpace(s.Title), UntitledTitle),
			Body:        s.Description,
			PublishedAt: s.PublishedAt,
			Thumbnail:   ResolveThumbnail(s.Description, thumbURL(s.Thumbnails.High), thumbURL(s.Thumbnails.Medium), thumbURL(s.Thumbnails.Default)),
			Tags:        tagsOrEmpty(s.Tags),
			SourceURL:   link,
		},
		Channel: s.ChannelTitle,
	}
}

func thumbURL(t *youTubeThumb) string {
	if t == nil {
		return ""
	}
	return t.URL
}
