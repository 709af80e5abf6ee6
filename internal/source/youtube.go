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

const YouTubeName = "youtube"

// YouTube searches one channel's uploads.
type YouTube struct {
	cfg     config.YouTubeConfig
	fetcher Fetcher
}

func NewYouTube(cfg config.YouTubeConfig, f Fetcher) *YouTube {
	return &YouTube{cfg: cfg, fetcher: f}
}

func (y *YouTube) Configured() bool {
	return y.cfg.APIKey != "" && y.cfg.ChannelID != ""
}

// Videos returns the channel's most recent videos.
func (y *YouTube) Videos(ctx context.Context) ([]content.YouTubeItem, error) {
	if !y.Configured() {
		return nil, fmt.Errorf("%s: %w", YouTubeName, ErrNotConfigured)
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("channelId", y.cfg.ChannelID)
	q.Set("order", "date")
	q.Set("type", "video")
	q.Set("maxResults", strconv.Itoa(y.cfg.MaxResults))
	q.Set("key", y.cfg.APIKey)

	resp, err := y.fetcher.Do(ctx, fetch.Request{
		Source:  YouTubeName,
		URL:     y.cfg.BaseURL + "/search?" + q.Encode(),
		Timeout: y.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	var body struct {
		Items *[]content.YouTubeItem `json:"items"`
	}
	if err := decode(YouTubeName, resp.Body, &body); err != nil {
		return nil, err
	}
	if body.Items == nil {
		return nil, fmt.Errorf("%w: %s: missing items", ErrMalformedResponse, YouTubeName)
	}
	return *body.Items, nil
}
