// Package ngx provides a client for the Nigerian Exchange equities reference feed.
package ngx

import (
	"os"
)

// DefaultFeedURL lists every equity with its sector in one page.
const DefaultFeedURL = "https://doclib.ngxgroup.com/REST/api/statistics/equities/?market=&sector=&orderby=&pageSize=300&pageNo=0"

// Config holds configuration for the feed client.
type Config struct {
	FeedURL string
}

// LoadConfig loads the feed configuration from environment variables.
func LoadConfig() Config {
	u := os.Getenv("NGX_FEED_URL")
	if u == "" {
		u = DefaultFeedURL
	}
	return Config{FeedURL: u}
}
