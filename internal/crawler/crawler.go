// Package crawler defines the core types and collaborator interfaces for the
// news aggregation pipeline.
package crawler

import (
	"context"
	"net/url"
)

// Article identifies a single news item. Articles are value objects and are
// copied freely.
type Article struct {
	URL   string
	Title string
}

// Less orders articles by (title, url) lexicographically.
func (a Article) Less(b Article) bool {
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.URL < b.URL
}

// MinArticle returns the smaller of two articles under the Article ordering.
func MinArticle(a, b Article) Article {
	if b.Less(a) {
		return b
	}
	return a
}

// FeedRef names one feed found in the feed list.
type FeedRef struct {
	URL   string
	Title string
}

// Hit is one ranked query result.
type Hit struct {
	Article Article
	Count   int
}

// Fetcher downloads a single document body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// FeedSource parses the feed list and individual feeds. Feed-list failures
// and single-feed failures are signaled with distinct error values so the
// orchestrator can tell fatal from skippable.
type FeedSource interface {
	ParseFeedList(ctx context.Context, uri string) ([]FeedRef, error)
	ParseFeed(ctx context.Context, url string) ([]Article, error)
}

// Tokenizer extracts the token stream from a fetched HTML body.
type Tokenizer interface {
	Tokenize(body []byte) ([]string, error)
}

// Index receives finalized articles and answers term queries. Matches are
// sorted descending by count, ties broken by the Article ordering.
type Index interface {
	Add(article Article, sortedTokens []string)
	Match(term string) []Hit
}

// ServerKey extracts the origin (scheme://host[:port]) used to group
// articles for deduplication and rate limiting. Unparseable URLs map to
// themselves so they still group consistently.
func ServerKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
