// Package rss parses the root feed list and individual feeds.
//
// Both levels are syndication documents: the feed list is itself an RSS/Atom
// document whose items name feeds, and each feed's items name articles.
// gofeed handles the format detection for both.
package rss

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawler"
)

// ErrFeedListUnavailable marks a feed list that could not be fetched or
// parsed; the crawl cannot proceed.
var ErrFeedListUnavailable = errors.New("feed list unavailable")

// ErrFeedUnavailable marks a single feed that could not be fetched or
// parsed; the crawl skips it.
var ErrFeedUnavailable = errors.New("feed unavailable")

// Source implements crawler.FeedSource over an HTTP fetcher. URIs without an
// http(s) scheme are read from the local filesystem, which is how the
// default small-feed.xml input is loaded.
type Source struct {
	fetcher crawler.Fetcher
}

// New builds a Source.
func New(fetcher crawler.Fetcher) *Source {
	return &Source{fetcher: fetcher}
}

// ParseFeedList returns the (url, title) of every feed named by the list at
// uri. Failures wrap ErrFeedListUnavailable.
func (s *Source) ParseFeedList(ctx context.Context, uri string) ([]crawler.FeedRef, error) {
	feed, err := s.parse(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedListUnavailable, uri, err)
	}
	refs := make([]crawler.FeedRef, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		refs = append(refs, crawler.FeedRef{URL: item.Link, Title: item.Title})
	}
	return refs, nil
}

// ParseFeed returns every article named by the feed at feedURL. Failures
// wrap ErrFeedUnavailable.
func (s *Source) ParseFeed(ctx context.Context, feedURL string) ([]crawler.Article, error) {
	feed, err := s.parse(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, feedURL, err)
	}
	articles := make([]crawler.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		articles = append(articles, crawler.Article{URL: item.Link, Title: item.Title})
	}
	return articles, nil
}

func (s *Source) parse(ctx context.Context, uri string) (*gofeed.Feed, error) {
	data, err := s.load(ctx, uri)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return feed, nil
}

func (s *Source) load(ctx context.Context, uri string) ([]byte, error) {
	if isRemote(uri) {
		return s.fetcher.Get(ctx, uri)
	}
	data, err := os.ReadFile(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

func isRemote(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
