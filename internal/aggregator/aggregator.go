// Package aggregator wires the crawl pipeline together behind a one-shot
// build entry point and an interactive query loop.
package aggregator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/config"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawl"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawler"
	collyfetcher "github.com/haoli94/RSS-News-Feed-Aggregation/internal/fetcher/colly"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/htmltext"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/index"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/rss"
)

const (
	maxMatchesToShow = 15
	maxDisplayWidth  = 70
)

// pipeline is the part of the crawler the facade drives.
type pipeline interface {
	Run(ctx context.Context, feedListURI string)
	Close()
}

// Aggregator is the facade over the crawl pipeline and the index.
type Aggregator struct {
	feedListURI string
	crawler     pipeline
	index       crawler.Index
	built       bool
	logger      *zap.Logger

	in  io.Reader
	out io.Writer
}

// New builds an Aggregator with the real collaborators: a colly fetcher, a
// gofeed feed source, and a goquery tokenizer.
func New(cfg config.Config, feedListURI string, logger *zap.Logger) *Aggregator {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      cfg.HTTP.Timeout(),
		MaxRedirects: cfg.HTTP.MaxRedirects,
	})
	idx := index.New()
	c := crawl.New(
		crawl.Config{
			FeedWorkers:    cfg.Pools.FeedWorkers,
			ArticleWorkers: cfg.Pools.ArticleWorkers,
			PerServerMax:   cfg.Crawler.PerServerMax,
		},
		rss.New(fetcher),
		fetcher,
		htmltext.New(),
		idx,
		logger,
	)
	return &Aggregator{
		feedListURI: feedListURI,
		crawler:     c,
		index:       idx,
		logger:      logger,
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// BuildIndex crawls everything reachable from the feed list and finalizes
// the index. The second and any later call is a no-op.
func (a *Aggregator) BuildIndex(ctx context.Context) {
	if a.built {
		a.logger.Debug("index already built, skipping crawl")
		return
	}
	a.built = true
	a.crawler.Run(ctx, a.feedListURI)
}

// Close shuts down the crawl pools.
func (a *Aggregator) Close() {
	a.crawler.Close()
}

// QueryIndex runs the interactive query loop until the user enters an empty
// line. Terms are trimmed and lowercased to match the token stream.
func (a *Aggregator) QueryIndex() {
	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, "Enter a search term [or just hit <enter> to quit]: ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return
		}
		term := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if term == "" {
			return
		}
		a.printMatches(term, a.index.Match(term))
	}
}

func (a *Aggregator) printMatches(term string, hits []crawler.Hit) {
	if len(hits) == 0 {
		fmt.Fprintf(a.out, "Ah, we didn't find the term %q. Try again.\n", term)
		return
	}
	plural := "s"
	if len(hits) == 1 {
		plural = ""
	}
	fmt.Fprintf(a.out, "That term appears in %d article%s.  ", len(hits), plural)
	switch {
	case len(hits) > maxMatchesToShow:
		fmt.Fprintf(a.out, "Here are the top %d of them:\n", maxMatchesToShow)
	case len(hits) > 1:
		fmt.Fprintln(a.out, "Here they are:")
	default:
		fmt.Fprintln(a.out, "Here it is:")
	}
	for i, hit := range hits {
		if i == maxMatchesToShow {
			break
		}
		times := "times"
		if hit.Count == 1 {
			times = "time"
		}
		fmt.Fprintf(a.out, "  %2d.) %q [appears %d %s].\n",
			i+1, truncate(hit.Article.Title), hit.Count, times)
		fmt.Fprintf(a.out, "       %q\n", truncate(hit.Article.URL))
	}
}

func truncate(s string) string {
	return runewidth.Truncate(s, maxDisplayWidth, "...")
}
