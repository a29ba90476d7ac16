// Package crawl drives the three-level fan-out from the feed list down to
// individual articles and finalizes the inverted index.
package crawl

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawler"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/dedup"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/metrics"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/pool"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/registry"
)

// Config sizes the two pools and the per-origin download limit.
type Config struct {
	FeedWorkers    int
	ArticleWorkers int
	PerServerMax   int
}

// Crawler owns the crawl pipeline: two worker pools, the URL/permit
// registry, and the deduper that is drained into the index once all work
// quiesces.
//
// The feed pool bounds how many feeds are parsed at once; the article pool
// bounds how many article downloads run at once. A feed job waits on the
// article pool before returning so the outer feed-pool Wait observes true
// end-of-work. That nested wait is safe: the article pool never schedules
// feed jobs.
type Crawler struct {
	feeds     crawler.FeedSource
	fetcher   crawler.Fetcher
	tokenizer crawler.Tokenizer
	index     crawler.Index

	reg         *registry.Registry
	dedup       *dedup.Deduper
	feedPool    *pool.Pool
	articlePool *pool.Pool

	indexMu sync.Mutex
	logger  *zap.Logger
}

// New constructs a Crawler and starts both pools.
func New(
	cfg Config,
	feeds crawler.FeedSource,
	fetcher crawler.Fetcher,
	tokenizer crawler.Tokenizer,
	idx crawler.Index,
	logger *zap.Logger,
) *Crawler {
	if cfg.FeedWorkers < 1 {
		cfg.FeedWorkers = 1
	}
	if cfg.ArticleWorkers < 1 {
		cfg.ArticleWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		feeds:       feeds,
		fetcher:     fetcher,
		tokenizer:   tokenizer,
		index:       idx,
		reg:         registry.New(cfg.PerServerMax),
		dedup:       dedup.New(),
		feedPool:    pool.New(cfg.FeedWorkers, logger.Named("feed-pool")),
		articlePool: pool.New(cfg.ArticleWorkers, logger.Named("article-pool")),
		logger:      logger,
	}
}

// Run crawls everything reachable from feedListURI and finalizes the index.
// A feed list that cannot be obtained is fatal to the crawl; the index stays
// empty. Every other failure is contained at its job boundary.
func (c *Crawler) Run(ctx context.Context, feedListURI string) {
	refs, err := c.feeds.ParseFeedList(ctx, feedListURI)
	if err != nil {
		c.logger.Error("feed list unavailable, aborting crawl",
			zap.String("uri", feedListURI),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("feed list parsed",
		zap.String("uri", feedListURI),
		zap.Int("feeds", len(refs)),
	)

	for _, ref := range refs {
		ref := ref
		c.feedPool.Schedule(func() { c.processFeed(ctx, ref) })
	}
	c.feedPool.Wait()

	c.indexMu.Lock()
	c.dedup.Finalize(c.index)
	c.indexMu.Unlock()
	metrics.SetIndexedArticles(c.dedup.Len())
	c.logger.Info("index finalized", zap.Int("articles", c.dedup.Len()))
}

// Close drains and shuts down both pools.
func (c *Crawler) Close() {
	c.articlePool.Close()
	c.feedPool.Close()
}

func (c *Crawler) processFeed(ctx context.Context, ref crawler.FeedRef) {
	if !c.reg.TryClaim(ref.URL) {
		metrics.DuplicateSkipped("feed")
		return
	}
	articles, err := c.feeds.ParseFeed(ctx, ref.URL)
	if err != nil {
		metrics.FeedProcessed("failed")
		c.logger.Warn("skipping feed",
			zap.String("url", ref.URL),
			zap.String("title", ref.Title),
			zap.Error(err),
		)
		return
	}
	for _, article := range articles {
		article := article
		c.articlePool.Schedule(func() { c.processArticle(ctx, article) })
	}
	// Do not return while this feed's articles are still in flight; the
	// outer feed-pool Wait relies on it.
	c.articlePool.Wait()
	metrics.FeedProcessed("ok")
	c.logger.Debug("feed processed",
		zap.String("url", ref.URL),
		zap.Int("articles", len(articles)),
	)
}

func (c *Crawler) processArticle(ctx context.Context, article crawler.Article) {
	if !c.reg.TryClaim(article.URL) {
		metrics.DuplicateSkipped("article")
		return
	}
	server := crawler.ServerKey(article.URL)

	permitStart := time.Now()
	if err := c.reg.Acquire(ctx, server); err != nil {
		metrics.ArticleProcessed("failed")
		return
	}
	metrics.ObservePermitWait(server, time.Since(permitStart))

	// The permit covers only the network download.
	fetchStart := time.Now()
	body, err := c.fetcher.Get(ctx, article.URL)
	c.reg.Release(server)
	metrics.ObserveFetchDuration(server, time.Since(fetchStart))
	if err != nil {
		metrics.ArticleProcessed("failed")
		c.logger.Debug("article fetch failed", zap.String("url", article.URL), zap.Error(err))
		return
	}

	tokens, err := c.tokenizer.Tokenize(body)
	if err != nil {
		metrics.ArticleProcessed("failed")
		c.logger.Debug("article parse failed", zap.String("url", article.URL), zap.Error(err))
		return
	}

	c.dedup.Observe(server, article.Title, article, normalizeTokens(tokens))
	metrics.ArticleProcessed("ok")
}

// normalizeTokens copies, sorts, and deduplicates the raw token stream into
// the form the deduper expects.
func normalizeTokens(tokens []string) []string {
	sorted := slices.Clone(tokens)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
