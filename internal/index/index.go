// Package index implements the in-memory inverted index mapping search
// terms to the articles they occur in.
package index

import (
	"sort"
	"sync"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawler"
)

// Index maps each term to the set of articles containing it and the number
// of occurrences per article. It is append-only while the crawl finalizes
// and read-only during queries.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[crawler.Article]int
}

// New constructs an empty Index.
func New() *Index {
	return &Index{postings: make(map[string]map[crawler.Article]int)}
}

// Add records term-frequency information for one article. sortedTokens must
// be sorted ascending; runs of equal tokens accumulate as frequency.
func (x *Index) Add(article crawler.Article, sortedTokens []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i := 0; i < len(sortedTokens); {
		j := i
		for j < len(sortedTokens) && sortedTokens[j] == sortedTokens[i] {
			j++
		}
		articles, ok := x.postings[sortedTokens[i]]
		if !ok {
			articles = make(map[crawler.Article]int)
			x.postings[sortedTokens[i]] = articles
		}
		articles[article] += j - i
		i = j
	}
}

// Match returns every article containing term, sorted descending by count
// with ties broken by the Article ordering.
func (x *Index) Match(term string) []crawler.Hit {
	x.mu.RLock()
	defer x.mu.RUnlock()
	articles, ok := x.postings[term]
	if !ok {
		return nil
	}
	hits := make([]crawler.Hit, 0, len(articles))
	for article, count := range articles {
		hits = append(hits, crawler.Hit{Article: article, Count: count})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Count != hits[j].Count {
			return hits[i].Count > hits[j].Count
		}
		return hits[i].Article.Less(hits[j].Article)
	})
	return hits
}

// Terms reports how many distinct terms the index holds.
func (x *Index) Terms() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.postings)
}
