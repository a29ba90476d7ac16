// Package dedup merges articles that share a (server, title) group into one
// canonical entry whose token set is the intersection of everything observed
// for the group.
package dedup

import (
	"sync"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawler"
)

type entry struct {
	article crawler.Article
	tokens  []string
}

// Deduper accumulates observed articles keyed by server then title. All
// reads and writes of the map happen under one mutex; each critical section
// is a single linear merge over sorted token lists.
type Deduper struct {
	mu     sync.Mutex
	groups map[string]map[string]entry
}

// New constructs an empty Deduper.
func New() *Deduper {
	return &Deduper{groups: make(map[string]map[string]entry)}
}

// Observe records one tokenized article. sortedTokens must be sorted
// ascending with no duplicates. If the (server, title) group already exists
// the entry is overwritten with the smaller article and the intersection of
// the two token sets; token lists only ever shrink.
func (d *Deduper) Observe(server, title string, article crawler.Article, sortedTokens []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	titles, ok := d.groups[server]
	if !ok {
		titles = make(map[string]entry)
		d.groups[server] = titles
	}
	old, ok := titles[title]
	if !ok {
		titles[title] = entry{article: article, tokens: sortedTokens}
		return
	}
	titles[title] = entry{
		article: crawler.MinArticle(old.article, article),
		tokens:  intersectSorted(old.tokens, sortedTokens),
	}
}

// Len reports how many (server, title) groups exist.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, titles := range d.groups {
		n += len(titles)
	}
	return n
}

// Finalize feeds every group's canonical entry to the index. Serialization
// with other index writers is the caller's responsibility.
func (d *Deduper) Finalize(idx crawler.Index) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, titles := range d.groups {
		for _, e := range titles {
			idx.Add(e.article, e.tokens)
		}
	}
}

// intersectSorted merges two ascending duplicate-free lists into their
// intersection.
func intersectSorted(a, b []string) []string {
	out := make([]string, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
