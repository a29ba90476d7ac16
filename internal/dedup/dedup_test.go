package dedup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawler"
)

type captureIndex struct {
	mu      sync.Mutex
	entries map[crawler.Article][]string
}

func newCaptureIndex() *captureIndex {
	return &captureIndex{entries: make(map[crawler.Article][]string)}
}

func (c *captureIndex) Add(article crawler.Article, sortedTokens []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[article] = sortedTokens
}

func (c *captureIndex) Match(string) []crawler.Hit { return nil }

func TestDeduper_FirstObservationStored(t *testing.T) {
	t.Parallel()

	d := New()
	article := crawler.Article{URL: "http://a/x", Title: "T"}
	d.Observe("http://a", "T", article, []string{"alpha", "beta"})

	idx := newCaptureIndex()
	d.Finalize(idx)
	require.Equal(t, []string{"alpha", "beta"}, idx.entries[article])
}

func TestDeduper_SameTitleSameServerIntersects(t *testing.T) {
	t.Parallel()

	d := New()
	first := crawler.Article{URL: "http://a/x", Title: "T"}
	second := crawler.Article{URL: "http://a/y", Title: "T"}
	d.Observe("http://a", "T", first, []string{"k", "m", "p"})
	d.Observe("http://a", "T", second, []string{"k", "p", "q"})

	idx := newCaptureIndex()
	d.Finalize(idx)
	require.Len(t, idx.entries, 1)
	require.Equal(t, []string{"k", "p"}, idx.entries[first])
}

func TestDeduper_CanonicalArticleIsMinByTitleThenURL(t *testing.T) {
	t.Parallel()

	d := New()
	larger := crawler.Article{URL: "http://a/y", Title: "T"}
	smaller := crawler.Article{URL: "http://a/x", Title: "T"}
	d.Observe("http://a", "T", larger, []string{"k"})
	d.Observe("http://a", "T", smaller, []string{"k"})

	idx := newCaptureIndex()
	d.Finalize(idx)
	_, ok := idx.entries[smaller]
	require.True(t, ok, "canonical article must be the lexicographically smaller one")
}

func TestDeduper_DifferentServersStayDistinct(t *testing.T) {
	t.Parallel()

	d := New()
	a := crawler.Article{URL: "http://a/x", Title: "T"}
	b := crawler.Article{URL: "http://b/x", Title: "T"}
	d.Observe("http://a", "T", a, []string{"k"})
	d.Observe("http://b", "T", b, []string{"m"})

	require.Equal(t, 2, d.Len())
	idx := newCaptureIndex()
	d.Finalize(idx)
	require.Len(t, idx.entries, 2)
}

func TestDeduper_TokenListsOnlyShrink(t *testing.T) {
	t.Parallel()

	d := New()
	article := crawler.Article{URL: "http://a/x", Title: "T"}
	d.Observe("http://a", "T", article, []string{"a", "b", "c"})
	d.Observe("http://a", "T", article, []string{"b", "c", "d"})
	d.Observe("http://a", "T", article, []string{"c"})
	d.Observe("http://a", "T", article, []string{"a", "b", "c", "d"})

	idx := newCaptureIndex()
	d.Finalize(idx)
	require.Equal(t, []string{"c"}, idx.entries[article])
}

func TestDeduper_EmptyTokenListStaysEmpty(t *testing.T) {
	t.Parallel()

	d := New()
	article := crawler.Article{URL: "http://a/x", Title: "T"}
	d.Observe("http://a", "T", article, []string{})
	d.Observe("http://a", "T", article, []string{"k", "p"})

	idx := newCaptureIndex()
	d.Finalize(idx)
	require.Empty(t, idx.entries[article])
}

func TestDeduper_ConcurrentObserves(t *testing.T) {
	t.Parallel()

	d := New()
	var wg sync.WaitGroup
	const writers = 16
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			article := crawler.Article{URL: "http://a/x", Title: "T"}
			d.Observe("http://a", "T", article, []string{"k", "p"})
		}()
	}
	wg.Wait()

	require.Equal(t, 1, d.Len())
	idx := newCaptureIndex()
	d.Finalize(idx)
	require.Equal(t, []string{"k", "p"}, idx.entries[crawler.Article{URL: "http://a/x", Title: "T"}])
}

func TestIntersectSorted(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b []string
		want []string
	}{
		{"overlap", []string{"k", "m", "p"}, []string{"k", "p", "q"}, []string{"k", "p"}},
		{"disjoint", []string{"a", "b"}, []string{"c", "d"}, []string{}},
		{"identical", []string{"x", "y"}, []string{"x", "y"}, []string{"x", "y"}},
		{"empty left", []string{}, []string{"a"}, []string{}},
		{"empty right", []string{"a"}, []string{}, []string{}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, intersectSorted(tc.a, tc.b))
		})
	}
}
