package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/crawler"
)

func TestIndex_AddAndMatch(t *testing.T) {
	t.Parallel()

	idx := New()
	article := crawler.Article{URL: "http://a/x", Title: "T"}
	idx.Add(article, []string{"alpha", "beta"})

	hits := idx.Match("alpha")
	require.Equal(t, []crawler.Hit{{Article: article, Count: 1}}, hits)
	require.Empty(t, idx.Match("gamma"))
}

func TestIndex_CountsRunsOfEqualTokens(t *testing.T) {
	t.Parallel()

	idx := New()
	article := crawler.Article{URL: "http://a/x", Title: "T"}
	idx.Add(article, []string{"news", "news", "news", "world"})

	hits := idx.Match("news")
	require.Len(t, hits, 1)
	require.Equal(t, 3, hits[0].Count)
}

func TestIndex_MatchSortsByCountDescending(t *testing.T) {
	t.Parallel()

	idx := New()
	frequent := crawler.Article{URL: "http://a/x", Title: "A"}
	rare := crawler.Article{URL: "http://b/y", Title: "B"}
	idx.Add(frequent, []string{"term", "term", "term"})
	idx.Add(rare, []string{"term"})

	hits := idx.Match("term")
	require.Equal(t, frequent, hits[0].Article)
	require.Equal(t, 3, hits[0].Count)
	require.Equal(t, rare, hits[1].Article)
	require.Equal(t, 1, hits[1].Count)
}

func TestIndex_MatchBreaksTiesByArticleOrdering(t *testing.T) {
	t.Parallel()

	idx := New()
	later := crawler.Article{URL: "http://a/z", Title: "Zebra"}
	earlier := crawler.Article{URL: "http://a/a", Title: "Aardvark"}
	sameTitleLater := crawler.Article{URL: "http://a/b", Title: "Aardvark"}
	idx.Add(later, []string{"term"})
	idx.Add(sameTitleLater, []string{"term"})
	idx.Add(earlier, []string{"term"})

	hits := idx.Match("term")
	require.Equal(t, []crawler.Article{earlier, sameTitleLater, later},
		[]crawler.Article{hits[0].Article, hits[1].Article, hits[2].Article})
}

func TestIndex_EmptyTokensAddNothing(t *testing.T) {
	t.Parallel()

	idx := New()
	idx.Add(crawler.Article{URL: "http://a/x", Title: "T"}, nil)
	require.Equal(t, 0, idx.Terms())
}
