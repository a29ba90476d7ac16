// Package htmltext turns article HTML into a token stream.
package htmltext

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Extractor tokenizes HTML bodies. Script and style subtrees are removed
// before the text is split; tokens are lowercased and each token is emitted
// exactly as many times as it occurs.
type Extractor struct{}

// New builds an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Tokenize parses body as HTML and returns its visible text as tokens.
func (e *Extractor) Tokenize(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()

	// Collect text nodes one by one so that words in adjacent elements
	// (<h1>a</h1><p>b</p>) stay separate tokens.
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				parts = append(parts, child.Text())
				return
			}
			walk(child)
		})
	}
	walk(doc.Selection)
	return splitTokens(strings.Join(parts, " ")), nil
}

// splitTokens breaks text into maximal runs of letters and digits,
// lowercased.
func splitTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
