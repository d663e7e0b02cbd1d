package report

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator orders company names and kana the way a Japanese reader expects,
// rather than by raw code point.
type collator struct {
	c *collate.Collator
}

func newCollator() collator {
	return collator{c: collate.New(language.Japanese)}
}

func (c collator) less(a, b string) bool {
	return c.c.CompareString(a, b) < 0
}
