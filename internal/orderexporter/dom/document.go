package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"order-exporter/internal/orderexporter/locator"
)

// Selection adapts a goquery selection to locator.Node.
type Selection struct {
	sel *goquery.Selection
}

var _ locator.Node = (*Selection)(nil)

// Parse reads a rendered page and returns its document root.
func Parse(r io.Reader) (*Selection, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Selection{sel: doc.Selection}, nil
}

func ParseString(html string) (*Selection, error) {
	return Parse(strings.NewReader(html))
}

func (s *Selection) Find(selector string) (locator.Node, bool) {
	found := s.sel.Find(selector)
	if found.Length() == 0 {
		return nil, false
	}
	return &Selection{sel: found.First()}, true
}

func (s *Selection) FindAll(selector string) []locator.Node {
	found := s.sel.Find(selector)
	res := make([]locator.Node, 0, found.Length())
	found.Each(func(_ int, each *goquery.Selection) {
		res = append(res, &Selection{sel: each})
	})
	return res
}

func (s *Selection) Text() string {
	return collapseSpaces(s.sel.Text())
}

func (s *Selection) Attr(name string) (string, bool) {
	value, ok := s.sel.Attr(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// collapseSpaces trims and joins whitespace runs, so multi-line markup reads as one line.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
