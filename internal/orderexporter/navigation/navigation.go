package navigation

import (
	"net/url"
	"strconv"

	"order-exporter/internal/orderexporter/locator"
)

const (
	startIndexParam = "startIndex"
	pageSize        = 10
	hrefAttr        = "href"
)

// NextPageURL prefers the pagination link after the selected page and otherwise
// advances the startIndex query parameter of current by one page.
func NextPageURL(page locator.Node, current *url.URL, layout locator.Layout) string {
	if link, err := locator.Resolve(page, layout.Pagination); err == nil {
		if href, ok := link.Attr(hrefAttr); ok && href != "" {
			if next, err := url.Parse(href); err == nil {
				if current != nil {
					return current.ResolveReference(next).String()
				}
				return next.String()
			}
		}
	}
	if current == nil {
		return ""
	}
	return incrementStartIndex(current).String()
}

func incrementStartIndex(current *url.URL) *url.URL {
	next := *current
	query := next.Query()
	start, err := strconv.Atoi(query.Get(startIndexParam))
	if err != nil {
		start = 0
	}
	query.Set(startIndexParam, strconv.Itoa(start+pageSize))
	next.RawQuery = query.Encode()
	return &next
}
