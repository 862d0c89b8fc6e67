// Package domtest renders order-history pages for tests.
package domtest

import (
	"fmt"
	"strings"
)

type Item struct {
	Title string
	// TitleAttr is rendered as the title attribute of the title link.
	TitleAttr string
	Qty       string
}

type Shipment struct {
	Status string
	// NoStatus drops the status element.
	NoStatus bool
	Items    []Item
}

type Order struct {
	ID    string
	Total string
	Date  string
	// Legacy renders the older shipment/order-info markup.
	Legacy    bool
	Shipments []Shipment
	// NoID drops the order id element.
	NoID bool
}

// Page renders a full page with the given order cards and pagination.
// selectedPage < 1 omits the pagination block.
func Page(selectedPage int, pages int, orders ...Order) string {
	b := &strings.Builder{}
	b.WriteString("<html><body><div id=\"orders\">\n")
	for _, o := range orders {
		b.WriteString(o.HTML())
	}
	if selectedPage >= 1 {
		b.WriteString(`<ul class="a-pagination">`)
		for i := 1; i <= pages; i++ {
			class := "a-normal"
			if i == selectedPage {
				class = "a-selected"
			}
			fmt.Fprintf(b, `<li class="%s"><a href="/your-orders/orders?startIndex=%d">%d</a></li>`, class, (i-1)*10, i)
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

func (o Order) HTML() string {
	if o.Legacy {
		return o.legacyHTML()
	}
	b := &strings.Builder{}
	b.WriteString(`<div class="order-card"><div class="a-box-group">`)
	b.WriteString(`<div class="order-header"><div class="a-row">`)
	fmt.Fprintf(b, `<div class="a-column a-span3"><span class="a-size-base">%s</span></div>`, o.Date)
	fmt.Fprintf(b, `<div class="a-column a-span2"><span class="a-size-base">%s</span></div>`, o.Total)
	if !o.NoID {
		fmt.Fprintf(b, `<div class="yohtmlc-order-id"><span>Order #</span> <span dir="ltr">%s</span></div>`, o.ID)
	}
	b.WriteString(`</div></div>`)
	for _, s := range o.Shipments {
		b.WriteString(`<div class="delivery-box">`)
		if !s.NoStatus {
			fmt.Fprintf(b, `<span class="delivery-box__primary-text">%s</span>`, s.Status)
		}
		for _, item := range s.Items {
			b.WriteString(`<div class="item-box">`)
			if item.Qty != "" {
				fmt.Fprintf(b, `<div class="product-image"><span class="product-image__qty">%s</span></div>`, item.Qty)
			}
			fmt.Fprintf(b, `<div class="yohtmlc-product-title" title="%s">%s</div>`, item.TitleAttr, item.Title)
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString("</div></div>\n")
	return b.String()
}

func (o Order) legacyHTML() string {
	b := &strings.Builder{}
	b.WriteString(`<div class="order-card"><div class="a-box-group">`)
	b.WriteString(`<div class="a-box order-info"><div class="a-row">`)
	fmt.Fprintf(b, `<div class="a-column a-span3"><span class="label">Order placed</span><span class="value">%s</span></div>`, o.Date)
	fmt.Fprintf(b, `<div class="yohtmlc-order-total"><span class="value">%s</span></div>`, o.Total)
	if !o.NoID {
		fmt.Fprintf(b, `<div class="yohtmlc-order-id"><bdi dir="ltr">%s</bdi></div>`, o.ID)
	}
	b.WriteString(`</div></div>`)
	for _, s := range o.Shipments {
		b.WriteString(`<div class="a-box shipment">`)
		if !s.NoStatus {
			fmt.Fprintf(b, `<span class="a-size-medium a-color-base a-text-bold">%s</span>`, s.Status)
		}
		for _, item := range s.Items {
			b.WriteString(`<div class="yohtmlc-item">`)
			fmt.Fprintf(b, `<a class="a-link-normal" title="%s">%s</a>`, item.TitleAttr, item.Title)
			if item.Qty != "" {
				fmt.Fprintf(b, `<span class="quantity">%s</span>`, item.Qty)
			}
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString("</div></div>\n")
	return b.String()
}

// SampleOrders returns three well-formed orders of mixed markup versions.
func SampleOrders() []Order {
	return []Order{
		{
			ID:    "111-1111111-1111111",
			Total: "€33.98",
			Date:  "3 June 2024",
			Shipments: []Shipment{
				{Status: "Delivered 5 June", Items: []Item{
					{Title: "USB-C cable", Qty: "2"},
					{Title: "Phone case"},
				}},
			},
		},
		{
			ID:    "222-2222222-2222222",
			Total: "$1,234.56",
			Date:  "20 May 2024",
			Shipments: []Shipment{
				{Status: "Delivered yesterday", Items: []Item{{Title: "Desk"}}},
				{Status: "Arriving tomorrow", Items: []Item{{Title: "", TitleAttr: "Desk lamp"}}},
			},
		},
		{
			ID:     "333-3333333-3333333",
			Total:  "€12,00",
			Date:   "1 July 2024",
			Legacy: true,
			Shipments: []Shipment{
				{Status: "Delivered", Items: []Item{{Title: "Notebook", Qty: "3"}}},
			},
		},
	}
}
