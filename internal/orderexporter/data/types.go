package data

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// totalPrice is persisted and exported as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

type Currency string

const (
	USD = Currency("USD")
	EUR = Currency("EUR")
)

const (
	DefaultItemStatus = "Old"
	UnknownStatus     = "Unknown"

	DateLayout       = "2006-01-02"
	StatusDateLayout = "01-02"
	TimestampLayout  = "2006-01-02 15:04:05"
)

type Item struct {
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	Status     string `json:"status"`
	StatusDate string `json:"statusDate"`
}

type Order struct {
	OrderID    string          `json:"orderId"`
	ItemCount  int             `json:"itemCount"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Currency   Currency        `json:"currency"`
	OrderDate  string          `json:"orderDate"`
	Items      []Item          `json:"items"`
}

// NewOrder builds an order with ItemCount derived from items.
func NewOrder(orderID, orderDate string, total decimal.Decimal, currency Currency, items []Item) Order {
	if items == nil {
		items = make([]Item, 0)
	}
	return Order{
		OrderID:    orderID,
		ItemCount:  len(items),
		TotalPrice: total,
		Currency:   currency,
		OrderDate:  orderDate,
		Items:      items,
	}
}

// CaptureState is the persisted aggregate of every captured order in one storage scope.
type CaptureState struct {
	LastUpdate *string   `json:"lastUpdate"`
	Total      int       `json:"total"`
	Captures   int       `json:"captures"`
	LastOrder  *string   `json:"lastOrder"`
	Orders     OrderBook `json:"orders"`
}

func NewCaptureState() CaptureState {
	return CaptureState{
		Orders: NewOrderBook(),
	}
}

// Window returns the subset of the state whose order dates fall inside [from, to].
// A zero bound leaves that side open.
func (s CaptureState) Window(from, to time.Time) CaptureState {
	if from.IsZero() && to.IsZero() {
		return s
	}
	var fromDate, toDate string
	if !from.IsZero() {
		fromDate = from.Format(DateLayout)
	}
	if !to.IsZero() {
		toDate = to.Format(DateLayout)
	}
	selected := make([]Order, 0, s.Orders.Len())
	for _, order := range s.Orders.Orders() {
		if fromDate != "" && order.OrderDate < fromDate {
			continue
		}
		if toDate != "" && order.OrderDate > toDate {
			continue
		}
		selected = append(selected, order)
	}
	res := s
	res.Orders = NewOrderBook(selected...)
	res.Total = res.Orders.Len()
	return res
}
