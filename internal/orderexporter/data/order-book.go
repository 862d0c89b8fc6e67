package data

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderBook maps orderId to Order and remembers insertion order, which is the
// canonical (most recent first) order once the reconciler has built it.
// An OrderBook is never mutated after construction, so copies may share it.
type OrderBook struct {
	orders *orderedmap.OrderedMap[string, Order]
}

// NewOrderBook keeps orders in the given sequence. A later order with an
// already seen id replaces the earlier one in place.
func NewOrderBook(orders ...Order) OrderBook {
	m := orderedmap.New[string, Order](len(orders))
	for _, order := range orders {
		m.Set(order.OrderID, order)
	}
	return OrderBook{orders: m}
}

func (b OrderBook) Len() int {
	if b.orders == nil {
		return 0
	}
	return b.orders.Len()
}

func (b OrderBook) Get(orderID string) (Order, bool) {
	if b.orders == nil {
		return Order{}, false
	}
	return b.orders.Get(orderID)
}

func (b OrderBook) Has(orderID string) bool {
	_, ok := b.Get(orderID)
	return ok
}

func (b OrderBook) IDs() []string {
	res := make([]string, 0, b.Len())
	if b.orders == nil {
		return res
	}
	for pair := b.orders.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, pair.Key)
	}
	return res
}

func (b OrderBook) Orders() []Order {
	res := make([]Order, 0, b.Len())
	if b.orders == nil {
		return res
	}
	for pair := b.orders.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, pair.Value)
	}
	return res
}

func (b OrderBook) MarshalJSON() ([]byte, error) {
	if b.orders == nil || b.orders.Len() == 0 {
		return []byte("{}"), nil
	}
	res, err := b.orders.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal orders: %w", err)
	}
	return res, nil
}

func (b *OrderBook) UnmarshalJSON(raw []byte) error {
	m := orderedmap.New[string, Order]()
	if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if err := m.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("failed to unmarshal orders: %w", err)
		}
	}
	b.orders = m
	return nil
}
