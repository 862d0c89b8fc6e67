package data

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() CaptureState {
	lastUpdate := "2024-06-10 12:00:00"
	lastOrder := "111-0000001-0000001"
	return CaptureState{
		LastUpdate: &lastUpdate,
		Total:      2,
		Captures:   1,
		LastOrder:  &lastOrder,
		Orders: NewOrderBook(
			NewOrder("111-0000001-0000001", "2024-06-01", decimal.RequireFromString("33.98"), EUR, []Item{
				{Name: "USB cable", Qty: 2, Status: "Delivered", StatusDate: "06-03"},
			}),
			NewOrder("111-0000002-0000002", "2024-05-01", decimal.RequireFromString("1234.56"), USD, []Item{
				{Name: "Desk", Qty: 1, Status: "Old", StatusDate: "05-01"},
				{Name: "Lamp", Qty: 1, Status: "Delivered", StatusDate: "05-04"},
			}),
		),
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	state := sampleState()

	blob, err := EncodeState(state)
	require.NoError(t, err)

	decoded, err := DecodeState(blob)
	require.NoError(t, err)

	again, err := EncodeState(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(again))
	assert.Equal(t, string(blob), string(again))

	assert.Equal(t, state.Orders.IDs(), decoded.Orders.IDs())
	first, ok := decoded.Orders.Get("111-0000001-0000001")
	require.True(t, ok)
	assert.True(t, first.TotalPrice.Equal(decimal.RequireFromString("33.98")))
	assert.Equal(t, EUR, first.Currency)
	assert.Equal(t, *state.LastUpdate, *decoded.LastUpdate)
}

func TestOrderBookPreservesJSONKeyOrder(t *testing.T) {
	blob := []byte(`{"orders":{
		"b":{"orderId":"b","itemCount":0,"totalPrice":1,"currency":"USD","orderDate":"2024-01-02","items":[]},
		"a":{"orderId":"a","itemCount":0,"totalPrice":2,"currency":"USD","orderDate":"2024-01-01","items":[]}
	},"total":2,"captures":1,"lastUpdate":null,"lastOrder":null}`)

	state, err := DecodeState(blob)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, state.Orders.IDs())
}

func TestTotalPriceIsJSONNumber(t *testing.T) {
	order := NewOrder("x", "2024-01-01", decimal.RequireFromString("33.98"), EUR, nil)
	blob, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"totalPrice":33.98`)
	assert.Contains(t, string(blob), `"items":[]`)
}

func TestDecodeStateRejectsInvalidBlobs(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "not json", blob: `{`},
		{name: "missing orders", blob: `{"total":0}`},
		{name: "negative total", blob: `{"orders":{"a":{"orderId":"a","totalPrice":-1,"currency":"USD","orderDate":"2024-01-01","items":[]}}}`},
		{name: "unknown currency", blob: `{"orders":{"a":{"orderId":"a","totalPrice":1,"currency":"GBP","orderDate":"2024-01-01","items":[]}}}`},
		{name: "bad date", blob: `{"orders":{"a":{"orderId":"a","totalPrice":1,"currency":"USD","orderDate":"1 June 2024","items":[]}}}`},
		{name: "zero qty", blob: `{"orders":{"a":{"orderId":"a","totalPrice":1,"currency":"USD","orderDate":"2024-01-01","items":[{"name":"x","qty":0}]}}}`},
		{name: "key mismatch", blob: `{"orders":{"a":{"orderId":"b","totalPrice":1,"currency":"USD","orderDate":"2024-01-01","items":[]}}}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeState([]byte(test.blob))
			assert.ErrorIs(t, err, ErrCorruptState)
		})
	}
}

func TestWindow(t *testing.T) {
	state := sampleState()

	from := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	sub := state.Window(from, time.Time{})
	assert.Equal(t, []string{"111-0000001-0000001"}, sub.Orders.IDs())
	assert.Equal(t, 1, sub.Total)
	assert.Equal(t, state.Captures, sub.Captures)

	to := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	sub = state.Window(time.Time{}, to)
	assert.Equal(t, []string{"111-0000002-0000002"}, sub.Orders.IDs())

	assert.Equal(t, state.Orders.IDs(), state.Window(time.Time{}, time.Time{}).Orders.IDs())
}

func TestZeroOrderBook(t *testing.T) {
	var book OrderBook
	assert.Equal(t, 0, book.Len())
	assert.False(t, book.Has("x"))
	assert.Empty(t, book.IDs())
	blob, err := json.Marshal(book)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(blob))
}
