package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"order-exporter/internal/orderexporter/data"
)

func oneOrderState() data.CaptureState {
	lastUpdate := "2024-06-10 12:00:00"
	lastOrder := "111-1111111-1111111"
	return data.CaptureState{
		LastUpdate: &lastUpdate,
		Total:      1,
		Captures:   1,
		LastOrder:  &lastOrder,
		Orders: data.NewOrderBook(
			data.NewOrder("111-1111111-1111111", "2024-06-03", decimal.RequireFromString("33.98"), data.EUR, []data.Item{
				{Name: "USB-C cable", Qty: 2, Status: "Delivered", StatusDate: "06-05"},
				{Name: "Phone case", Qty: 1, Status: "", StatusDate: "06-05"},
			}),
		),
	}
}

func TestCSVShape(t *testing.T) {
	csv := CSV(oneOrderState())

	lines := strings.Split(csv, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "OrderId,Date,Payee,Notes,Total,Currency,ItemCount", lines[0])
	assert.Equal(t,
		`"111-1111111-1111111","2024-06-03","Amazon","2x USB-C cable - Delivered, 1x Phone case - Unknown","33.98","EUR","2"`,
		lines[1],
	)
}

func TestCSVEmptyState(t *testing.T) {
	assert.Equal(t, "", CSV(data.NewCaptureState()))
}

func TestCSVKeepsCanonicalOrder(t *testing.T) {
	state := data.NewCaptureState()
	state.Orders = data.NewOrderBook(
		data.NewOrder("new", "2024-02-01", decimal.NewFromInt(1), data.USD, nil),
		data.NewOrder("old", "2024-01-01", decimal.NewFromInt(2), data.USD, nil),
	)
	lines := strings.Split(CSV(state), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `"new"`))
	assert.True(t, strings.HasPrefix(lines[2], `"old"`))
	assert.True(t, strings.HasSuffix(lines[2], `,"0"`))
}

func TestJSONRoundTrip(t *testing.T) {
	state := oneOrderState()

	blob, err := JSON(state)
	require.NoError(t, err)
	assert.Contains(t, string(blob), "\n  \"lastUpdate\"")

	decoded, err := data.DecodeState(blob)
	require.NoError(t, err)

	again, err := JSON(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(blob), string(again))

	var generic map[string]any
	require.NoError(t, json.Unmarshal(blob, &generic))
	assert.Equal(t, 33.98, generic["orders"].(map[string]any)["111-1111111-1111111"].(map[string]any)["totalPrice"])
}

func TestXLSX(t *testing.T) {
	blob, err := XLSX(oneOrderState())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(blob))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "111-1111111-1111111", rows[1][0])
	assert.Equal(t, "33.98", rows[1][4])
	assert.Equal(t, "2", rows[1][6])
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, time.June, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "amazon_orders_2024-06-10.json", Filename(JSONFormat, now))
	assert.Equal(t, "amazon_orders_2024-06-10.csv", Filename(CSVFormat, now))
	assert.Equal(t, "amazon_orders_2024-06-10.xlsx", Filename(XLSXFormat, now))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, CSVFormat, f)
	assert.Equal(t, "text/csv", f.ContentType())

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
