package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"order-exporter/internal/orderexporter/data"
)

const (
	filenamePrefix = "amazon_orders_"
	payee          = "Amazon"
	jsonIndent     = "  "
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	JSONFormat Format = "json"
	CSVFormat  Format = "csv"
	XLSXFormat Format = "xlsx"
)

var csvHeader = []string{"OrderId", "Date", "Payee", "Notes", "Total", "Currency", "ItemCount"}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSONFormat, CSVFormat, XLSXFormat:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case JSONFormat:
		return "application/json"
	case CSVFormat:
		return "text/csv"
	case XLSXFormat:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Filename names an artifact after the day it was produced.
func Filename(f Format, now time.Time) string {
	return filenamePrefix + now.Format(data.DateLayout) + "." + string(f)
}

// JSON renders the state as indented JSON. Decoding the result yields the same state.
func JSON(state data.CaptureState) ([]byte, error) {
	res, err := json.MarshalIndent(state, "", jsonIndent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return res, nil
}

// CSV renders one row per order with every field wrapped in double quotes.
// Quotes inside values are not escaped.
func CSV(state data.CaptureState) string {
	if state.Orders.Len() == 0 {
		return ""
	}
	lines := make([]string, 0, state.Orders.Len()+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, order := range state.Orders.Orders() {
		row := csvRow(order)
		for i, value := range row {
			row[i] = `"` + value + `"`
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

func csvRow(order data.Order) []string {
	return []string{
		order.OrderID,
		order.OrderDate,
		payee,
		Notes(order),
		order.TotalPrice.String(),
		string(order.Currency),
		strconv.Itoa(len(order.Items)),
	}
}

// Notes lists the items of an order as "<qty>x <name> - <status>".
func Notes(order data.Order) string {
	notes := make([]string, len(order.Items))
	for i, item := range order.Items {
		status := item.Status
		if status == "" {
			status = data.UnknownStatus
		}
		notes[i] = fmt.Sprintf("%dx %s - %s", item.Qty, item.Name, status)
	}
	return strings.Join(notes, ", ")
}
