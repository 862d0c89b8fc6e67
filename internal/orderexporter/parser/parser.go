package parser

import (
	"errors"
	"time"

	"order-exporter/internal/orderexporter/data"
	"order-exporter/internal/orderexporter/locator"
	"order-exporter/internal/orderexporter/normalize"
	"order-exporter/pkg/orderid"
)

const titleAttr = "title"

type Clock func() time.Time

// Parser turns one order fragment into a data.Order. Any failure rejects the whole order.
type Parser struct {
	layout locator.Layout
	now    Clock
}

func New(layout locator.Layout, now Clock) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{
		layout: layout,
		now:    now,
	}
}

// ParseOrderID resolves only the identifier, so known orders can be skipped without a full parse.
func (p *Parser) ParseOrderID(fragment locator.Node) (string, error) {
	header, err := locator.Resolve(fragment, p.layout.Header)
	if err != nil {
		return "", err
	}
	text, err := locator.ResolveText(header, p.layout.OrderID)
	if err != nil {
		return "", err
	}
	id := orderid.Normalize(text)
	if id == "" {
		return "", &locator.FieldNotFoundError{Field: p.layout.OrderID.Field}
	}
	return id, nil
}

func (p *Parser) Parse(fragment locator.Node) (data.Order, error) {
	orderID, err := p.ParseOrderID(fragment)
	if err != nil {
		return data.Order{}, err
	}
	header, err := locator.Resolve(fragment, p.layout.Header)
	if err != nil {
		return data.Order{}, err
	}

	totalText, err := locator.ResolveText(header, p.layout.Total)
	if err != nil {
		return data.Order{}, err
	}
	total, currency, err := normalize.Amount(totalText)
	if err != nil {
		return data.Order{}, err
	}

	dateText, err := locator.ResolveText(header, p.layout.OrderDate)
	if err != nil {
		return data.Order{}, err
	}
	orderDate, err := normalize.OrderDate(dateText)
	if err != nil {
		return data.Order{}, err
	}

	now := p.now()
	items := make([]data.Item, 0)
	for _, shipment := range locator.ResolveAll(fragment, p.layout.Shipments) {
		shipmentItems, err := p.parseShipment(shipment, now, orderDate)
		if err != nil {
			return data.Order{}, err
		}
		items = append(items, shipmentItems...)
	}

	return data.NewOrder(orderID, orderDate, total, currency, items), nil
}

func (p *Parser) parseShipment(shipment locator.Node, now time.Time, orderDate string) ([]data.Item, error) {
	// A blank status line is allowed; StatusLabel turns it into the default label.
	statusNode, err := locator.Resolve(shipment, p.layout.Status)
	if err != nil {
		return nil, err
	}
	statusText := statusNode.Text()
	status := normalize.StatusLabel(statusText)
	statusDate := normalize.StatusDate(statusText, now, orderDate)

	boxes := locator.ResolveAll(shipment, p.layout.Items)
	items := make([]data.Item, 0, len(boxes))
	for _, box := range boxes {
		name, qty, err := p.parseItem(box)
		if err != nil {
			return nil, err
		}
		items = append(items, data.Item{
			Name:       name,
			Qty:        qty,
			Status:     status,
			StatusDate: statusDate,
		})
	}
	return items, nil
}

func (p *Parser) parseItem(box locator.Node) (string, int, error) {
	title, err := locator.Resolve(box, p.layout.ItemTitle)
	if err != nil {
		return "", 0, err
	}
	name := title.Text()
	if name == "" {
		name, _ = title.Attr(titleAttr)
	}
	if name == "" {
		return "", 0, &locator.FieldNotFoundError{Field: p.layout.ItemTitle.Field}
	}

	qty := 1
	if qtyNode, err := locator.Resolve(box, p.layout.ItemQty); err == nil {
		qty, err = normalize.Quantity(qtyNode.Text())
		if err != nil {
			return "", 0, err
		}
	}
	return name, qty, nil
}

const (
	KindFieldNotFound     = "field_not_found"
	KindDateParse         = "date_parse"
	KindMalformedAmount   = "malformed_amount"
	KindMalformedQuantity = "malformed_quantity"
	KindUnknown           = "unknown"
)

// AsCaptureError converts a parse failure into the per-order outcome reported to the user.
func AsCaptureError(orderID string, err error) *data.CaptureError {
	var captureErr *data.CaptureError
	if errors.As(err, &captureErr) {
		return captureErr
	}
	return data.NewCaptureError(orderID, err)
}

// FailureKind classifies a parse failure for metrics labels.
func FailureKind(err error) string {
	var (
		notFound  *locator.FieldNotFoundError
		badDate   *normalize.DateParseError
		badAmount *normalize.MalformedAmountError
		badQty    *normalize.MalformedQuantityError
	)
	switch {
	case errors.As(err, &notFound):
		return KindFieldNotFound
	case errors.As(err, &badDate):
		return KindDateParse
	case errors.As(err, &badAmount):
		return KindMalformedAmount
	case errors.As(err, &badQty):
		return KindMalformedQuantity
	}
	return KindUnknown
}
