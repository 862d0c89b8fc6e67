package locator

const (
	VersionDeliveryBox = "delivery-box"
	VersionShipment    = "shipment"
)

// Layout holds every chain the parser and navigation helper query.
type Layout struct {
	OrderCards Chain
	Header     Chain
	OrderID    Chain
	Total      Chain
	OrderDate  Chain
	Shipments  Chain
	Status     Chain
	Items      Chain
	ItemTitle  Chain
	ItemQty    Chain
	Pagination Chain
}

// DefaultLayout returns the order-history markup versions seen so far, newest first.
func DefaultLayout() Layout {
	return Layout{
		OrderCards: NewChain("order cards",
			Locator{Version: VersionDeliveryBox, Selector: ".order-card"},
		),
		Header: NewChain("order header",
			Locator{Version: VersionDeliveryBox, Selector: ".order-header"},
			Locator{Version: VersionShipment, Selector: ".a-box.order-info"},
		),
		OrderID: NewChain("order id",
			Locator{Version: VersionDeliveryBox, Selector: `.yohtmlc-order-id span[dir="ltr"]`},
			Locator{Version: VersionShipment, Selector: `.yohtmlc-order-id bdi[dir="ltr"]`},
		),
		Total: NewChain("total price",
			Locator{Version: VersionDeliveryBox, Selector: ".a-column.a-span2 .a-size-base"},
			Locator{Version: VersionShipment, Selector: ".yohtmlc-order-total .value"},
		),
		OrderDate: NewChain("order date",
			Locator{Version: VersionDeliveryBox, Selector: ".a-column.a-span3 .a-size-base"},
			Locator{Version: VersionShipment, Selector: ".a-column.a-span3 .value"},
		),
		Shipments: NewChain("shipments",
			Locator{Version: VersionDeliveryBox, Selector: ".delivery-box"},
			Locator{Version: VersionShipment, Selector: ".shipment"},
		),
		Status: NewChain("shipment status",
			Locator{Version: VersionDeliveryBox, Selector: ".delivery-box__primary-text"},
			Locator{Version: VersionShipment, Selector: ".a-size-medium.a-color-base.a-text-bold"},
		),
		Items: NewChain("items",
			Locator{Version: VersionDeliveryBox, Selector: ".item-box"},
			Locator{Version: VersionShipment, Selector: ".yohtmlc-item"},
		),
		ItemTitle: NewChain("item title",
			Locator{Version: VersionDeliveryBox, Selector: ".yohtmlc-product-title"},
			Locator{Version: VersionShipment, Selector: ".a-link-normal"},
		),
		ItemQty: NewChain("item quantity",
			Locator{Version: VersionDeliveryBox, Selector: ".product-image .product-image__qty"},
			Locator{Version: VersionShipment, Selector: ".quantity"},
		),
		Pagination: NewChain("next page link",
			Locator{Version: VersionDeliveryBox, Selector: ".a-pagination .a-selected + li a"},
			Locator{Version: VersionShipment, Selector: "ul.a-pagination .a-selected + li a"},
		),
	}
}
