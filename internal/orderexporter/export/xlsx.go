package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"order-exporter/internal/orderexporter/data"
)

const sheetName = "Orders"

// XLSX renders the same columns as CSV into a workbook, with numeric totals and item counts.
func XLSX(state data.CaptureState) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	row := 2
	for _, order := range state.Orders.Orders() {
		total, _ := order.TotalPrice.Float64()
		values := []any{
			order.OrderID,
			order.OrderDate,
			payee,
			Notes(order),
			total,
			string(order.Currency),
			len(order.Items),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx cell %s: %w", cell, err)
			}
		}
		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22) // order id
	_ = f.SetColWidth(sheetName, "B", "B", 12) // date
	_ = f.SetColWidth(sheetName, "D", "D", 60) // notes
	_ = f.SetColWidth(sheetName, "E", "E", 12) // total

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
