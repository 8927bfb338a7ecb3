// Package report reads and writes the spreadsheets exchanged with
// back-office staff: the order export and the product import sheet.
package report

import (
	"fmt"
	"io"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	OrderSheet      = "Orders"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var orderHeaders = []string{
	"Order Number", "Created At", "Customer Email", "Status", "Payment Status",
	"SKU", "Product", "Unit Price", "Quantity", "Line Total", "Order Total",
}

// WriteOrderExport writes one row per order item, newest orders first as
// given, to w as an XLSX workbook.
func WriteOrderExport(w io.Writer, rows []model.OrderExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), OrderSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(orderHeaders))
	for i, h := range orderHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(OrderSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.OrderNumber,
			row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			row.UserEmail,
			string(row.Status),
			string(row.PaymentStatus),
			row.ProductSKU,
			row.ProductName,
			row.UnitPrice.StringFixed(2),
			row.Quantity,
			row.TotalPrice.StringFixed(2),
			row.OrderTotal.StringFixed(2),
		}
		if err := f.SetSheetRow(OrderSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(OrderSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
