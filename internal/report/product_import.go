package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ProductRow is one parsed line of a product import sheet.
type ProductRow struct {
	Line          int
	SKU           string
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal
	StockQuantity int
	Active        bool
	Images        []string
}

// RowError explains why a sheet line was skipped.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

var requiredColumns = []string{"sku", "name", "price"}

// ReadProductImport parses the first sheet of an XLSX workbook. The first
// row holds column names (case-insensitive): sku, name, price are required;
// description, category, stock, active and images (comma or newline
// separated URLs) are optional. Bad lines are reported, not fatal.
func ReadProductImport(r io.Reader) ([]ProductRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var products []ProductRow
	var skipped []RowError
	seen := make(map[string]int)

	for i, row := range rows[1:] {
		line := i + 2
		get := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if isBlank(row) {
			continue
		}

		product := ProductRow{
			Line:        line,
			SKU:         get("sku"),
			Name:        get("name"),
			Description: get("description"),
			Category:    get("category"),
			Active:      true,
			Images:      splitImages(get("images")),
		}
		if product.SKU == "" || product.Name == "" {
			skipped = append(skipped, RowError{Line: line, Reason: "sku and name are required"})
			continue
		}
		if first, dup := seen[product.SKU]; dup {
			skipped = append(skipped, RowError{Line: line, Reason: fmt.Sprintf("sku %s already on line %d", product.SKU, first)})
			continue
		}

		price, err := decimal.NewFromString(get("price"))
		if err != nil || price.IsNegative() {
			skipped = append(skipped, RowError{Line: line, Reason: "price must be a non-negative number"})
			continue
		}
		product.Price = price.Round(2)

		if raw := get("stock"); raw != "" {
			stock, err := strconv.Atoi(raw)
			if err != nil || stock < 0 {
				skipped = append(skipped, RowError{Line: line, Reason: "stock must be a non-negative integer"})
				continue
			}
			product.StockQuantity = stock
		}

		if raw := get("active"); raw != "" {
			active, err := strconv.ParseBool(strings.ToLower(raw))
			if err != nil {
				skipped = append(skipped, RowError{Line: line, Reason: "active must be true or false"})
				continue
			}
			product.Active = active
		}

		seen[product.SKU] = line
		products = append(products, product)
	}

	return products, skipped, nil
}

func splitImages(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	images := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			images = append(images, f)
		}
	}
	return images
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
