/*
Package csvcodec reads and writes the ledger's CSV import/export format.

FORMAT:
  UTF-8, comma-delimited, one header row, no quoting. The header must name
  all nine columns, in any order:

    date, product_name, quantity_sold, unit_cost, unit_price,
    total_revenue, total_cost, profit, stock_remaining

  Header names are matched case-insensitively, with spaces and hyphens
  read as underscores ("Product Name" matches product_name).

IMPORT RULES:
  - quantity_sold > 0   -> Sale; stock_remaining is read and discarded
  - quantity_sold == 0  -> Adjustment to the row's stock_remaining
  - total_* and profit must be numeric but are re-derived from quantity and prices
  - every numeric cell except profit must be non-negative
  - every row gets a fresh record id
  - blank lines are skipped

LIMITATION:
  Values containing commas are not supported on either side. Nothing is
  quoted or escaped.

SEE ALSO:
  - inventory/errors.go: ParseError, EmptyInputError
*/
package csvcodec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/stock-ledger/inventory"
)

const (
	ColDate           = "date"
	ColProduct        = "product_name"
	ColQuantitySold   = "quantity_sold"
	ColUnitCost       = "unit_cost"
	ColUnitPrice      = "unit_price"
	ColTotalRevenue   = "total_revenue"
	ColTotalCost      = "total_cost"
	ColProfit         = "profit"
	ColStockRemaining = "stock_remaining"
)

// Columns lists the header in field-declaration order.
var Columns = []string{
	ColDate,
	ColProduct,
	ColQuantitySold,
	ColUnitCost,
	ColUnitPrice,
	ColTotalRevenue,
	ColTotalCost,
	ColProfit,
	ColStockRemaining,
}

var numericColumns = []string{
	ColQuantitySold,
	ColUnitCost,
	ColUnitPrice,
	ColTotalRevenue,
	ColTotalCost,
	ColProfit,
	ColStockRemaining,
}

const bom = "\ufeff"

// Parse reads raw records from r. StockRemaining of the returned records is
// zero; run them through the ledger to compute it.
func Parse(r io.Reader) ([]inventory.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		header  map[string]int
		width   int
		records []inventory.Record
		line    int
	)

	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, bom)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		cells := strings.Split(text, ",")
		if header == nil {
			h, err := parseHeader(cells)
			if err != nil {
				return nil, err
			}
			header, width = h, len(cells)
			continue
		}

		if len(cells) != width {
			return nil, &inventory.ParseError{
				Row:    line,
				Reason: fmt.Sprintf("expected %d values, got %d", width, len(cells)),
			}
		}
		rec, err := parseRow(line, cells, header)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	if len(records) == 0 {
		return nil, &inventory.EmptyInputError{HeaderOnly: header != nil}
	}
	return records, nil
}

func parseHeader(cells []string) (map[string]int, error) {
	index := make(map[string]int, len(cells))
	for i, cell := range cells {
		name := normalizeColumn(cell)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &inventory.ParseError{Missing: missing}
	}
	return index, nil
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "_")
	return strings.Join(strings.Fields(name), "_")
}

func parseRow(line int, cells []string, header map[string]int) (inventory.Record, error) {
	cell := func(col string) string { return strings.TrimSpace(cells[header[col]]) }

	date, err := inventory.ParseDate(cell(ColDate))
	if err != nil {
		return inventory.Record{}, &inventory.ParseError{Row: line, Column: ColDate, Value: cell(ColDate), Reason: "invalid date"}
	}

	product := inventory.NormalizeProduct(cell(ColProduct))
	if product == "" {
		return inventory.Record{}, &inventory.ParseError{Row: line, Column: ColProduct, Reason: "product name is empty"}
	}

	nums := make(map[string]decimal.Decimal, len(numericColumns))
	for _, col := range numericColumns {
		raw := cell(col)
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return inventory.Record{}, &inventory.ParseError{Row: line, Column: col, Value: raw, Reason: "not a number"}
		}
		if d.IsNegative() && col != ColProfit {
			return inventory.Record{}, &inventory.ParseError{Row: line, Column: col, Value: raw, Reason: "must not be negative"}
		}
		nums[col] = d
	}

	if nums[ColQuantitySold].IsZero() {
		return inventory.NewAdjustment(date, product, nums[ColStockRemaining]), nil
	}
	return inventory.NewSale(date, product, nums[ColQuantitySold], nums[ColUnitCost], nums[ColUnitPrice]), nil
}

// Export writes records as CSV: header first, then one line per record in
// the given order. The id column is not written.
func Export(w io.Writer, records []inventory.Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, ",") + "\n"); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Date.String(),
			rec.Product,
			rec.QuantitySold().String(),
			rec.UnitCost().String(),
			rec.UnitPrice().String(),
			rec.Revenue().String(),
			rec.Cost().String(),
			rec.Profit().String(),
			rec.StockRemaining.String(),
		}
		if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
