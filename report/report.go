// Package report renders ledger aggregates as markdown.
package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Rhymond/go-money"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
	"github.com/warp/stock-ledger/inventory"
)

// FormatMoney displays amount in currency (ISO 4217 code). Unknown
// currencies fall back to the plain decimal with two places.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}

	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// SummaryMarkdown renders the dashboard summaries as a markdown document.
func SummaryMarkdown(agg inventory.Aggregates, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Stock Summary")

	best := "none"
	if agg.BestSeller != nil {
		best = fmt.Sprintf("%s (%s sold)", agg.BestSeller.Product, agg.BestSeller.Quantity)
	}
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Revenue", FormatMoney(agg.TotalRevenue, currency)},
			{"Total Profit", FormatMoney(agg.TotalProfit, currency)},
			{"Best Seller", best},
		},
	})

	if len(agg.Stocks) == 0 {
		doc.PlainText("The ledger is empty.")
		return doc.String()
	}

	doc.H2("Stock Levels")
	stocks := md.TableSet{Header: []string{"Product", "Stock", "Status"}}
	for _, ps := range agg.Stocks {
		stocks.Rows = append(stocks.Rows, []string{ps.Product, ps.Stock.String(), statusLabel(ps.Status)})
	}
	doc.Table(stocks)

	if alerts := Alerts(agg); len(alerts) > 0 {
		doc.H2("Needs Restocking")
		doc.BulletList(alerts...)
	}

	doc.H2("Revenue and Profit by Product")
	series := md.TableSet{Header: []string{"Product", "Revenue", "Profit"}}
	for _, s := range agg.Series {
		series.Rows = append(series.Rows, []string{s.Product, FormatMoney(s.Revenue, currency), FormatMoney(s.Profit, currency)})
	}
	doc.Table(series)

	return doc.String()
}

// InferredMarkdown renders the opening stocks an import would infer, sorted
// by product.
func InferredMarkdown(imported int, inferred inventory.OpeningStocks) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Opening Stock Inference")
	doc.PlainText(fmt.Sprintf("%d records parsed.", imported))

	if len(inferred) == 0 {
		doc.PlainText("Every product is already known; nothing to infer.")
		return doc.String()
	}

	products := make([]string, 0, len(inferred))
	for p := range inferred {
		products = append(products, p)
	}
	sort.Strings(products)

	table := md.TableSet{Header: []string{"Product", "Opening Stock"}}
	for _, p := range products {
		table.Rows = append(table.Rows, []string{p, inferred[p].String()})
	}
	doc.Table(table)
	return doc.String()
}

// Alerts lists the out-of-stock then low-stock products, one line each.
func Alerts(agg inventory.Aggregates) []string {
	var out []string
	for _, ps := range agg.Buckets.Out {
		out = append(out, fmt.Sprintf("%s: out of stock", ps.Product))
	}
	for _, ps := range agg.Buckets.Low {
		out = append(out, fmt.Sprintf("%s: %s left", ps.Product, ps.Stock))
	}
	return out
}

func statusLabel(s inventory.StockStatus) string {
	switch s {
	case inventory.StockOut:
		return "Out of stock"
	case inventory.StockLow:
		return "Low"
	default:
		return "OK"
	}
}
