/*
aggregate.go - Dashboard summaries derived from the validated ledger

PURPOSE:
  Read-only views over a replayed ledger: totals, best seller, current
  stock per product, stock-status buckets and per-product chart series.
  Nothing here is stored; callers recompute after every ledger change.

ORDERING:
  Every per-product list follows the order in which products first
  appear in the ledger. The best seller is the first product in that order
  with the highest sold quantity.

BUCKETS:
  out   stock <= 0
  low   0 < stock < threshold
  safe  stock >= threshold
*/
package inventory

import "github.com/shopspring/decimal"

// DefaultLowStockThreshold is the stock level below which a product is "low".
var DefaultLowStockThreshold = decimal.NewFromInt(10)

type StockStatus string

const (
	StockOut  StockStatus = "out"
	StockLow  StockStatus = "low"
	StockSafe StockStatus = "safe"
)

type AggregateOptions struct {
	LowStockThreshold decimal.Decimal
}

func (o AggregateOptions) threshold() decimal.Decimal {
	if o.LowStockThreshold.IsZero() {
		return DefaultLowStockThreshold
	}
	return o.LowStockThreshold
}

type ProductQuantity struct {
	Product  string
	Quantity decimal.Decimal
}

type ProductStock struct {
	Product string
	Stock   decimal.Decimal
	Status  StockStatus
}

type ProductSeries struct {
	Product string
	Revenue decimal.Decimal
	Profit  decimal.Decimal
}

type StockBuckets struct {
	Out  []ProductStock
	Low  []ProductStock
	Safe []ProductStock
}

type Aggregates struct {
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	BestSeller   *ProductQuantity // nil when the ledger has no sales
	Stocks       []ProductStock
	Buckets      StockBuckets
	Series       []ProductSeries
}

// ComputeAggregates derives all dashboard views from a validated ledger.
func ComputeAggregates(records []Record, opts AggregateOptions) Aggregates {
	threshold := opts.threshold()

	var (
		order   []string
		sold    = make(map[string]decimal.Decimal)
		revenue = make(map[string]decimal.Decimal)
		profit  = make(map[string]decimal.Decimal)
		current = make(map[string]decimal.Decimal)
		agg     = Aggregates{TotalRevenue: decimal.Zero, TotalProfit: decimal.Zero}
	)

	for _, rec := range records {
		if _, seen := revenue[rec.Product]; !seen {
			order = append(order, rec.Product)
			revenue[rec.Product] = decimal.Zero
			profit[rec.Product] = decimal.Zero
		}
		agg.TotalRevenue = agg.TotalRevenue.Add(rec.Revenue())
		agg.TotalProfit = agg.TotalProfit.Add(rec.Profit())
		revenue[rec.Product] = revenue[rec.Product].Add(rec.Revenue())
		profit[rec.Product] = profit[rec.Product].Add(rec.Profit())
		if rec.IsSale() {
			sold[rec.Product] = sold[rec.Product].Add(rec.QuantitySold())
		}
	}

	// Latest record per product wins; same-date ties go to the later one.
	for _, rec := range SortChronologically(records) {
		current[rec.Product] = rec.StockRemaining
	}

	for _, product := range order {
		if qty, ok := sold[product]; ok {
			if agg.BestSeller == nil || qty.GreaterThan(agg.BestSeller.Quantity) {
				agg.BestSeller = &ProductQuantity{Product: product, Quantity: qty}
			}
		}

		ps := ProductStock{
			Product: product,
			Stock:   current[product],
			Status:  ClassifyStock(current[product], threshold),
		}
		agg.Stocks = append(agg.Stocks, ps)
		switch ps.Status {
		case StockOut:
			agg.Buckets.Out = append(agg.Buckets.Out, ps)
		case StockLow:
			agg.Buckets.Low = append(agg.Buckets.Low, ps)
		default:
			agg.Buckets.Safe = append(agg.Buckets.Safe, ps)
		}

		agg.Series = append(agg.Series, ProductSeries{
			Product: product,
			Revenue: revenue[product],
			Profit:  profit[product],
		})
	}

	return agg
}

// ClassifyStock buckets a stock level against threshold.
func ClassifyStock(stock, threshold decimal.Decimal) StockStatus {
	switch {
	case !stock.IsPositive():
		return StockOut
	case stock.LessThan(threshold):
		return StockLow
	default:
		return StockSafe
	}
}
