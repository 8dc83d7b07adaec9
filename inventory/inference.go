package inventory

import "github.com/shopspring/decimal"

// =============================================================================
// STOCK INFERENCE - Minimum feasible opening stock for new products
// =============================================================================

// InferOpeningStocks computes, for every product in records that has no entry
// in known, the smallest opening stock that keeps all of its sales fulfillable.
//
// Only sales are walked: the running level starts at zero, each sale
// subtracts its quantity, and the deepest point reached (negated) is the
// inferred opening stock. Adjustments are skipped. Products already in known
// are never returned, so merging the result with known cannot overwrite
// anything.
func InferOpeningStocks(records []Record, known OpeningStocks) OpeningStocks {
	inferred := make(OpeningStocks)

	var order []string
	byProduct := make(map[string][]Record)
	for _, rec := range records {
		if known.Has(rec.Product) {
			continue
		}
		if _, seen := byProduct[rec.Product]; !seen {
			order = append(order, rec.Product)
		}
		byProduct[rec.Product] = append(byProduct[rec.Product], rec)
	}

	for _, product := range order {
		running := decimal.Zero
		lowest := decimal.Zero
		for _, rec := range SortChronologically(byProduct[product]) {
			sale, ok := rec.Movement.(Sale)
			if !ok {
				continue
			}
			running = running.Sub(sale.Quantity)
			if running.LessThan(lowest) {
				lowest = running
			}
		}
		inferred[product] = lowest.Neg()
	}

	return inferred
}
