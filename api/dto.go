/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger model (sealed Movement variants, Date values) from the
  external contract, which keeps the flat field names of the CSV format.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Records:
    RecordDTO, CreateRecordRequest

  Import:
    ImportResponse

  Opening stocks:
    OpeningStockRequest

  Summary:
    SummaryResponse, StockDTO, SeriesDTO, BestSellerDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and in inventory.Record.Validate, not in
  DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - inventory/types.go: Record, Movement
*/
package api

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/stock-ledger/inventory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RecordDTO represents a ledger record in API responses.
type RecordDTO struct {
	ID             string           `json:"id"`
	Date           string           `json:"date"`
	ProductName    string           `json:"product_name"`
	Kind           string           `json:"kind"`
	QuantitySold   decimal.Decimal  `json:"quantity_sold"`
	UnitCost       decimal.Decimal  `json:"unit_cost"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	TotalCost      decimal.Decimal  `json:"total_cost"`
	Profit         decimal.Decimal  `json:"profit"`
	NewStock       *decimal.Decimal `json:"new_stock,omitempty"`
	StockRemaining decimal.Decimal  `json:"stock_remaining"`
}

// CreateRecordRequest is a manual ledger entry. Kind defaults to "sale".
// Sales use quantity_sold, unit_cost and unit_price; adjustments use new_stock.
type CreateRecordRequest struct {
	Date         string          `json:"date"`
	ProductName  string          `json:"product_name"`
	Kind         string          `json:"kind,omitempty"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	NewStock     decimal.Decimal `json:"new_stock"`
}

// ImportResponse reports the outcome of a CSV import.
type ImportResponse struct {
	Imported              int                        `json:"imported"`
	InferredOpeningStocks map[string]decimal.Decimal `json:"inferred_opening_stocks"`
	DryRun                bool                       `json:"dry_run,omitempty"`
}

// OpeningStockRequest sets one product's opening stock.
type OpeningStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

type BestSellerDTO struct {
	ProductName  string          `json:"product_name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
}

type StockDTO struct {
	ProductName string          `json:"product_name"`
	Stock       decimal.Decimal `json:"stock"`
	Status      string          `json:"status"`
}

type SeriesDTO struct {
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Profit      decimal.Decimal `json:"profit"`
}

// SummaryResponse carries every dashboard view of the ledger.
type SummaryResponse struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	BestSeller        *BestSellerDTO  `json:"best_seller"`
	Stocks            []StockDTO      `json:"stocks"`
	OutOfStock        []StockDTO      `json:"out_of_stock"`
	LowStock          []StockDTO      `json:"low_stock"`
	SafeStock         []StockDTO      `json:"safe_stock"`
	Series            []SeriesDTO     `json:"series"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
}

// ScenarioDTO describes a demo ledger.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a demo ledger to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toRecordDTO(rec inventory.Record) RecordDTO {
	dto := RecordDTO{
		ID:             string(rec.ID),
		Date:           rec.Date.String(),
		ProductName:    rec.Product,
		Kind:           string(rec.Kind()),
		QuantitySold:   rec.QuantitySold(),
		UnitCost:       rec.UnitCost(),
		UnitPrice:      rec.UnitPrice(),
		TotalRevenue:   rec.Revenue(),
		TotalCost:      rec.Cost(),
		Profit:         rec.Profit(),
		StockRemaining: rec.StockRemaining,
	}
	if adj, ok := rec.Movement.(inventory.Adjustment); ok {
		level := adj.NewStock
		dto.NewStock = &level
	}
	return dto
}

func toRecordDTOs(records []inventory.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	return dtos
}

// toRecord builds the ledger record for a manual entry. Field validation is
// left to inventory.Record.Validate.
func (req CreateRecordRequest) toRecord() (inventory.Record, error) {
	date, err := inventory.ParseDate(req.Date)
	if err != nil {
		return inventory.Record{}, err
	}

	switch inventory.Kind(strings.ToLower(strings.TrimSpace(req.Kind))) {
	case "", inventory.KindSale:
		return inventory.NewSale(date, req.ProductName, req.QuantitySold, req.UnitCost, req.UnitPrice), nil
	case inventory.KindAdjustment:
		return inventory.NewAdjustment(date, req.ProductName, req.NewStock), nil
	default:
		return inventory.Record{}, errUnknownKind(req.Kind)
	}
}

func toStockDTOs(stocks []inventory.ProductStock) []StockDTO {
	dtos := make([]StockDTO, len(stocks))
	for i, ps := range stocks {
		dtos[i] = StockDTO{ProductName: ps.Product, Stock: ps.Stock, Status: string(ps.Status)}
	}
	return dtos
}

func toSummaryResponse(agg inventory.Aggregates, threshold decimal.Decimal) SummaryResponse {
	resp := SummaryResponse{
		TotalRevenue:      agg.TotalRevenue,
		TotalProfit:       agg.TotalProfit,
		Stocks:            toStockDTOs(agg.Stocks),
		OutOfStock:        toStockDTOs(agg.Buckets.Out),
		LowStock:          toStockDTOs(agg.Buckets.Low),
		SafeStock:         toStockDTOs(agg.Buckets.Safe),
		Series:            make([]SeriesDTO, len(agg.Series)),
		LowStockThreshold: threshold,
	}
	if agg.BestSeller != nil {
		resp.BestSeller = &BestSellerDTO{ProductName: agg.BestSeller.Product, QuantitySold: agg.BestSeller.Quantity}
	}
	for i, s := range agg.Series {
		resp.Series[i] = SeriesDTO{ProductName: s.Product, Revenue: s.Revenue, Profit: s.Profit}
	}
	return resp
}
