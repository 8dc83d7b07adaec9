/*
scenarios.go - Demo ledgers for testing and demonstrations

PURPOSE:
  Provides pre-built ledgers that replace the current data with realistic
  sales and adjustments, so the dashboard can be explored without a CSV.

AVAILABLE SCENARIOS:
  corner-shop:    Sales only; every opening stock is inferred
  restock-cycle:  Stock counts between sales, one product running low
  mixed-alerts:   Out-of-stock, low and inferred products side by side

HOW SCENARIOS WORK:
  1. Parse the embedded CSV with the same codec as uploads
  2. Replace the whole ledger in one mutation (Book.Replace)
  3. Remember the scenario with the ledger revision it produced; any later
     mutation (import, entry, delete, reset) makes it no longer current

USAGE VIA API:
  GET  /api/scenarios
  GET  /api/scenarios/current
  POST /api/scenarios/load   {"scenario_id": "restock-cycle"}

NOTE:
  Loading a scenario discards the current ledger.

SEE ALSO:
  - csvcodec/csv.go: CSV format
  - inventory/book.go: Replace
*/
package api

import (
	"net/http"
	"strings"

	"github.com/warp/stock-ledger/csvcodec"
	"github.com/warp/stock-ledger/logger"
)

const scenarioHeader = "date,product_name,quantity_sold,unit_cost,unit_price,total_revenue,total_cost,profit,stock_remaining\n"

type scenario struct {
	ScenarioDTO
	csv string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "corner-shop",
			Name:        "Corner Shop",
			Description: "A week of sales with no stock counts; opening stocks are inferred",
		},
		csv: scenarioHeader +
			"2025-01-06,Green Tea,4,2.1,3.5,14,8.4,5.6,0\n" +
			"2025-01-06,Rice 1kg,10,1.2,2,20,12,8,0\n" +
			"2025-01-07,Green Tea,2,2.1,3.5,7,4.2,2.8,0\n" +
			"2025-01-08,Olive Oil,3,4.5,7.9,23.7,13.5,10.2,0\n" +
			"2025-01-09,Rice 1kg,6,1.2,2,12,7.2,4.8,0\n",
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "restock-cycle",
			Name:        "Restock Cycle",
			Description: "Stock counts between sales; Sugar ends below the low-stock threshold",
		},
		csv: scenarioHeader +
			"2025-02-01,Coffee Beans,0,0,0,0,0,0,40\n" +
			"2025-02-01,Sugar,0,0,0,0,0,0,25\n" +
			"2025-02-03,Coffee Beans,12,6,11,132,72,60,28\n" +
			"2025-02-04,Sugar,20,0.8,1.5,30,16,14,5\n" +
			"2025-02-10,Coffee Beans,0,0,0,0,0,0,60\n" +
			"2025-02-12,Coffee Beans,15,6,11,165,90,75,45\n",
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mixed-alerts",
			Name:        "Mixed Alerts",
			Description: "One product low, two out of stock, one inferred from sales alone",
		},
		csv: scenarioHeader +
			"2025-03-01,Bread,0,0,0,0,0,0,30\n" +
			"2025-03-01,Milk,0,0,0,0,0,0,12\n" +
			"2025-03-02,Bread,22,0.9,1.8,39.6,19.8,19.8,8\n" +
			"2025-03-02,Milk,12,0.7,1.2,14.4,8.4,6,0\n" +
			"2025-03-03,Eggs,6,2.5,3.9,23.4,15,8.4,0\n",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	list := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		list[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCurrentScenario returns the scenario the ledger still matches, or null
// once the ledger has changed since loading.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.currentScenario()
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s.ScenarioDTO)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces the ledger with a predefined one.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var found *scenario
	for i := range scenarios {
		if scenarios[i].ID == req.ScenarioID {
			found = &scenarios[i]
			break
		}
	}
	if found == nil {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	records, err := csvcodec.Parse(strings.NewReader(found.csv))
	if err != nil {
		writeDomainError(w, r, "Failed to parse scenario", err)
		return
	}

	report, err := h.Book.Replace(r.Context(), records)
	if err != nil {
		writeDomainError(w, r, "Failed to load scenario", err)
		return
	}
	h.setCurrentScenario(found.ID, h.Book.Revision())

	log := logger.FromContext(r.Context())
	log.Info().
		Str("scenario", found.ID).
		Int("records", report.Imported).
		Msg("scenario loaded")

	writeJSON(w, http.StatusOK, ImportResponse{
		Imported:              report.Imported,
		InferredOpeningStocks: report.InferredOpeningStocks,
	})
}

func (h *Handler) currentScenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.scenarioRevision != h.Book.Revision() {
		return ""
	}
	return h.scenario
}

func (h *Handler) setCurrentScenario(id, revision string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scenario = id
	h.scenarioRevision = revision
}
