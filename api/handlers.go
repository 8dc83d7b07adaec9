/*
handlers.go - HTTP API handlers for the stock ledger

PURPOSE:
  Exposes the ledger Book via REST API. Handles HTTP request/response,
  JSON serialization and CSV transport, and delegates to the engine.

ENDPOINTS:
  Records:
    GET    /api/transactions            Ledger in chronological order
    POST   /api/transactions            Manual entry (sale or adjustment)
    DELETE /api/transactions/{id}       Delete a record and replay

  CSV:
    POST   /api/import                  Import CSV (text/csv body or multipart "file")
                                        ?dry_run=true reports inference only
    GET    /api/export                  Download the ledger as CSV

  Opening stocks:
    GET    /api/opening-stocks          Current opening-stock map
    PUT    /api/opening-stocks/{product} Set one opening stock
    DELETE /api/opening-stocks          Clear every opening stock

  Dashboard:
    GET    /api/summary                 Aggregates (through the summary cache)

  Admin:
    POST   /api/reset                   Clear ledger and opening stocks
    GET    /api/scenarios               Demo ledgers (see scenarios.go)
    GET    /api/scenarios/current       Loaded demo ledger
    POST   /api/scenarios/load          Replace the ledger with a demo
    GET    /healthz                     Liveness

REQUEST FLOW:
  1. Parse HTTP request
  2. Build records (csvcodec.Parse or CreateRecordRequest.toRecord)
  3. Call the Book (replay, persist, swap)
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with the engine message in "details":
  - 400: Parse, empty input, insufficient stock, invalid record
  - 404: Unknown record id
  - 409: Duplicate record id
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/stock-ledger/cache"
	"github.com/warp/stock-ledger/csvcodec"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/logger"
)

// maxUploadBytes bounds CSV uploads.
const maxUploadBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Book      *inventory.Book
	Summaries *cache.Summarizer
	Options   inventory.AggregateOptions

	mu               sync.Mutex
	scenario         string // last demo scenario loaded
	scenarioRevision string // Book revision right after it was loaded
}

// NewHandler creates a new handler. A nil summarizer computes every summary fresh.
func NewHandler(book *inventory.Book, summaries *cache.Summarizer, opts inventory.AggregateOptions) *Handler {
	if summaries == nil {
		summaries = cache.NewSummarizer(cache.NoopSummaryCache{}, 0, zerolog.Nop())
	}
	if opts.LowStockThreshold.IsZero() {
		opts.LowStockThreshold = inventory.DefaultLowStockThreshold
	}
	return &Handler{Book: book, Summaries: summaries, Options: opts}
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// ListTransactions returns the ledger in chronological order.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toRecordDTOs(h.Book.State().Records))
}

// CreateTransaction adds a manual entry.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		if inventory.IsClientError(err) {
			writeDomainError(w, r, "Invalid record", err)
		} else {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
		}
		return
	}

	stored, err := h.Book.Add(r.Context(), rec)
	if err != nil {
		writeDomainError(w, r, "Failed to add record", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordDTO(stored))
}

// DeleteTransaction removes a record and replays the ledger.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := inventory.RecordID(chi.URLParam(r, "id"))

	if err := h.Book.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, "Failed to delete record", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": string(id)})
}

// =============================================================================
// CSV HANDLERS
// =============================================================================

// ImportCSV merges an uploaded CSV into the ledger.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := csvBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return
	}
	defer closeBody()

	records, err := csvcodec.Parse(body)
	if err != nil {
		writeDomainError(w, r, "Failed to parse CSV", err)
		return
	}

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	var report inventory.ImportReport
	if dryRun {
		_, report, err = h.Book.State().Import(records)
	} else {
		report, err = h.Book.Import(r.Context(), records)
	}
	if err != nil {
		writeDomainError(w, r, "Failed to import CSV", err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().
		Int("imported", report.Imported).
		Int("inferred", len(report.InferredOpeningStocks)).
		Bool("dry_run", dryRun).
		Msg("csv imported")

	writeJSON(w, http.StatusOK, ImportResponse{
		Imported:              report.Imported,
		InferredOpeningStocks: report.InferredOpeningStocks,
		DryRun:                dryRun,
	})
}

// ExportCSV streams the ledger as a CSV attachment.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("ledger-%s.csv", inventory.Today())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)

	if err := csvcodec.Export(w, h.Book.State().Records); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("csv export interrupted")
	}
}

// csvBody returns the CSV payload of a raw or multipart upload.
func csvBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("multipart field \"file\": %w", err)
	}
	return file, func() { file.Close() }, nil
}

// =============================================================================
// OPENING STOCK HANDLERS
// =============================================================================

// GetOpeningStocks returns the opening-stock map.
func (h *Handler) GetOpeningStocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Book.State().OpeningStocks)
}

// SetOpeningStock sets one product's opening stock and replays the ledger.
func (h *Handler) SetOpeningStock(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the segment escaped.
	product := chi.URLParam(r, "product")
	if r.URL.RawPath != "" {
		var err error
		if product, err = url.PathUnescape(product); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid product name", err)
			return
		}
	}

	var req OpeningStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Book.SetOpeningStock(r.Context(), product, req.Quantity); err != nil {
		writeDomainError(w, r, "Failed to set opening stock", err)
		return
	}

	writeJSON(w, http.StatusOK, h.Book.State().OpeningStocks)
}

// ClearOpeningStocks drops every opening stock and replays the ledger.
func (h *Handler) ClearOpeningStocks(w http.ResponseWriter, r *http.Request) {
	if err := h.Book.ClearOpeningStocks(r.Context()); err != nil {
		writeDomainError(w, r, "Failed to clear opening stocks", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// GetSummary returns the aggregates of the current ledger.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	opts := h.Options
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil || !threshold.IsPositive() {
			writeError(w, http.StatusBadRequest, "Invalid threshold", err)
			return
		}
		opts.LowStockThreshold = threshold
	}

	state, revision := h.Book.Snapshot()
	agg := h.Summaries.Summary(r.Context(), revision, state, opts)
	writeJSON(w, http.StatusOK, toSummaryResponse(agg, opts.LowStockThreshold))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetLedger clears all data.
func (h *Handler) ResetLedger(w http.ResponseWriter, r *http.Request) {
	if err := h.Book.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Records: len(h.Book.State().Records)})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errUnknownKind(kind string) error {
	return fmt.Errorf("%w: unknown kind %q (use sale or adjustment)", inventory.ErrInvalidRecord, kind)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeDomainError maps engine errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case inventory.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, inventory.ErrDuplicateRecord):
		status, code = http.StatusConflict, "duplicate_record"
	case errors.Is(err, inventory.ErrInsufficientStock):
		status, code = http.StatusBadRequest, "insufficient_stock"
	case errors.Is(err, inventory.ErrParse):
		status, code = http.StatusBadRequest, "parse_error"
	case errors.Is(err, inventory.ErrEmptyInput):
		status, code = http.StatusBadRequest, "empty_input"
	case inventory.IsClientError(err):
		status, code = http.StatusBadRequest, "invalid_record"
	}

	if status == http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg(message)
	}

	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
