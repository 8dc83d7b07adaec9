/*
scheduler.go - Scheduled stock report

PURPOSE:
  Periodically computes the ledger aggregates and logs every product that
  is out of stock or below the low-stock threshold, so operators watching
  the logs see what needs restocking.

DESIGN:
  - robfig/cron with a standard 5-field spec (default "0 * * * *", hourly)
  - An empty spec disables the report
  - Each run reads a snapshot of the Book; it never mutates the ledger

USAGE:
  scheduler := NewStockReportScheduler(book, "0 * * * *", opts, log)
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - inventory/aggregate.go: stock buckets
  - config/config.go: STOCK_REPORT_CRON
*/
package api

import (
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/warp/stock-ledger/inventory"
)

// StockReport is the outcome of one scheduled run.
type StockReport struct {
	Out []inventory.ProductStock
	Low []inventory.ProductStock
}

// StockReportScheduler logs low and out-of-stock products on a cron schedule.
type StockReportScheduler struct {
	Book    *inventory.Book
	Spec    string
	Options inventory.AggregateOptions

	cron    *cron.Cron
	log     zerolog.Logger
	mu      sync.Mutex
	running bool
}

// NewStockReportScheduler creates a new scheduler.
func NewStockReportScheduler(book *inventory.Book, spec string, opts inventory.AggregateOptions, log zerolog.Logger) *StockReportScheduler {
	return &StockReportScheduler{
		Book:    book,
		Spec:    spec,
		Options: opts,
		cron:    cron.New(),
		log:     log.With().Str("component", "stock_report").Logger(),
	}
}

// Start schedules the report. An empty spec leaves the scheduler idle.
func (s *StockReportScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Spec == "" {
		s.log.Info().Msg("stock report disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.Spec, func() { s.RunNow() }); err != nil {
		return err
	}
	s.cron.Start()
	s.running = true

	s.log.Info().Str("spec", s.Spec).Msg("stock report scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running report to finish.
func (s *StockReportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info().Msg("stock report stopped")
}

// RunNow computes and logs the report immediately.
func (s *StockReportScheduler) RunNow() StockReport {
	agg := s.Book.Aggregates(s.Options)
	report := StockReport{Out: agg.Buckets.Out, Low: agg.Buckets.Low}

	for _, ps := range report.Out {
		s.log.Warn().Str("product", ps.Product).Str("stock", ps.Stock.String()).Msg("out of stock")
	}
	for _, ps := range report.Low {
		s.log.Warn().Str("product", ps.Product).Str("stock", ps.Stock.String()).Msg("low stock")
	}

	s.log.Info().
		Int("products", len(agg.Stocks)).
		Int("out", len(report.Out)).
		Int("low", len(report.Low)).
		Msg("stock report completed")
	return report
}
