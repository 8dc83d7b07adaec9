package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/warp/stock-ledger/csvcodec"
	"github.com/warp/stock-ledger/inventory"
	"github.com/warp/stock-ledger/report"
)

// =============================================================================
// import
// =============================================================================

type importCmd struct {
	dryRun bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "merge a CSV file into the ledger" }
func (*importCmd) Usage() string {
	return `stockctl import [-n] <file.csv>

  Parses the CSV, infers opening stocks for products the ledger has never
  seen, and merges the records. Nothing is saved if any sale would drive a
  stock level negative.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "dry run: report what would be imported without saving")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "import needs exactly one CSV file")
		return subcommands.ExitUsageError
	}

	records, err := parseCSVFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	book, closeBook, err := openBook(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	var rep inventory.ImportReport
	if c.dryRun {
		_, rep, err = book.State().Import(records)
	} else {
		rep, err = book.Import(ctx, records)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing: %v\n", err)
		return subcommands.ExitFailure
	}

	verb := "imported"
	if c.dryRun {
		verb = "would import"
	}
	fmt.Fprintf(stdout, "%s %d records, %d new products\n", verb, rep.Imported, len(rep.InferredOpeningStocks))
	return subcommands.ExitSuccess
}

// =============================================================================
// export
// =============================================================================

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the ledger as CSV" }
func (*exportCmd) Usage() string {
	return `stockctl export [-o <file.csv>]

  Writes the ledger in chronological order, in the same CSV format import
  reads. Writes to stdout unless -o is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	book, closeBook, err := openBook(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	if c.output == "" {
		if err := csvcodec.Export(stdout, book.State().Records); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	file, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	if err := writeAndClose(file, book.State().Records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// writeAndClose exports records to w and closes it. A failed close is
// reported even when every write succeeded.
func writeAndClose(w io.WriteCloser, records []inventory.Record) error {
	if err := csvcodec.Export(w, records); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// =============================================================================
// delete
// =============================================================================

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a record by id" }
func (*deleteCmd) Usage() string {
	return `stockctl delete <record-id>

  Removes the record and replays the ledger. Refused if a later sale would
  no longer be covered.
`
}
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "delete needs exactly one record id")
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	book, closeBook, err := openBook(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	if err := book.Delete(ctx, inventory.RecordID(f.Arg(0))); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting record: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "deleted %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

// =============================================================================
// opening
// =============================================================================

type openingCmd struct {
	clear bool
}

func (*openingCmd) Name() string     { return "opening" }
func (*openingCmd) Synopsis() string { return "set or clear opening stocks" }
func (*openingCmd) Usage() string {
	return `stockctl opening <product> <quantity>
stockctl opening -clear

  Sets the stock a product had before its first record, or clears every
  opening stock. The ledger is replayed either way.
`
}

func (c *openingCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "clear every opening stock")
}

func (c *openingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var qty decimal.Decimal
	if !c.clear {
		if f.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "opening needs a product and a quantity")
			return subcommands.ExitUsageError
		}
		var err error
		qty, err = decimal.NewFromString(f.Arg(1))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing quantity %q: %v\n", f.Arg(1), err)
			return subcommands.ExitUsageError
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	book, closeBook, err := openBook(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	if c.clear {
		err = book.ClearOpeningStocks(ctx)
	} else {
		err = book.SetOpeningStock(ctx, f.Arg(0), qty)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating opening stocks: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// =============================================================================
// infer
// =============================================================================

type inferCmd struct {
	raw bool
}

func (*inferCmd) Name() string     { return "infer" }
func (*inferCmd) Synopsis() string { return "show the opening stocks a CSV import would infer" }
func (*inferCmd) Usage() string {
	return `stockctl infer [-raw] <file.csv>

  Reports, for every product in the file that the ledger does not know yet,
  the smallest opening stock covering all of its sales. The ledger is not
  modified.
`
}

func (c *inferCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print markdown without terminal rendering")
}

func (c *inferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "infer needs exactly one CSV file")
		return subcommands.ExitUsageError
	}

	records, err := parseCSVFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	book, closeBook, err := openBook(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	state := book.State()
	known := state.OpeningStocks.Clone()
	for _, p := range state.Products() {
		if !known.Has(p) {
			known[p] = decimal.Zero
		}
	}

	inferred := inventory.InferOpeningStocks(records, known)
	printMarkdown(report.InferredMarkdown(len(records), inferred), c.raw)
	return subcommands.ExitSuccess
}

// =============================================================================
// summary
// =============================================================================

type summaryCmd struct {
	raw       bool
	currency  string
	threshold string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display revenue, profit and stock levels" }
func (*summaryCmd) Usage() string {
	return `stockctl summary [-raw] [-c <currency>] [-t <threshold>]

  Displays totals, the best seller, current stock per product and the
  products that need restocking.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print markdown without terminal rendering")
	f.StringVar(&c.currency, "c", "", "display currency (default: CURRENCY)")
	f.StringVar(&c.threshold, "t", "", "low-stock threshold (default: LOW_STOCK_THRESHOLD)")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	opts := inventory.AggregateOptions{LowStockThreshold: cfg.Ledger.LowStockThreshold}
	if c.threshold != "" {
		t, err := decimal.NewFromString(c.threshold)
		if err != nil || !t.IsPositive() {
			fmt.Fprintf(os.Stderr, "Invalid threshold %q\n", c.threshold)
			return subcommands.ExitUsageError
		}
		opts.LowStockThreshold = t
	}
	currency := cfg.Ledger.Currency
	if c.currency != "" {
		currency = c.currency
	}

	book, closeBook, err := openBook(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeBook()

	printMarkdown(report.SummaryMarkdown(book.Aggregates(opts), currency), c.raw)
	return subcommands.ExitSuccess
}

func parseCSVFile(name string) ([]inventory.Record, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return csvcodec.Parse(file)
}
