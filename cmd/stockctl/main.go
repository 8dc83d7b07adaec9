// Command stockctl manages the stock ledger database from the terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&importCmd{}, "ledger")
	commander.Register(&exportCmd{}, "ledger")
	commander.Register(&deleteCmd{}, "ledger")
	commander.Register(&openingCmd{}, "ledger")
	commander.Register(&inferCmd{}, "reports")
	commander.Register(&summaryCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
