// Command accidentctl inspects accident datasets offline with the same loader,
// schema resolver and aggregator the dashboard service uses.
//
// Usage:
//
//	accidentctl schema data/road_accident_data.xlsx
//	accidentctl summarize data/accidents.csv --start 2022-01-01 --end 2022-01-31 --severity Fatal
//	accidentctl validate data/accidents.csv
//	accidentctl watch --brokers localhost:9092 --topic accident-dashboard-snapshots
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	root := newRootCmd(os.Stdout, os.Stderr, tty)
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
