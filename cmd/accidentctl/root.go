package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/couchcryptid/accident-dashboard-service/internal/dataset"
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/spf13/cobra"
)

// cli carries the output streams and the flags shared by every command.
type cli struct {
	out    io.Writer
	errOut io.Writer
	tty    bool

	dateColumn string
	sheet      string
	indent     bool
	verbose    bool
}

func newRootCmd(out, errOut io.Writer, tty bool) *cobra.Command {
	c := &cli{out: out, errOut: errOut, tty: tty}

	root := &cobra.Command{
		Use:          "accidentctl",
		Short:        "Inspect road accident datasets.",
		Long:         "Load an accident table from CSV or XLSX, resolve its column roles, and compute dashboard summaries from the command line.",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.dateColumn, "date-column", "Accident Date", "column holding the accident date")
	root.PersistentFlags().StringVar(&c.sheet, "sheet", "", "workbook sheet to read (default: first sheet)")
	root.PersistentFlags().BoolVar(&c.indent, "indent", tty, "indent JSON output")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log loader diagnostics to stderr")

	root.AddCommand(
		newSchemaCmd(c),
		newSummarizeCmd(c),
		newValidateCmd(c),
		newWatchCmd(c),
	)
	return root
}

func (c *cli) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
}

// load reads path with the shared loader and resolves its schema.
func (c *cli) load(ctx context.Context, path string) (*domain.Table, domain.Schema, dataset.LoadReport, error) {
	loader := dataset.NewFileLoader(path, dataset.Options{DateColumn: c.dateColumn, Sheet: c.sheet}, c.logger())
	table, report, err := loader.Load(ctx)
	if err != nil {
		return nil, domain.Schema{}, report, err
	}
	return table, domain.Resolve(table.Columns()), report, nil
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	if c.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
