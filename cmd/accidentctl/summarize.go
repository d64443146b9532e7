package main

import (
	"github.com/couchcryptid/accident-dashboard-service/internal/domain"
	"github.com/spf13/cobra"
)

type summaryOutput struct {
	File     string         `json:"file"`
	Rows     int            `json:"rows"`
	Matched  int            `json:"matched"`
	Criteria string         `json:"criteria"`
	Metrics  domain.Metrics `json:"metrics"`
}

func newSummarizeCmd(c *cli) *cobra.Command {
	var (
		start, end string
		locations  []string
		severities []string
		opts       = domain.DefaultSummaryOptions()
	)

	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Filter a dataset and print its dashboard metrics.",
		Long: "Filter a dataset by date range, location and severity, then print the metrics the dashboard renders. " +
			"Both --start and --end are needed to filter by date.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, schema, _, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			criteria := domain.ParseCriteria(start, end, locations, severities)
			mask, view := domain.Apply(table, schema, criteria)
			return c.writeJSON(summaryOutput{
				File:     args[0],
				Rows:     table.Len(),
				Matched:  mask.Count(),
				Criteria: criteria.Key(),
				Metrics:  domain.Summarize(view, schema, opts),
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&start, "start", "", "first day to include (YYYY-MM-DD)")
	f.StringVar(&end, "end", "", "last day to include (YYYY-MM-DD)")
	f.StringArrayVar(&locations, "location", nil, "location values to keep (repeatable)")
	f.StringArrayVar(&severities, "severity", nil, "severity values to keep (repeatable)")
	f.Uint64Var(&opts.Seed, "seed", 0, "scatter sampling seed")
	f.IntVar(&opts.SampleSize, "sample-size", opts.SampleSize, "max scatter points")
	f.IntVar(&opts.MapPointLimit, "map-points", opts.MapPointLimit, "max map points")
	f.IntVar(&opts.WeatherTopN, "weather-top", opts.WeatherTopN, "weather values kept")
	return cmd
}
