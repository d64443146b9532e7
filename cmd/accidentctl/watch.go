package main

import (
	"context"
	"errors"
	"time"

	"github.com/couchcryptid/accident-dashboard-service/internal/adapter/kafka"
	"github.com/spf13/cobra"
)

type watchOutput struct {
	Version     string    `json:"version"`
	PublishedAt time.Time `json:"published_at"`
	Partition   int       `json:"partition"`
	Offset      int64     `json:"offset"`
	Rows        int       `json:"rows"`
	DroppedRows int       `json:"dropped_rows"`
	TotalCount  int       `json:"total_count"`
}

func newWatchCmd(c *cli) *cobra.Command {
	var (
		brokers []string
		topic   string
		groupID string
		count   int
		full    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print dataset snapshots as the dashboard publishes them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := kafka.NewReader(brokers, topic, groupID, c.logger())
			defer r.Close() //nolint:errcheck // best effort on exit

			for n := 0; count == 0 || n < count; n++ {
				msg, err := r.Next(cmd.Context())
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				var out any = watchOutput{
					Version:     msg.Snapshot.Version,
					PublishedAt: msg.PublishedAt,
					Partition:   msg.Partition,
					Offset:      msg.Offset,
					Rows:        msg.Snapshot.Rows,
					DroppedRows: msg.Snapshot.DroppedRows,
					TotalCount:  msg.Snapshot.Metrics.TotalCount,
				}
				if full {
					out = msg.Snapshot
				}
				if err := c.writeJSON(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&brokers, "brokers", []string{"localhost:9092"}, "kafka bootstrap brokers")
	f.StringVar(&topic, "topic", "accident-dashboard-snapshots", "snapshot topic")
	f.StringVar(&groupID, "group", "", "consumer group (default: read partition 0 from the start)")
	f.IntVar(&count, "count", 0, "stop after this many snapshots (0 = until interrupted)")
	f.BoolVar(&full, "full", false, "print whole snapshots including metrics")
	return cmd
}
