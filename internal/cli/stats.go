package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/spf13/cobra"
)

var statusOrder = []models.JobStatus{
	models.JobStatusPending,
	models.JobStatusRunning,
	models.JobStatusSucceeded,
	models.JobStatusFailed,
	models.JobStatusAbandoned,
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show job counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.backend.Store.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			var total int64
			for _, s := range statusOrder {
				total += counts[s]
				fmt.Fprintf(tw, "%s\t%s\t\n", s, humanize.Comma(counts[s]))
			}
			fmt.Fprintf(tw, "total\t%s\t\n", humanize.Comma(total))
			return tw.Flush()
		},
	}
}
