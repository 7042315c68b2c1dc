package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRequeueStaleCmd(a *app) *cobra.Command {
	olderThan := durationFlag(5 * time.Minute)

	cmd := &cobra.Command{
		Use:   "requeue-stale",
		Short: "Return running jobs claimed too long ago to pending",
		Long: `Return running jobs whose claim is older than --older-than to pending.

The worker that claimed a job may still be executing it, so a requeued job
can run twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.backend.Clock.Now()
			n, err := a.backend.Store.RequeueStale(cmd.Context(), now.Add(-olderThan.Duration()), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requeued %d job(s)\n", n)
			return nil
		},
	}

	cmd.Flags().Var(&olderThan, "older-than", "Minimum claim age")
	return cmd
}
