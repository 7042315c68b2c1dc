package cli

import (
	"encoding/json"
	"fmt"

	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/spf13/cobra"
)

func newEnqueueCmd(a *app) *cobra.Command {
	var delay durationFlag

	cmd := &cobra.Command{
		Use:   "enqueue KIND [PAYLOAD]",
		Short: "Add a job to the queue",
		Example: `  queuectl enqueue my_job '{"n":3}'
  queuectl enqueue echo '{"n":1}' --delay 5m`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := json.RawMessage("{}")
			if len(args) == 2 {
				payload = json.RawMessage(args[1])
			}

			d := queue.NewDispatcher(a.backend.Store, queue.WithDispatcherClock(a.backend.Clock))
			at := a.backend.Clock.Now().Add(delay.Duration())

			id, err := d.DispatchRawAt(cmd.Context(), args[0], payload, at)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().Var(&delay, "delay", "Delay before the job becomes eligible (e.g. 30s, 5m)")
	return cmd
}
