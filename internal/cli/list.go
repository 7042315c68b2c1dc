package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/joshu-sajeev/pingcrm/internal/dto"
	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		status string
		kind   string
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !models.JobStatus(status).Valid() {
				return fmt.Errorf("invalid status %q", status)
			}

			jobs, err := a.backend.Store.List(cmd.Context(), queue.Filter{
				Status: models.JobStatus(status),
				Kind:   kind,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "table" {
				resp := make([]dto.JobResponseDTO, 0, len(jobs))
				for i := range jobs {
					resp = append(resp, dto.NewJobResponse(&jobs[i]))
				}
				return render(out, output, resp)
			}

			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs found.")
				return nil
			}

			now := a.backend.Clock.Now()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tATTEMPTS\tAVAILABLE\tUPDATED\tLAST ERROR")
			for _, j := range jobs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
					j.ID, j.Kind, j.Status, j.Attempts,
					humanize.RelTime(j.AvailableAt, now, "ago", "from now"),
					humanize.RelTime(j.UpdatedAt, now, "ago", "from now"),
					truncate(j.LastError, 60),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, running, succeeded, failed, abandoned)")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by job kind")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to show")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
