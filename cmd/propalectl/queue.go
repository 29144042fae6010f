package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/propale/propale/pkg/queue"
	"github.com/spf13/cobra"
)

func queueCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect background jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print the size of every queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inspector := queue.NewInspector(&e.cfg.Redis)
			defer inspector.Close()

			names, err := inspector.Queues()
			if err != nil {
				return fmt.Errorf("listing queues: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED\tPROCESSED\tFAILED\tPAUSED")
			for _, name := range names {
				info, err := inspector.GetQueueInfo(name)
				if err != nil {
					return fmt.Errorf("reading queue %s: %w", name, err)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%t\n",
					info.Queue, info.Pending, info.Active, info.Scheduled, info.Retry,
					info.Archived, info.Processed, info.Failed, info.Paused)
			}
			return w.Flush()
		},
	})

	return cmd
}
