package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/modesim/infra/output"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		q  output.Query
		to int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print stored iteration statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			store, err := output.OpenStore(cfg.Output, cfg.Controller.OutputDirectory)
			if err != nil {
				return err
			}
			defer store.Close()
			if cmd.Flags().Changed("to") {
				q.To = output.Through(to)
			}
			stats, err := store.Query(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			modes := map[string]bool{}
			for _, st := range stats {
				for m := range st.ModeShares {
					modes[m] = true
				}
			}
			names := make([]string, 0, len(modes))
			for m := range modes {
				names = append(names, m)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprint(w, "RUN\tITERATION\tEXECUTED\tBEST")
			for _, m := range names {
				fmt.Fprintf(w, "\t%s", m)
			}
			fmt.Fprintln(w)
			for _, st := range stats {
				fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4f", st.RunID, st.Iteration, st.AvgExecuted, st.AvgBest)
				for _, m := range names {
					fmt.Fprintf(w, "\t%.3f", st.ModeShares[m])
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.RunID, "run-id", "", "only show this run")
	f.IntVar(&q.From, "from", 0, "first iteration")
	f.IntVar(&to, "to", 0, "last iteration, unbounded when unset")
	return cmd
}
