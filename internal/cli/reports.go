package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"devtriage/internal/report"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Saved report operations",
	}
	cmd.AddCommand(newReportsListCmd(a), newReportsShowCmd(a), newReportsDeleteCmd(a))
	return cmd
}

func newReportsListCmd(a *app) *cobra.Command {
	var (
		target string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			repo, err := a.repository()
			if err != nil {
				return err
			}
			defer repo.Close()

			summaries, err := repo.ListReports(cmd.Context(), target, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format != "text" {
				return encode(w, format, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(w, "No reports.")
				return nil
			}
			tw := newTable(w)
			fmt.Fprintln(tw, "ID\tTARGET\tCOLLECTED\tSETTINGS\tFINDINGS\tHIGHEST")
			for _, s := range summaries {
				highest := "-"
				if s.Highest.Valid() {
					highest = s.Highest.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					s.ID, s.Target, s.CollectedAt.Format("2006-01-02 15:04:05"),
					s.SettingCount, s.FindingCount, highest)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "only reports for this target")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of reports (0 for all)")
	return cmd
}

func newReportsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			exporter, err := report.ExporterFor(format)
			if err != nil {
				return err
			}
			repo, err := a.repository()
			if err != nil {
				return err
			}
			defer repo.Close()

			rep, err := repo.GetReport(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("report %s: %w", args[0], err)
			}
			return exporter.Export(rep, cmd.OutOrStdout())
		},
	}
}

func newReportsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.DeleteReport(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("report %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted report %s\n", args[0])
			return nil
		},
	}
}
