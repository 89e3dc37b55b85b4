package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func limit180Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limit180",
		Short: "Show nights used against the annual cap for the current fiscal year",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp("")
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Reports.Get180DayLimitReport(cmd.Context())
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(report)
			}

			fmt.Printf("Fiscal year %s..%s (limit %d nights)\n", report.FiscalYearStart, report.FiscalYearEnd, report.LimitNights)
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROPERTY\tBOOKED\tREMAINING\tUSED %\tSTATUS")
			for _, p := range report.Properties {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%s\n", p.PropertyName, p.BookedDays, p.RemainingDays, p.UtilizationPercent, p.Status)
			}
			return w.Flush()
		},
	}
}
