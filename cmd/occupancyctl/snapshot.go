package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	var from string
	var to string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Compute and store year-to-date snapshots for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			start, err := parseDateInput(from, now)
			if err != nil {
				return err
			}
			end := start
			if to != "" {
				if end, err = parseDateInput(to, now); err != nil {
					return err
				}
			}
			if end.Before(start) {
				return fmt.Errorf("--from must be on or before --to")
			}

			application, err := openApp(dbPath)
			if err != nil {
				return err
			}
			defer application.Close()

			written, err := application.Reports.GenerateSnapshots(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(map[string]interface{}{
					"from": start.Format("2006-01-02"),
					"to":   end.Format("2006-01-02"),
					"rows": written,
				})
			}
			fmt.Printf("Stored %d snapshot rows for %s..%s\n", written, start.Format("2006-01-02"), end.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (YYYY-MM-DD, today, yesterday; default yesterday)")
	cmd.Flags().StringVar(&to, "to", "", "Last date, inclusive (default --from)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Snapshot SQLite path (default SNAPSHOT_DB_PATH)")
	return cmd
}
