package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func propertyCmd() *cobra.Command {
	var year int
	var month int
	var room string

	cmd := &cobra.Command{
		Use:   "property NAME",
		Short: "Show monthly metrics for one property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}

			application, err := openApp("")
			if err != nil {
				return err
			}
			defer application.Close()

			m, err := application.Reports.GetPropertyMetrics(cmd.Context(), args[0], year, month, room)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(m)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			label := m.PropertyName
			if m.RoomName != "" {
				label += " / " + m.RoomName
			}
			fmt.Fprintf(w, "Property\t%s\n", label)
			fmt.Fprintf(w, "Period\t%s\n", m.PeriodLabel)
			fmt.Fprintf(w, "Booked nights\t%d of %d\n", m.BookedNights, m.AvailableRooms)
			fmt.Fprintf(w, "Bookings\t%d\n", m.BookingCount)
			fmt.Fprintf(w, "Occupancy\t%.2f%%\n", m.OccRate)
			fmt.Fprintf(w, "Revenue\t%.2f\n", m.RoomRevenue)
			fmt.Fprintf(w, "ADR\t%.2f\n", m.ADR)
			fmt.Fprintf(w, "RevPAR\t%.2f\n", m.RevPAR)
			fmt.Fprintf(w, "Commission (%s)\t%.2f (%.2f%%)\n", m.CommissionMethod, m.AgencyFee, m.CommissionPercent)
			fmt.Fprintf(w, "Owner payment\t%.2f\n", m.OwnerPayment)
			fmt.Fprintf(w, "Stay cleanings\t%d\n", m.TotalStayCleanings)
			fmt.Fprintf(w, "Avg lead time\t%.2f days\n", m.AvgLeadTime)
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default current)")
	cmd.Flags().StringVar(&room, "room", "", "Restrict to one hostel room")
	return cmd
}
