package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View application statistics",
	Long:  "Display counts of offers and applications by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		stats, err := application.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}

		cmd.Println(titleStyle.Render("Statistics"))

		cmd.Printf("%s\n", labelStyle.Render("Overview"))
		cmd.Printf("  Offers: %d\n", stats.Offers)
		cmd.Printf("  Total Applications: %d\n", stats.Total)

		if stats.Total == 0 {
			return nil
		}

		cmd.Printf("\n%s\n", labelStyle.Render("Status Breakdown"))
		for _, row := range []struct {
			label string
			count int
		}{
			{"Pending", stats.Pending},
			{"Approved", stats.Approved},
			{"Rejected", stats.Rejected},
		} {
			percentage := float64(row.count) / float64(stats.Total) * 100
			cmd.Printf("  %s: %d (%.1f%%)\n", row.label, row.count, percentage)
		}

		if decided := stats.Approved + stats.Rejected; decided > 0 {
			cmd.Printf("\n%s\n", labelStyle.Render("Response Rate"))
			cmd.Printf("  Decided: %.1f%%\n", float64(decided)/float64(stats.Total)*100)
			cmd.Printf("  Approval Rate: %.1f%%\n", float64(stats.Approved)/float64(decided)*100)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
