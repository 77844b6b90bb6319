package cmd

import (
	"fmt"

	"github.com/khrees2412/levelup/pkg/models"
	"github.com/spf13/cobra"
)

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"status"},
	Short:   "View your applications",
	Long:    "List submitted applications grouped by status",
	Example: `  levelup applications
  levelup applications --filter pending`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")
		if filter != "" && !models.Status(filter).Valid() {
			return fmt.Errorf("invalid status %q: must be pending, approved or rejected", filter)
		}

		apps, err := application.ListApplications(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch applications: %w", err)
		}

		if len(apps) == 0 {
			cmd.Println("No applications yet. Apply to an offer with 'levelup apply <offer-id>'")
			return nil
		}

		groups := map[models.Status][]models.Application{}
		total := 0
		for _, app := range apps {
			if filter != "" && string(app.Status) != filter {
				continue
			}
			groups[app.Status] = append(groups[app.Status], app)
			total++
		}

		if total == 0 {
			cmd.Printf("No applications with status '%s'\n", filter)
			return nil
		}

		cmd.Println(titleStyle.Render("My Applications"))
		for _, status := range []models.Status{models.StatusPending, models.StatusApproved, models.StatusRejected} {
			group := groups[status]
			if len(group) == 0 {
				continue
			}

			cmd.Printf("\n%s (%d)\n", statusLabel(status), len(group))
			for _, app := range group {
				cmd.Printf("  • %s at %s\n", app.OfferTitle, app.Company)
				cmd.Printf("    %s %d | Applied: %s\n", labelStyle.Render("ID:"), app.ID, app.AppliedDate)
			}
		}

		cmd.Printf("\n%s %d\n", labelStyle.Render("Total Applications:"), total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applicationsCmd)
	applicationsCmd.Flags().String("filter", "", "Only show applications with this status")
}
