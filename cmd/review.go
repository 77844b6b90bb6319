package cmd

import (
	"fmt"
	"strconv"

	"github.com/khrees2412/levelup/pkg/models"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <application-id>",
	Short: "Approve or reject an application",
	Long:  "Record a company decision. Only pending applications can be decided; a decided one is left as is.",
	Args:  cobra.ExactArgs(1),
	Example: `  levelup review 1718000000000 --decision approved
  levelup review 1718000000000 --decision rejected`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid application ID: must be a number")
		}
		decision, _ := cmd.Flags().GetString("decision")

		changed, err := application.ReviewApplication(cmd.Context(), id, models.Status(decision))
		if err != nil {
			return err
		}
		if !changed {
			cmd.Printf("Application %d was not changed (unknown or already decided)\n", id)
			return nil
		}
		cmd.Printf("✓ Application %d is now %s\n", id, statusLabel(models.Status(decision)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().String("decision", "", "approved or rejected")
	reviewCmd.MarkFlagRequired("decision")
}
