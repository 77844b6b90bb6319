package cmd

import (
	"fmt"
	"strconv"

	"github.com/khrees2412/levelup/internal/matcher"
	"github.com/khrees2412/levelup/pkg/models"
	"github.com/spf13/cobra"
)

var offersCmd = &cobra.Command{
	Use:     "offers",
	Aliases: []string{"offer"},
	Short:   "Browse and publish offers",
	Long:    "List internship and scholarship offers, view one in detail, or publish a new one as a company",
}

var listOffersCmd = &cobra.Command{
	Use:   "list",
	Short: "List available offers",
	Example: `  levelup offers list
  levelup offers list --match "react alger"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		query, _ := cmd.Flags().GetString("match")

		offers, err := application.Catalog.Search(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("fetch offers: %w", err)
		}

		if len(offers) == 0 {
			if query != "" {
				cmd.Printf("No offers match %q\n", query)
			} else {
				cmd.Println("No offers available.")
			}
			return nil
		}

		cmd.Println(titleStyle.Render("Available Offers"))
		for _, offer := range offers {
			cmd.Printf("\n%s %s\n", labelStyle.Render(fmt.Sprintf("#%d", offer.ID)), offer.Title)
			cmd.Printf("   %s %s\n", labelStyle.Render("Company:"), offer.Company)
			if offer.Location != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Location:"), offer.Location)
			}
			cmd.Printf("   %s %s\n", labelStyle.Render("Type:"), offerTypeLabel(offer.Type))
			if query != "" {
				cmd.Printf("   %s %.0f%%\n", labelStyle.Render("Match:"), matcher.Score(offer, query)*100)
			}
		}
		return nil
	},
}

var showOfferCmd = &cobra.Command{
	Use:   "show <offer-id>",
	Short: "Show details of a specific offer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid offer ID: must be a number")
		}

		offer, err := application.Catalog.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		printOffer(cmd, offer)
		return nil
	},
}

var publishOfferCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a new offer",
	Example: `  levelup offers publish --title "Stage data" --company "DataDZ" --location Oran
  levelup offers publish --title "Bourse master" --company "Fondation X" --type bourse`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		company, _ := cmd.Flags().GetString("company")
		location, _ := cmd.Flags().GetString("location")
		offerType, _ := cmd.Flags().GetString("type")
		description, _ := cmd.Flags().GetString("description")
		requirements, _ := cmd.Flags().GetString("requirements")
		salary, _ := cmd.Flags().GetString("salary")

		offer, err := application.PublishOffer(cmd.Context(), models.Offer{
			Title:        title,
			Company:      company,
			Location:     location,
			Type:         models.OfferType(offerType),
			Description:  description,
			Requirements: requirements,
			Salary:       salary,
		})
		if err != nil {
			return err
		}

		cmd.Printf("✓ Offer published: %s at %s (ID: %d)\n", offer.Title, offer.Company, offer.ID)
		return nil
	},
}

func printOffer(cmd *cobra.Command, offer models.Offer) {
	cmd.Println(titleStyle.Render(offer.Title))
	cmd.Printf("%s %s\n", labelStyle.Render("Company:"), offer.Company)
	if offer.Location != "" {
		cmd.Printf("%s %s\n", labelStyle.Render("Location:"), offer.Location)
	}
	cmd.Printf("%s %s\n", labelStyle.Render("Type:"), offerTypeLabel(offer.Type))
	if offer.Salary != "" {
		cmd.Printf("%s %s\n", labelStyle.Render("Salary:"), offer.Salary)
	}
	if offer.Description != "" {
		cmd.Println(labelStyle.Render("\nDescription:"))
		cmd.Println(valueStyle.Render(offer.Description))
	}
	if offer.Requirements != "" {
		cmd.Println(labelStyle.Render("\nRequirements:"))
		cmd.Println(valueStyle.Render(offer.Requirements))
	}
}

func init() {
	rootCmd.AddCommand(offersCmd)
	offersCmd.AddCommand(listOffersCmd)
	offersCmd.AddCommand(showOfferCmd)
	offersCmd.AddCommand(publishOfferCmd)

	listOffersCmd.Flags().String("match", "", "Rank offers by relevance to these keywords")

	publishOfferCmd.Flags().String("title", "", "Offer title (required)")
	publishOfferCmd.Flags().String("company", "", "Company name (required)")
	publishOfferCmd.Flags().String("location", "", "Location")
	publishOfferCmd.Flags().String("type", string(models.OfferTypeInternship), "Offer type: stage or bourse")
	publishOfferCmd.Flags().String("description", "", "Description")
	publishOfferCmd.Flags().String("requirements", "", "Requirements")
	publishOfferCmd.Flags().String("salary", "", "Salary or stipend")
}
