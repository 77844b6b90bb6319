package cmd

import (
	"bufio"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/view"
	"github.com/khrees2412/levelup/pkg/models"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI",
	Long:  "Browse offers, apply, and follow your applications from an interactive terminal session",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		session, err := view.NewSession(cmd.Context(), application.Catalog, application.Ledger, application.Workflow,
			view.WithRefreshLatency(delay.Fixed(application.Config.RefreshDelay)),
			view.WithLogger(application.Logger),
		)
		if err != nil {
			return err
		}
		return runTUI(cmd, session)
	},
}

func runTUI(cmd *cobra.Command, session *view.Session) error {
	ctx := cmd.Context()
	reader := bufio.NewReader(cmd.InOrStdin())

	for {
		switch session.ActiveTab() {
		case view.TabApplications:
			renderApplications(cmd, session.Applications())
			cmd.Println("\n[o] Offers  [q] Quit")
		default:
			renderOfferList(cmd, session.Offers())
			cmd.Println("\nEnter an offer number to view it, [m] My applications, [r] Refresh, [q] Quit")
		}

		input, ok := prompt(cmd, reader, "> ")
		if !ok || input == "q" {
			return nil
		}

		switch input {
		case "o":
			if err := session.Activate(ctx, view.TabOffers); err != nil {
				return err
			}
		case "m":
			if err := session.Activate(ctx, view.TabApplications); err != nil {
				return err
			}
		case "r":
			if err := withSpinner(cmd, session.Loading, "Refreshing offers", func() error {
				return session.RefreshOffers(ctx)
			}); err != nil {
				return err
			}
		default:
			if session.ActiveTab() != view.TabOffers {
				cmd.Println("Invalid choice")
				continue
			}
			offers := session.Offers()
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(offers) {
				cmd.Println("Invalid selection")
				continue
			}
			if err := offerDetails(ctx, cmd, reader, session, offers[n-1]); err != nil {
				return err
			}
		}
	}
}

func offerDetails(ctx context.Context, cmd *cobra.Command, reader *bufio.Reader, session *view.Session, offer models.Offer) error {
	for {
		cmd.Println("\n" + strings.Repeat("=", 60))
		printOffer(cmd, offer)

		cmd.Println("\nOptions:")
		cmd.Println("  [a] Apply to this offer")
		cmd.Println("  [b] Back to list")

		choice, ok := prompt(cmd, reader, "\n> ")
		if !ok {
			return nil
		}

		switch strings.ToLower(choice) {
		case "a":
			letter, _ := prompt(cmd, reader, labelStyle.Render("Motivation letter: "))
			cv, _ := prompt(cmd, reader, labelStyle.Render("CV file name (optional): "))
			session.SetDraft(view.Draft{MotivationLetter: letter, CVFilename: cv})

			var app models.Application
			err := withSpinner(cmd, session.Loading, "Sending application", func() error {
				var err error
				app, err = session.Submit(ctx, offer)
				return err
			})
			if err != nil {
				cmd.Printf("%s %v\n", errorStyle.Render("Error:"), err)
				continue
			}
			cmd.Printf("✓ Application sent to %s (ID: %d)\n", app.Company, app.ID)
			return nil
		case "b":
			return nil
		default:
			cmd.Println("Invalid choice")
		}
	}
}

func renderOfferList(cmd *cobra.Command, offers []models.Offer) {
	cmd.Println(titleStyle.Render("Offers"))
	if len(offers) == 0 {
		cmd.Println("No offers available.")
		return
	}
	for i, offer := range offers {
		cmd.Printf("%d. %s at %s (%s)\n", i+1, offer.Title, offer.Company, offerTypeLabel(offer.Type))
	}
}

func renderApplications(cmd *cobra.Command, apps []models.Application) {
	cmd.Println(titleStyle.Render("My Applications"))
	if len(apps) == 0 {
		cmd.Println("No applications yet.")
		return
	}
	for _, app := range apps {
		cmd.Printf("  • %s at %s  %s  %s\n", app.OfferTitle, app.Company, valueStyle.Render(app.AppliedDate), statusLabel(app.Status))
	}
}

// withSpinner runs fn in the background and animates while busy reports true.
func withSpinner(cmd *cobra.Command, busy func() bool, label string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case err := <-done:
			if frame > 0 {
				cmd.Print("\r\033[K")
			}
			return err
		case <-ticker.C:
			if busy() {
				cmd.Printf("\r%s %s...", spinnerFrames[frame%len(spinnerFrames)], label)
				frame++
			}
		}
	}
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) (string, bool) {
	cmd.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", false
	}
	return strings.TrimSpace(input), true
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
