package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/khrees2412/levelup/internal/pool"
	"github.com/khrees2412/levelup/internal/workflow"
	"github.com/khrees2412/levelup/pkg/models"
	"github.com/spf13/cobra"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var applyCmd = &cobra.Command{
	Use:   "apply <offer-id> [offer-id...]",
	Short: "Apply to an offer",
	Long:  "Submit a motivation letter (and optionally a CV file name) for one offer, or several with --batch",
	Args:  cobra.MinimumNArgs(1),
	Example: `  levelup apply 1 --letter "Je suis motivée par ce stage" --cv cv.pdf
  levelup apply 1 --letter-file lettre.txt
  levelup apply 1 2 3 --batch --letter-file lettre.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		batch, _ := cmd.Flags().GetBool("batch")
		cv, _ := cmd.Flags().GetString("cv")
		letter, err := readLetter(cmd)
		if err != nil {
			return err
		}

		if len(args) > 1 && !batch {
			return fmt.Errorf("several offer IDs given: use --batch to apply to all of them")
		}

		offers := make([]models.Offer, 0, len(args))
		for _, arg := range args {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid offer ID %q: must be a number", arg)
			}
			offer, err := application.Catalog.Get(ctx, id)
			if err != nil {
				return err
			}
			offers = append(offers, offer)
		}

		if !batch {
			attempt := application.Workflow.Start(ctx, workflow.Request{
				Offer:            offers[0],
				MotivationLetter: letter,
				CVFilename:       cv,
			})
			showPending(cmd, attempt, offers[0])

			app, err := attempt.Wait()
			if err != nil {
				return err
			}
			cmd.Printf("✓ Application sent to %s for %s (ID: %d)\n", app.Company, app.OfferTitle, app.ID)
			return nil
		}

		workers := application.Config.BatchWorkers
		wp := pool.NewWorkerPool(workers, application.Config.BatchInterval)
		cmd.Printf("Submitting %d applications with %d workers...\n", len(offers), workers)

		var mu sync.Mutex
		var failed int
		for _, offer := range offers {
			wp.Submit(func() {
				app, err := application.SubmitApplication(ctx, offer, letter, cv)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed++
					cmd.Printf("%s #%d %s: %v\n", errorStyle.Render("✗"), offer.ID, offer.Title, err)
					return
				}
				cmd.Printf("✓ #%d %s at %s (ID: %d)\n", offer.ID, app.OfferTitle, app.Company, app.ID)
			})
		}
		wp.Wait()

		if failed > 0 {
			return fmt.Errorf("%d of %d applications failed", failed, len(offers))
		}
		return nil
	},
}

// showPending animates a spinner until the attempt leaves the submitting state.
func showPending(cmd *cobra.Command, attempt *workflow.Attempt, offer models.Offer) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for attempt.Pending() {
		cmd.Printf("\r%s Sending application to %s...", spinnerFrames[frame%len(spinnerFrames)], offer.Company)
		frame++
		select {
		case <-attempt.Done():
		case <-ticker.C:
		}
	}
	if frame > 0 {
		cmd.Print("\r\033[K")
	}
}

func readLetter(cmd *cobra.Command) (string, error) {
	letter, _ := cmd.Flags().GetString("letter")
	path, _ := cmd.Flags().GetString("letter-file")
	if path == "" {
		return letter, nil
	}
	if letter != "" {
		return "", fmt.Errorf("use either --letter or --letter-file, not both")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read letter: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("letter", "", "Motivation letter text")
	applyCmd.Flags().String("letter-file", "", "Read the motivation letter from a file")
	applyCmd.Flags().String("cv", "", "CV file name to attach")
	applyCmd.Flags().Bool("batch", false, "Apply to every offer ID given, several at a time")
}
