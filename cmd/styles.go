package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/khrees2412/levelup/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusPending:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.StatusApproved: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		models.StatusRejected: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

var titleCase = cases.Title(language.French)

func statusLabel(s models.Status) string {
	label := map[models.Status]string{
		models.StatusPending:  "en attente",
		models.StatusApproved: "approuvée",
		models.StatusRejected: "refusée",
	}[s]
	if label == "" {
		label = string(s)
	}
	return statusStyles[s].Render(titleCase.String(label))
}

func offerTypeLabel(t models.OfferType) string {
	switch t {
	case models.OfferTypeScholarship:
		return titleCase.String("bourse")
	default:
		return titleCase.String("stage")
	}
}
