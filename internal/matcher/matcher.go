package matcher

import (
	"sort"
	"strings"

	"github.com/khrees2412/levelup/pkg/models"
)

// Score calculates how well an offer matches a free-text query.
// Returns a score between 0.0 and 1.0
func Score(offer models.Offer, query string) float64 {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return 0
	}

	score := 0.0

	// Factor 1: Title match (40% weight)
	score += matchField(offer.Title, keywords) * 0.4

	// Factor 2: Requirements match (25% weight)
	score += matchField(offer.Requirements, keywords) * 0.25

	// Factor 3: Description match (20% weight)
	score += matchField(offer.Description, keywords) * 0.2

	// Factor 4: Company and location (15% weight)
	score += matchField(offer.Company+" "+offer.Location, keywords) * 0.15

	return score
}

// Ranked pairs an offer with its score
type Ranked struct {
	Offer models.Offer
	Score float64
}

// Rank scores every offer against query and returns those with a non-zero
// score, best first. Ties keep catalog order.
func Rank(offers []models.Offer, query string) []Ranked {
	ranked := []Ranked{}
	for _, offer := range offers {
		if s := Score(offer, query); s > 0 {
			ranked = append(ranked, Ranked{Offer: offer, Score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// matchField returns the share of keywords found in field
func matchField(field string, keywords []string) float64 {
	if field == "" {
		return 0
	}

	fieldLower := strings.ToLower(field)
	matched := 0
	for _, keyword := range keywords {
		if strings.Contains(fieldLower, keyword) {
			matched++
		}
	}

	return float64(matched) / float64(len(keywords))
}

// extractKeywords extracts meaningful keywords from a query
func extractKeywords(query string) []string {
	// Common French and English stop words to ignore
	stopWords := map[string]bool{
		"the": true, "and": true, "for": true, "with": true,
		"de": true, "du": true, "des": true, "le": true, "la": true,
		"les": true, "en": true, "et": true, "un": true, "une": true,
		"pour": true, "avec": true, "dans": true, "sur": true,
	}

	words := strings.Fields(strings.ToLower(query))
	keywords := []string{}
	seen := map[string]bool{}

	for _, word := range words {
		word = strings.Trim(word, ".,!?;:'\"()")
		if len(word) < 2 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	return keywords
}
