package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/khrees2412/levelup/internal/common"
	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/logger"
	"github.com/khrees2412/levelup/internal/matcher"
	"github.com/khrees2412/levelup/internal/store"
	"github.com/khrees2412/levelup/pkg/models"
)

// DefaultOffers is the seed written the first time a store is read.
func DefaultOffers() []models.Offer {
	return []models.Offer{
		{
			ID:           1,
			Title:        "Stage en développement web",
			Location:     "Alger",
			Company:      "TechAlger",
			Type:         models.OfferTypeInternship,
			Description:  "Développement d'applications web modernes avec React et Node.js. Rejoignez notre équipe dynamique!",
			Requirements: "Étudiant en informatique, connaissances en JavaScript, React souhaité",
			Salary:       "15,000 DA/mois",
		},
	}
}

// Catalog is the set of offers visible to students.
type Catalog struct {
	store  store.Store
	retry  delay.Retry
	logger *logger.Logger
}

type Option func(*Catalog)

func WithLogger(l *logger.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

func WithRetry(r delay.Retry) Option {
	return func(c *Catalog) { c.retry = r }
}

func New(s store.Store, opts ...Option) *Catalog {
	c := &Catalog{store: s, logger: logger.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.MaxAttempts == 0 {
		c.retry = store.DefaultRetry(c.logger)
	}
	return c
}

// ListOffers returns the stored offers, seeding the defaults if the store
// has no (readable) offers entry yet. The seed is written at most once.
func (c *Catalog) ListOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := store.Update(ctx, c.store, c.retry, store.KeyOffers, func(raw []byte, present bool) ([]byte, error) {
		stored, ok := c.decode(raw, present)
		if ok {
			offers = stored
			return nil, nil
		}

		offers = DefaultOffers()
		c.logger.Info("seeding %d default offer(s)", len(offers))
		return store.Encode(offers)
	})
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// Get returns the offer with the given id
func (c *Catalog) Get(ctx context.Context, id int) (models.Offer, error) {
	offers, err := c.ListOffers(ctx)
	if err != nil {
		return models.Offer{}, err
	}
	for _, offer := range offers {
		if offer.ID == id {
			return offer, nil
		}
	}
	return models.Offer{}, common.NewNotFoundError(fmt.Sprintf("offer %d not found", id))
}

// Publish appends a company's offer to the catalog and returns it with its
// assigned id.
func (c *Catalog) Publish(ctx context.Context, offer models.Offer) (models.Offer, error) {
	offer.Title = strings.TrimSpace(offer.Title)
	offer.Company = strings.TrimSpace(offer.Company)
	if offer.Title == "" || offer.Company == "" {
		return models.Offer{}, common.NewValidationError("offer title and company are required")
	}
	if offer.Type == "" {
		offer.Type = models.OfferTypeInternship
	}
	if !offer.Type.Valid() {
		return models.Offer{}, common.NewValidationError(fmt.Sprintf("invalid offer type %q: must be stage or bourse", offer.Type))
	}

	err := store.Update(ctx, c.store, c.retry, store.KeyOffers, func(raw []byte, present bool) ([]byte, error) {
		offers, ok := c.decode(raw, present)
		if !ok {
			offers = DefaultOffers()
		}

		maxID := 0
		for _, o := range offers {
			if o.ID > maxID {
				maxID = o.ID
			}
		}
		offer.ID = maxID + 1
		return store.Encode(append(offers, offer))
	})
	if err != nil {
		return models.Offer{}, fmt.Errorf("publish offer: %w", err)
	}

	c.logger.Info("published offer %d: %s at %s", offer.ID, offer.Title, offer.Company)
	return offer, nil
}

// Search returns offers relevant to query, best match first. An empty query
// returns the whole catalog.
func (c *Catalog) Search(ctx context.Context, query string) ([]models.Offer, error) {
	offers, err := c.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return offers, nil
	}

	results := []models.Offer{}
	for _, r := range matcher.Rank(offers, query) {
		results = append(results, r.Offer)
	}
	return results, nil
}

// decode parses stored offers. Absent or corrupt entries report ok=false.
func (c *Catalog) decode(raw []byte, present bool) ([]models.Offer, bool) {
	if !present {
		return nil, false
	}
	var offers []models.Offer
	if err := store.Decode(store.KeyOffers, raw, &offers); err != nil {
		c.logger.Warn("%v, treating as absent", err)
		return nil, false
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	return offers, true
}
