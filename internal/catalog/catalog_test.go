package catalog

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/khrees2412/levelup/internal/common"
	"github.com/khrees2412/levelup/internal/store"
	"github.com/khrees2412/levelup/pkg/models"
)

// countingStore records how many writes reach the underlying store
type countingStore struct {
	*store.MemoryStore
	mu     sync.Mutex
	writes int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: store.NewMemoryStore()}
}

func (c *countingStore) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.MemoryStore.Set(ctx, key, value)
}

func (c *countingStore) CompareAndSwap(ctx context.Context, key string, old, next []byte) (bool, error) {
	ok, err := c.MemoryStore.CompareAndSwap(ctx, key, old, next)
	if ok {
		c.mu.Lock()
		c.writes++
		c.mu.Unlock()
	}
	return ok, err
}

func (c *countingStore) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func TestListOffersSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s := newCountingStore()
	c := New(s)

	first, err := c.ListOffers(ctx)
	if err != nil {
		t.Fatalf("first ListOffers: %v", err)
	}
	second, err := c.ListOffers(ctx)
	if err != nil {
		t.Fatalf("second ListOffers: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("listings differ:\n%+v\n%+v", first, second)
	}
	if s.Writes() != 1 {
		t.Errorf("expected exactly one write, got %d", s.Writes())
	}

	if len(first) != 1 {
		t.Fatalf("expected a single seeded offer, got %d", len(first))
	}
	seed := first[0]
	if seed.Title != "Stage en développement web" || seed.Company != "TechAlger" || seed.Type != models.OfferTypeInternship {
		t.Errorf("unexpected seed: %+v", seed)
	}
}

func TestListOffersConcurrentSeedWritesOnce(t *testing.T) {
	ctx := context.Background()
	s := newCountingStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each goroutine plays an independent view on the shared store.
			if _, err := New(s).ListOffers(ctx); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if s.Writes() != 1 {
		t.Errorf("expected one seed write across views, got %d", s.Writes())
	}
}

func TestListOffersReturnsStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	stored := []models.Offer{
		{ID: 7, Title: "Bourse d'excellence", Company: "Fondation X", Type: models.OfferTypeScholarship},
	}
	raw, _ := store.Encode(stored)
	s.Set(ctx, store.KeyOffers, raw)

	got, err := New(s).ListOffers(ctx)
	if err != nil {
		t.Fatalf("ListOffers: %v", err)
	}
	if !reflect.DeepEqual(got, stored) {
		t.Errorf("got %+v, want %+v", got, stored)
	}

	after, _, _ := s.Get(ctx, store.KeyOffers)
	if string(after) != string(raw) {
		t.Error("reading must not rewrite the stored entry")
	}
}

func TestListOffersCorruptTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	s.Set(ctx, store.KeyOffers, []byte(`{broken`))

	got, err := New(s).ListOffers(ctx)
	if err != nil {
		t.Fatalf("corrupt entry must not surface as an error: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultOffers()) {
		t.Errorf("expected seed after corrupt entry, got %+v", got)
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	c := New(store.NewMemoryStore())

	published, err := c.Publish(ctx, models.Offer{
		Title:    "  Stage développeur frontend ",
		Company:  "DesignLab",
		Location: "Oran",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.ID != 2 {
		t.Errorf("expected id 2 after the seed, got %d", published.ID)
	}
	if published.Title != "Stage développeur frontend" {
		t.Errorf("title not trimmed: %q", published.Title)
	}
	if published.Type != models.OfferTypeInternship {
		t.Errorf("expected default type stage, got %q", published.Type)
	}

	offers, _ := c.ListOffers(ctx)
	if len(offers) != 2 {
		t.Fatalf("expected seed plus published offer, got %d", len(offers))
	}

	got, err := c.Get(ctx, 2)
	if err != nil || got.Company != "DesignLab" {
		t.Errorf("Get(2) = %+v, %v", got, err)
	}
}

func TestPublishValidation(t *testing.T) {
	c := New(store.NewMemoryStore())

	tests := []struct {
		name  string
		offer models.Offer
	}{
		{name: "missing title", offer: models.Offer{Company: "X"}},
		{name: "blank company", offer: models.Offer{Title: "T", Company: "  "}},
		{name: "unknown type", offer: models.Offer{Title: "T", Company: "X", Type: "cdi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Publish(context.Background(), tt.offer)
			if !common.Is(err, common.CodeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestConcurrentPublishKeepsEveryOffer(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := New(s).Publish(ctx, models.Offer{Title: "Stage", Company: "Co"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	offers, err := New(s).ListOffers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(offers) != 9 {
		t.Fatalf("expected seed + 8 offers, got %d", len(offers))
	}
	seen := map[int]bool{}
	for _, o := range offers {
		if seen[o.ID] {
			t.Errorf("duplicate offer id %d", o.ID)
		}
		seen[o.ID] = true
	}
}

func TestGetNotFound(t *testing.T) {
	_, err := New(store.NewMemoryStore()).Get(context.Background(), 42)
	if !common.Is(err, common.CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	c := New(store.NewMemoryStore())
	c.Publish(ctx, models.Offer{Title: "Bourse design", Company: "DesignLab", Description: "Figma", Type: models.OfferTypeScholarship})

	all, _ := c.Search(ctx, "  ")
	if len(all) != 2 {
		t.Errorf("empty query should return the catalog, got %d", len(all))
	}

	hits, err := c.Search(ctx, "figma")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Company != "DesignLab" {
		t.Errorf("unexpected search hits: %+v", hits)
	}
}
