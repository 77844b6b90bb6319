// Package view holds the per-view state of the student UI and decides when
// that state is re-read from the store.
//
// A Session never polls. Applications are re-read when the applications tab
// becomes active, offers when the offers tab becomes active or a refresh is
// requested. Everything else is served from the cached copy.
package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/logger"
	"github.com/khrees2412/levelup/internal/workflow"
	"github.com/khrees2412/levelup/pkg/models"
)

type Tab string

const (
	TabOffers       Tab = "offers"
	TabApplications Tab = "applications"
)

const DefaultRefreshLatency = 1500 * time.Millisecond

type OfferSource interface {
	ListOffers(ctx context.Context) ([]models.Offer, error)
}

type ApplicationSource interface {
	ListApplications(ctx context.Context) ([]models.Application, error)
}

// Draft is what the student has typed for the next submission.
type Draft struct {
	MotivationLetter string
	CVFilename       string
}

type Session struct {
	offers   OfferSource
	apps     ApplicationSource
	workflow *workflow.Workflow
	refresh  delay.Strategy
	logger   *logger.Logger

	mu         sync.Mutex
	active     Tab
	offerCache []models.Offer
	appCache   []models.Application
	draft      Draft
	loading    bool
}

type Option func(*Session)

func WithRefreshLatency(s delay.Strategy) Option {
	return func(v *Session) { v.refresh = s }
}

func WithLogger(l *logger.Logger) Option {
	return func(v *Session) { v.logger = l }
}

// NewSession opens on the offers tab with both collections loaded once.
func NewSession(ctx context.Context, offers OfferSource, apps ApplicationSource, wf *workflow.Workflow, opts ...Option) (*Session, error) {
	s := &Session{
		offers:   offers,
		apps:     apps,
		workflow: wf,
		refresh:  delay.Fixed(DefaultRefreshLatency),
		logger:   logger.Discard(),
		active:   TabOffers,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.loadOffers(ctx); err != nil {
		return nil, err
	}
	if err := s.loadApplications(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Activate switches to tab. The tab's collection is re-read only when the
// tab was not already active.
func (s *Session) Activate(ctx context.Context, tab Tab) error {
	if tab != TabOffers && tab != TabApplications {
		return fmt.Errorf("unknown tab %q", tab)
	}

	s.mu.Lock()
	if s.active == tab {
		s.mu.Unlock()
		return nil
	}
	s.active = tab
	s.mu.Unlock()

	if tab == TabApplications {
		return s.loadApplications(ctx)
	}
	return s.loadOffers(ctx)
}

func (s *Session) SetDraft(d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Submit sends the current draft for offer. Loading reports true until the
// attempt finishes. On success the draft is cleared, the applications are
// re-read and the applications tab becomes active, even if it already was.
func (s *Session) Submit(ctx context.Context, offer models.Offer) (models.Application, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return models.Application{}, fmt.Errorf("a submission is already in progress")
	}
	draft := s.draft
	s.loading = true
	s.mu.Unlock()

	app, err := s.workflow.Submit(ctx, workflow.Request{
		Offer:            offer,
		MotivationLetter: draft.MotivationLetter,
		CVFilename:       draft.CVFilename,
	})

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.draft = Draft{}
	}
	s.mu.Unlock()

	if err != nil {
		return models.Application{}, err
	}
	s.mu.Lock()
	s.active = TabApplications
	s.mu.Unlock()
	if err := s.loadApplications(ctx); err != nil {
		return app, err
	}
	return app, nil
}

// RefreshOffers waits the refresh latency and re-reads the catalog.
func (s *Session) RefreshOffers(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := delay.Wait(ctx, s.refresh.Next(1)); err != nil {
		return err
	}
	return s.loadOffers(ctx)
}

func (s *Session) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Offers() []models.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	offers := make([]models.Offer, len(s.offerCache))
	copy(offers, s.offerCache)
	return offers
}

func (s *Session) Applications() []models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	apps := make([]models.Application, len(s.appCache))
	copy(apps, s.appCache)
	return apps
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) loadOffers(ctx context.Context) error {
	offers, err := s.offers.ListOffers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load offers: %w", err)
	}
	s.mu.Lock()
	s.offerCache = offers
	s.mu.Unlock()
	s.logger.Debug("loaded %d offers", len(offers))
	return nil
}

func (s *Session) loadApplications(ctx context.Context) error {
	apps, err := s.apps.ListApplications(ctx)
	if err != nil {
		return fmt.Errorf("failed to load applications: %w", err)
	}
	s.mu.Lock()
	s.appCache = apps
	s.mu.Unlock()
	s.logger.Debug("loaded %d applications", len(apps))
	return nil
}
