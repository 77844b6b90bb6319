// Package workflow runs a student's submission from validation through the
// simulated network round-trip to the ledger append.
//
//	idle -> validating -> submitting -> succeeded
//	             |             |
//	             +--> failed <-+
//
// Every call to Start is an independent attempt. Attempts for different
// offers run concurrently; a second attempt for an offer that is still
// submitting fails immediately.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/khrees2412/levelup/internal/common"
	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/ledger"
	"github.com/khrees2412/levelup/internal/logger"
	"github.com/khrees2412/levelup/pkg/models"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

const (
	DefaultLatency    = 2 * time.Second
	DefaultDateFormat = "02/01/2006"
)

// Request is one submit action. Only the CV's file name travels with it.
type Request struct {
	Offer            models.Offer
	MotivationLetter string
	CVFilename       string
}

// Appender persists a new application and returns it as stored.
type Appender interface {
	Append(ctx context.Context, rec models.Application) (models.Application, error)
}

// Observer is notified of every state an attempt enters.
type Observer func(req Request, state State)

type Workflow struct {
	ledger     Appender
	latency    delay.Strategy
	ids        *ledger.IDGenerator
	now        func() time.Time
	dateFormat string
	logger     *logger.Logger
	observers  []Observer

	mu       sync.Mutex
	inFlight map[int]struct{}
}

type Option func(*Workflow)

// WithLatency sets the simulated round-trip wait.
func WithLatency(s delay.Strategy) Option {
	return func(w *Workflow) { w.latency = s }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func WithDateFormat(layout string) Option {
	return func(w *Workflow) { w.dateFormat = layout }
}

func WithLogger(l *logger.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithIDGenerator shares an id source between workflows.
func WithIDGenerator(g *ledger.IDGenerator) Option {
	return func(w *Workflow) { w.ids = g }
}

func WithObserver(o Observer) Option {
	return func(w *Workflow) { w.observers = append(w.observers, o) }
}

func New(l Appender, opts ...Option) *Workflow {
	w := &Workflow{
		ledger:     l,
		latency:    delay.Fixed(DefaultLatency),
		ids:        ledger.NewIDGenerator(),
		now:        time.Now,
		dateFormat: DefaultDateFormat,
		logger:     logger.Discard(),
		inFlight:   make(map[int]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start validates req synchronously and, if it passes, finishes the
// submission in the background. Cancelling ctx while the attempt is
// submitting fails it without touching the ledger.
func (w *Workflow) Start(ctx context.Context, req Request) *Attempt {
	a := newAttempt(req)
	w.notify(a, StateIdle)
	w.enter(a, StateValidating)

	if strings.TrimSpace(req.MotivationLetter) == "" {
		w.finish(a, models.Application{}, common.NewValidationError("motivation letter is required"))
		return a
	}
	if !w.claim(req.Offer.ID) {
		w.finish(a, models.Application{}, common.NewError(common.CodeConflict,
			fmt.Sprintf("an application for offer %d is already being submitted", req.Offer.ID), nil))
		return a
	}
	a.claimed = true

	w.enter(a, StateSubmitting)
	go w.submit(ctx, a)
	return a
}

// Submit runs an attempt to completion.
func (w *Workflow) Submit(ctx context.Context, req Request) (models.Application, error) {
	return w.Start(ctx, req).Wait()
}

// InFlight reports whether an attempt for the offer is currently submitting.
func (w *Workflow) InFlight(offerID int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.inFlight[offerID]
	return ok
}

func (w *Workflow) submit(ctx context.Context, a *Attempt) {
	req := a.request

	if err := delay.Wait(ctx, w.latency.Next(1)); err != nil {
		w.finish(a, models.Application{}, fmt.Errorf("submission cancelled: %w", err))
		return
	}

	now := w.now()
	rec := models.Application{
		ID:          w.ids.Next(now),
		OfferTitle:  req.Offer.Title,
		Company:     req.Offer.Company,
		Status:      models.StatusPending,
		AppliedDate: now.Format(w.dateFormat),
	}

	stored, err := w.ledger.Append(ctx, rec)
	w.finish(a, stored, err)
}

func (w *Workflow) claim(offerID int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inFlight[offerID]; busy {
		return false
	}
	w.inFlight[offerID] = struct{}{}
	return true
}

func (w *Workflow) release(offerID int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, offerID)
}

func (w *Workflow) enter(a *Attempt, state State) {
	a.mu.Lock()
	a.state = state
	a.history = append(a.history, state)
	a.mu.Unlock()
	w.notify(a, state)
}

// finish records the outcome and moves the attempt to its terminal state.
// The in-flight claim is dropped only after that, so an attempt that still
// reports Pending always holds its offer. Done closes last.
func (w *Workflow) finish(a *Attempt, app models.Application, err error) {
	a.mu.Lock()
	a.app = app
	a.err = err
	a.mu.Unlock()

	if err != nil {
		if common.Is(err, common.CodeValidation) {
			w.logger.Debug("submission for offer %d rejected: %v", a.request.Offer.ID, err)
		} else {
			w.logger.Warn("submission for offer %d failed: %v", a.request.Offer.ID, err)
		}
		w.enter(a, StateFailed)
	} else {
		w.logger.Info("submitted application %d for %s at %s", app.ID, app.OfferTitle, app.Company)
		w.enter(a, StateSucceeded)
	}

	if a.claimed {
		w.release(a.request.Offer.ID)
	}
	close(a.done)
}

func (w *Workflow) notify(a *Attempt, state State) {
	for _, o := range w.observers {
		o(a.request, state)
	}
}
