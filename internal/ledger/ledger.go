// Package ledger owns the collection of submitted applications.
//
// Records are only ever appended; the one permitted mutation is a status
// transition out of pending. Every write goes through store.Update, so two
// submissions landing at the same time both survive.
package ledger

import (
	"context"
	"fmt"

	"github.com/khrees2412/levelup/internal/common"
	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/logger"
	"github.com/khrees2412/levelup/internal/store"
	"github.com/khrees2412/levelup/pkg/models"
)

type Ledger struct {
	store  store.Store
	retry  delay.Retry
	logger *logger.Logger
}

type Option func(*Ledger)

func WithLogger(l *logger.Logger) Option {
	return func(lg *Ledger) { lg.logger = l }
}

func WithRetry(r delay.Retry) Option {
	return func(lg *Ledger) { lg.retry = r }
}

func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{store: s, logger: logger.Discard()}
	for _, opt := range opts {
		opt(l)
	}
	if l.retry.MaxAttempts == 0 {
		l.retry = store.DefaultRetry(l.logger)
	}
	return l
}

// ListApplications returns the stored applications, or an empty list when
// there are none or the entry can't be read.
func (l *Ledger) ListApplications(ctx context.Context) ([]models.Application, error) {
	raw, present, err := l.store.Get(ctx, store.KeyApplications)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return l.decode(raw, present), nil
}

// Get returns the application with the given id
func (l *Ledger) Get(ctx context.Context, id int64) (models.Application, error) {
	apps, err := l.ListApplications(ctx)
	if err != nil {
		return models.Application{}, err
	}
	for _, app := range apps {
		if app.ID == id {
			return app, nil
		}
	}
	return models.Application{}, common.NewNotFoundError(fmt.Sprintf("application %d not found", id))
}

// Append adds a pending record to the ledger and returns it as stored. A
// record whose id is already taken is renumbered past the highest id.
func (l *Ledger) Append(ctx context.Context, rec models.Application) (models.Application, error) {
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}
	if rec.Status != models.StatusPending {
		return models.Application{}, common.NewValidationError(fmt.Sprintf("new applications must be pending, got %q", rec.Status))
	}

	requested := rec.ID
	err := store.Update(ctx, l.store, l.retry, store.KeyApplications, func(raw []byte, present bool) ([]byte, error) {
		apps := l.decode(raw, present)

		rec.ID = requested
		var maxID int64
		taken := false
		for _, app := range apps {
			if app.ID == rec.ID {
				taken = true
			}
			if app.ID > maxID {
				maxID = app.ID
			}
		}
		if taken {
			rec.ID = maxID + 1
		}
		return store.Encode(append(apps, rec))
	})
	if err != nil {
		return models.Application{}, fmt.Errorf("append application: %w", err)
	}

	if rec.ID != requested {
		l.logger.Debug("application id %d already taken, stored as %d", requested, rec.ID)
	}
	l.logger.Info("application %d recorded for %s at %s", rec.ID, rec.OfferTitle, rec.Company)
	return rec, nil
}

// SetStatus moves a pending application to approved or rejected. Missing or
// already-decided applications are left alone and reported as unchanged.
func (l *Ledger) SetStatus(ctx context.Context, id int64, status models.Status) (bool, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return false, common.NewValidationError(fmt.Sprintf("invalid decision %q: must be approved or rejected", status))
	}

	var changed bool
	err := store.Update(ctx, l.store, l.retry, store.KeyApplications, func(raw []byte, present bool) ([]byte, error) {
		changed = false
		apps := l.decode(raw, present)

		idx := -1
		for i := range apps {
			if apps[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			l.logger.Debug("%v, ignoring decision", common.NewNotFoundError(fmt.Sprintf("application %d not found", id)))
			return nil, nil
		}
		if apps[idx].Status != models.StatusPending {
			l.logger.Debug("application %d is already %s, ignoring %s", id, apps[idx].Status, status)
			return nil, nil
		}

		apps[idx].Status = status
		changed = true
		return store.Encode(apps)
	})
	if err != nil {
		return false, fmt.Errorf("set application status: %w", err)
	}

	if changed {
		l.logger.Info("application %d %s", id, status)
	}
	return changed, nil
}

// Stats counts applications by status. Offers is left for the caller.
func (l *Ledger) Stats(ctx context.Context) (models.Stats, error) {
	apps, err := l.ListApplications(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	stats := models.Stats{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (l *Ledger) decode(raw []byte, present bool) []models.Application {
	apps := []models.Application{}
	if !present {
		return apps
	}
	if err := store.Decode(store.KeyApplications, raw, &apps); err != nil {
		l.logger.Warn("%v, treating as empty", err)
		return []models.Application{}
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps
}
