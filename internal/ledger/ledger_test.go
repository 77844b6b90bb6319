package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/khrees2412/levelup/internal/common"
	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/store"
	"github.com/khrees2412/levelup/pkg/models"
)

func newApplication(id int64) models.Application {
	return models.Application{
		ID:          id,
		OfferTitle:  "Stage en développement web",
		Company:     "TechAlger",
		Status:      models.StatusPending,
		AppliedDate: "15/01/2024",
	}
}

func TestListApplicationsEmpty(t *testing.T) {
	apps, err := New(store.NewMemoryStore()).ListApplications(context.Background())
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if apps == nil || len(apps) != 0 {
		t.Errorf("expected an empty non-nil list, got %#v", apps)
	}
}

func TestAppendPersists(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	stored, err := New(s).Append(ctx, newApplication(1))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if stored.ID != 1 || stored.Status != models.StatusPending {
		t.Errorf("unexpected stored record: %+v", stored)
	}

	// A separate ledger instance on the same store sees the write.
	apps, err := New(s).ListApplications(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 1 || apps[0] != stored {
		t.Errorf("expected the appended record, got %+v", apps)
	}
}

func TestAppendDefaultsAndRejectsStatus(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())

	rec := newApplication(1)
	rec.Status = ""
	stored, err := l.Append(ctx, rec)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("empty status should default to pending, got %q", stored.Status)
	}

	rec = newApplication(2)
	rec.Status = models.StatusApproved
	if _, err := l.Append(ctx, rec); !common.Is(err, common.CodeValidation) {
		t.Errorf("expected validation error for non-pending append, got %v", err)
	}
}

func TestAppendRenumbersTakenID(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())

	l.Append(ctx, newApplication(100))
	l.Append(ctx, newApplication(50))
	stored, err := l.Append(ctx, newApplication(100))
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID != 101 {
		t.Errorf("expected id 101 after collision, got %d", stored.ID)
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	ids := NewIDGenerator()
	retry := delay.Retry{MaxAttempts: 100}

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Independent ledgers model independent views sharing one store.
			l := New(s, WithRetry(retry))
			if _, err := l.Append(ctx, newApplication(ids.Next(fixedNow))); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	apps, _ := New(s).ListApplications(ctx)
	if len(apps) != n {
		t.Fatalf("expected %d applications, got %d", n, len(apps))
	}
	seen := map[int64]bool{}
	for _, app := range apps {
		if seen[app.ID] {
			t.Errorf("duplicate id %d", app.ID)
		}
		seen[app.ID] = true
	}
}

func TestSetStatusTransitions(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())
	l.Append(ctx, newApplication(1))

	changed, err := l.SetStatus(ctx, 1, models.StatusApproved)
	if err != nil || !changed {
		t.Fatalf("approve pending: changed %v, err %v", changed, err)
	}

	// Terminal: a later rejection is a silent no-op.
	changed, err = l.SetStatus(ctx, 1, models.StatusRejected)
	if err != nil {
		t.Fatalf("reject approved should not error: %v", err)
	}
	if changed {
		t.Error("reject after approve must not change anything")
	}

	app, err := l.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if app.Status != models.StatusApproved {
		t.Errorf("status should remain approved, got %q", app.Status)
	}
}

func TestSetStatusMonotonic(t *testing.T) {
	decisions := []models.Status{models.StatusApproved, models.StatusRejected}

	for _, first := range decisions {
		for _, second := range append(decisions, models.StatusPending) {
			t.Run(string(first)+"->"+string(second), func(t *testing.T) {
				ctx := context.Background()
				l := New(store.NewMemoryStore())
				l.Append(ctx, newApplication(1))

				if _, err := l.SetStatus(ctx, 1, first); err != nil {
					t.Fatal(err)
				}
				l.SetStatus(ctx, 1, second)

				app, _ := l.Get(ctx, 1)
				if app.Status != first {
					t.Errorf("status moved from %s to %s", first, app.Status)
				}
			})
		}
	}
}

func TestSetStatusInvalidDecision(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())
	l.Append(ctx, newApplication(1))

	for _, status := range []models.Status{models.StatusPending, "accepted", ""} {
		if _, err := l.SetStatus(ctx, 1, status); !common.Is(err, common.CodeValidation) {
			t.Errorf("SetStatus(%q): expected validation error, got %v", status, err)
		}
	}
}

func TestSetStatusMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	l := New(s)

	changed, err := l.SetStatus(ctx, 404, models.StatusApproved)
	if err != nil || changed {
		t.Errorf("missing id: changed %v, err %v; want false, nil", changed, err)
	}
	if _, ok, _ := s.Get(ctx, store.KeyApplications); ok {
		t.Error("a no-op decision must not write to the store")
	}
}

func TestCorruptLedgerReadsEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	s.Set(ctx, store.KeyApplications, []byte(`not json`))
	l := New(s)

	apps, err := l.ListApplications(ctx)
	if err != nil {
		t.Fatalf("corrupt entry must not surface: %v", err)
	}
	if len(apps) != 0 {
		t.Errorf("expected empty list, got %+v", apps)
	}

	if _, err := l.Append(ctx, newApplication(1)); err != nil {
		t.Fatalf("Append over corrupt entry: %v", err)
	}
	apps, _ = l.ListApplications(ctx)
	if len(apps) != 1 {
		t.Errorf("expected the new record to replace the corrupt entry, got %+v", apps)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore())
	for id := int64(1); id <= 4; id++ {
		l.Append(ctx, newApplication(id))
	}
	l.SetStatus(ctx, 1, models.StatusApproved)
	l.SetStatus(ctx, 2, models.StatusRejected)
	l.SetStatus(ctx, 3, models.StatusRejected)

	stats, err := l.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := models.Stats{Total: 4, Pending: 1, Approved: 1, Rejected: 2}
	if stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}
}
