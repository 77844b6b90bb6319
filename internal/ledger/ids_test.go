package ledger

import (
	"sync"
	"testing"
	"time"
)

func TestIDGeneratorSameTick(t *testing.T) {
	g := NewIDGenerator()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	first := g.Next(now)
	second := g.Next(now)
	if first == second {
		t.Fatalf("ids in the same millisecond collided: %d", first)
	}
	if first != now.UnixMilli() {
		t.Errorf("first id should be the timestamp, got %d", first)
	}
	if second != first+1 {
		t.Errorf("expected %d, got %d", first+1, second)
	}
}

func TestIDGeneratorClockGoingBackwards(t *testing.T) {
	g := NewIDGenerator()
	now := time.Now()

	a := g.Next(now)
	b := g.Next(now.Add(-time.Second))
	if b <= a {
		t.Errorf("ids must stay increasing: %d then %d", a, b)
	}
}

func TestIDGeneratorConcurrent(t *testing.T) {
	g := NewIDGenerator()
	now := time.Now()

	var mu sync.Mutex
	seen := map[int64]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Next(now)
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate id %d", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()
}

var fixedNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
