package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	wp := NewWorkerPool(4, 0)
	var done int64

	for i := 0; i < 50; i++ {
		wp.Submit(func() {
			atomic.AddInt64(&done, 1)
		})
	}
	wp.Wait()

	if done != 50 {
		t.Errorf("expected 50 jobs to run, got %d", done)
	}
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	wp := NewWorkerPool(2, 0)
	var running, peak int64

	for i := 0; i < 10; i++ {
		wp.Submit(func() {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
		})
	}
	wp.Wait()

	if peak > 2 {
		t.Errorf("expected at most 2 concurrent jobs, saw %d", peak)
	}
}

func TestWorkerPoolInterval(t *testing.T) {
	interval := 30 * time.Millisecond
	wp := NewWorkerPool(1, interval)

	var mu sync.Mutex
	var starts []time.Time
	for i := 0; i < 3; i++ {
		wp.Submit(func() {
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
		})
	}
	wp.Wait()

	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < interval {
			t.Errorf("gap between job %d and %d: %v < %v", i-1, i, gap, interval)
		}
	}
}
