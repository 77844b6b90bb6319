package ledger

import (
	"sync"
	"time"
)

// IDGenerator hands out millisecond-timestamp ids that are strictly
// increasing within a process, so two submissions in the same millisecond
// still get distinct ids.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) Next(now time.Time) int64 {
	id := now.UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
