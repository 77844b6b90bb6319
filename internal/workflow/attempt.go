package workflow

import (
	"sync"

	"github.com/khrees2412/levelup/pkg/models"
)

// Attempt is one run of the submission state machine.
type Attempt struct {
	mu      sync.Mutex
	request Request
	state   State
	history []State
	app     models.Application
	err     error
	claimed bool
	done    chan struct{}
}

func newAttempt(req Request) *Attempt {
	return &Attempt{
		request: req,
		state:   StateIdle,
		history: []State{StateIdle},
		done:    make(chan struct{}),
	}
}

func (a *Attempt) Request() Request {
	return a.request
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History lists every state the attempt has entered, in order.
func (a *Attempt) History() []State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]State(nil), a.history...)
}

// Pending reports whether the attempt is waiting on the simulated round-trip.
// Views show their loading indicator while it is true.
func (a *Attempt) Pending() bool {
	return a.State() == StateSubmitting
}

// Done is closed once the attempt reaches succeeded or failed.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Result returns the stored application or the failure. It is only
// meaningful after Done is closed.
func (a *Attempt) Result() (models.Application, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.app, a.err
}

// Wait blocks until the attempt finishes and returns its result.
func (a *Attempt) Wait() (models.Application, error) {
	<-a.done
	return a.Result()
}
