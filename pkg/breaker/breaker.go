// Package breaker short-circuits calls to a dependency that keeps failing.
package breaker

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	StateClosed State = iota + 1
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrOpen = errors.New("circuit breaker is open")

// Breaker trips open after maxFailures consecutive failures and lets a
// single probe through once openTimeout has passed.
type Breaker struct {
	mu          sync.Mutex
	name        string
	state       State
	failures    int
	maxFailures int
	openSince   time.Time
	openTimeout time.Duration
	log         *zap.Logger
	now         func() time.Time
}

// New returns a closed breaker. A nil log disables transition logging.
func New(name string, maxFailures int, openTimeout time.Duration, log *zap.Logger) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Breaker{
		name:        name,
		state:       StateClosed,
		maxFailures: maxFailures,
		openTimeout: openTimeout,
		log:         log.With(zap.String("breaker", name)),
		now:         time.Now,
	}
}

// Allow returns ErrOpen while the breaker is open, or while a half-open
// probe is already in flight.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openSince) >= b.openTimeout {
			b.log.Warn("circuit breaker open -> half-open")
			b.state = StateHalfOpen
			return nil
		}
		return ErrOpen
	case StateHalfOpen:
		return ErrOpen
	}
	return nil
}

func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.log.Info("circuit breaker half-open -> closed")
		b.state = StateClosed
	}
	b.failures = 0
}

func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.log.Error("circuit breaker half-open -> open, probe failed")
		b.trip()
	case StateClosed:
		b.failures++
		if b.failures >= b.maxFailures {
			b.log.Error("circuit breaker closed -> open", zap.Int("failures", b.failures))
			b.trip()
		}
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openSince = b.now()
	b.failures = 0
}
