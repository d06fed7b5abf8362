// Package session keeps one calculator machine per mounted widget and
// evicts widgets that have gone idle.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"calculator-api/internal/machine"
)

var (
	// ErrNotFound is returned for ids that were never created, were deleted
	// or have expired.
	ErrNotFound = errors.New("session not found")

	// ErrCapacity is returned by Create when MaxSessions is reached.
	ErrCapacity = errors.New("session capacity reached")
)

// entry guards its machine with its own lock so a long press on one
// session never holds up the others. lastUsed is unix nanoseconds.
type entry struct {
	mu       sync.Mutex
	machine  *machine.Machine
	created  time.Time
	lastUsed atomic.Int64
}

func (e *entry) snapshot() machine.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Snapshot()
}

// Options configures a Store. Zero values mean no idle expiry and no
// capacity limit.
type Options struct {
	IdleTTL     time.Duration
	MaxSessions int
	Now         func() time.Time
}

// Store is a concurrency-safe registry of calculator machines. mu guards
// the map only; each machine is guarded by its entry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	opts     Options
	evicted  uint64
}

func NewStore(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		sessions: make(map[string]*entry),
		opts:     opts,
	}
}

// Create mounts a new machine and returns its id.
func (s *Store) Create() (string, machine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		return "", machine.Snapshot{}, fmt.Errorf("%w: %d sessions", ErrCapacity, len(s.sessions))
	}

	id := uuid.NewString()
	now := s.opts.Now()
	e := &entry{machine: machine.New(), created: now}
	e.lastUsed.Store(now.UnixNano())
	s.sessions[id] = e

	return id, e.machine.Snapshot(), nil
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Get returns the state of session id without touching its idle clock.
func (s *Store) Get(id string) (machine.Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return machine.Snapshot{}, err
	}
	return e.snapshot(), nil
}

// Press applies cmds to session id in order and returns the resulting
// state. Presses on the same session are serialized; presses on different
// sessions run in parallel.
func (s *Store) Press(id string, cmds ...machine.Command) (machine.Snapshot, error) {
	e, err := s.lookup(id)
	if err != nil {
		return machine.Snapshot{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range cmds {
		e.machine.Dispatch(c)
	}
	e.lastUsed.Store(s.opts.Now().UnixNano())

	return e.machine.Snapshot(), nil
}

// Delete unmounts session id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// Len reports the number of mounted sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evicted reports how many sessions Sweep has removed since start.
func (s *Store) Evicted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// Sweep removes sessions idle for longer than IdleTTL and returns how many
// were removed. It is a no-op without an IdleTTL.
func (s *Store) Sweep() int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.opts.Now().Add(-s.opts.IdleTTL).UnixNano()
	removed := 0
	for id, e := range s.sessions {
		if e.lastUsed.Load() < cutoff {
			delete(s.sessions, id)
			removed++
		}
	}
	s.evicted += uint64(removed)

	return removed
}
