// Package alarm provides the wake-up primitive the session engine schedules
// its deadlines on: a named one-shot timer that fires a callback in a
// detached goroutine at or after the requested wall-clock time, with no
// request in flight to observe the countdown.
package alarm

import (
	"sync"
	"time"
)

// FocusTimer is the single well-known alarm name. Only one deadline is
// outstanding at a time, matching the single-active-session invariant.
const FocusTimer = "focusTimer"

type Handler func(name string)

type entry struct {
	timer *time.Timer
	gen   uint64
}

type Scheduler struct {
	handler Handler

	mu     sync.Mutex
	gen    uint64
	timers map[string]*entry
}

func NewScheduler(handler Handler) *Scheduler {
	return &Scheduler{
		handler: handler,
		timers:  make(map[string]*entry),
	}
}

// Schedule arms name to fire at whenMillis (epoch ms), replacing any deadline
// previously scheduled under the same name. A deadline already in the past
// fires immediately.
func (s *Scheduler) Schedule(name string, whenMillis int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[name]; ok {
		old.timer.Stop()
	}

	s.gen++
	gen := s.gen
	delay := time.Until(time.UnixMilli(whenMillis))
	if delay < 0 {
		delay = 0
	}
	s.timers[name] = &entry{
		timer: time.AfterFunc(delay, func() { s.fire(name, gen) }),
		gen:   gen,
	}
}

func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[name]; ok {
		e.timer.Stop()
		delete(s.timers, name)
	}
}

// Stop cancels every outstanding deadline.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, name)
	}
}

func (s *Scheduler) fire(name string, gen uint64) {
	s.mu.Lock()
	e, ok := s.timers[name]
	// A fire racing a Cancel or a replacement Schedule is stale; the
	// generation check keeps replaced deadlines from double-firing.
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, name)
	s.mu.Unlock()

	s.handler(name)
}
