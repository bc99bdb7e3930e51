// Package confirmation runs one-shot deferred actions keyed by order id.
package confirmation

import (
	"sync"
	"time"
)

// DefaultDelay is how long a new order waits before auto-confirmation
const DefaultDelay = 3 * time.Second

// Scheduler fires action(orderID) once, delay after Schedule. Tasks are lost
// if the process stops first.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	action  func(orderID string)
	timers  map[string]*time.Timer
	stopped bool
}

func NewScheduler(delay time.Duration, action func(orderID string)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{
		delay:  delay,
		action: action,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms the task for orderID, replacing any task already armed for
// it. It is a no-op after Stop.
func (s *Scheduler) Schedule(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.timers[orderID]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.timers[orderID] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, orderID)
		s.mu.Unlock()

		s.action(orderID)
	})
	s.timers[orderID] = timer
}

// Cancel disarms the task for orderID and reports whether one was pending
func (s *Scheduler) Cancel(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[orderID]
	if !ok {
		return false
	}
	delete(s.timers, orderID)
	return t.Stop()
}

// Pending is the number of armed tasks
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop drops every pending task and refuses new ones
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
