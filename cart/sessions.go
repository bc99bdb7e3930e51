package cart

import (
	"container/list"
	"context"
	"sync"
	"time"

	"food-ordering-api/kvstore"

	"go.uber.org/zap"
)

// Limits bounds the engines Sessions keeps in memory. An evicted engine is
// rebuilt from its stored snapshot on the next request for that session.
type Limits struct {
	IdleTimeout time.Duration
	MaxSessions int
}

var DefaultLimits = Limits{IdleTimeout: 30 * time.Minute, MaxSessions: 10000}

type sessionEntry struct {
	id       string
	engine   *Engine
	lastUsed time.Time
}

// Sessions hands out one Engine per cart session, created lazily from the
// store on first use. Engines are kept in least-recently-used order.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	store   kvstore.Store
	logger  *zap.Logger
	limits  Limits
	opts    []Option
	now     func() time.Time
}

// NewSessions builds a session registry. Zero fields in limits take the
// DefaultLimits value.
func NewSessions(store kvstore.Store, logger *zap.Logger, limits Limits, opts ...Option) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.IdleTimeout <= 0 {
		limits.IdleTimeout = DefaultLimits.IdleTimeout
	}
	if limits.MaxSessions <= 0 {
		limits.MaxSessions = DefaultLimits.MaxSessions
	}
	return &Sessions{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		store:   store,
		logger:  logger,
		limits:  limits,
		opts:    opts,
		now:     time.Now,
	}
}

// Get returns the engine for sessionID. Creating one beyond MaxSessions
// evicts the least recently used engine.
func (s *Sessions) Get(ctx context.Context, sessionID string) *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if el, ok := s.entries[sessionID]; ok {
		entry := el.Value.(*sessionEntry)
		entry.lastUsed = now
		s.lru.MoveToFront(el)
		return entry.engine
	}

	e := NewEngine(ctx, s.store, CartKey(sessionID), s.logger.With(zap.String("session", sessionID)), s.opts...)
	s.entries[sessionID] = s.lru.PushFront(&sessionEntry{id: sessionID, engine: e, lastUsed: now})
	for s.lru.Len() > s.limits.MaxSessions {
		s.remove(s.lru.Back())
	}
	return e
}

// Sweep evicts engines idle for longer than IdleTimeout and returns how many
// were dropped.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.limits.IdleTimeout)
	evicted := 0
	for el := s.lru.Back(); el != nil; el = s.lru.Back() {
		if !el.Value.(*sessionEntry).lastUsed.Before(cutoff) {
			break
		}
		s.remove(el)
		evicted++
	}
	return evicted
}

// Run sweeps idle engines every interval until ctx is done
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("evicted idle cart sessions", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}

func (s *Sessions) remove(el *list.Element) {
	entry := s.lru.Remove(el).(*sessionEntry)
	delete(s.entries, entry.id)
}

// Forget drops the in-memory engine. The stored snapshot stays.
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[sessionID]; ok {
		s.remove(el)
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}
