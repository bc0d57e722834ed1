package chat

import (
	"sync"
	"time"
)

type storeEntry struct {
	sess     *Session
	lastSeen time.Time
}

// Store maps opaque session ids to live sessions. It is handed to the HTTP
// handlers explicitly rather than living as package state. A positive ttl
// enables background eviction of idle sessions; ttl <= 0 means entries live
// until removed or the process exits.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*storeEntry
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[string]*storeEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweep()
	}
	return s
}

// Put stores sess under id, replacing any previous session.
func (s *Store) Put(id string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &storeEntry{sess: sess, lastSeen: time.Now()}
}

// Get returns the session for id, refreshing its idle timer.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.sess, true
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the eviction sweeper. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.evictIdle(time.Now().Add(-s.ttl))
		}
	}
}

func (s *Store) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}
