package state

import "sync"

// Store serializes all DisplayState mutations and fans committed states out
// to subscribers.
type Store struct {
	mu      sync.RWMutex
	current DisplayState
	lastGen uint64
	subs    map[int]chan DisplayState
	nextSub int
}

// NewStore creates a store holding Initial().
func NewStore() *Store {
	return &Store{
		current: Initial(),
		subs:    make(map[int]chan DisplayState),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() DisplayState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Commit applies u as one unit. An update whose generation is older than the
// last committed one is discarded and Commit returns false with the current state.
func (s *Store) Commit(u Update) (DisplayState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Generation < s.lastGen {
		return s.current.Clone(), false
	}
	s.lastGen = u.Generation
	s.current = s.current.apply(u)

	for _, ch := range s.subs {
		publish(ch, s.current.Clone())
	}
	return s.current.Clone(), true
}

// Subscribe returns a channel that receives every committed state. Slow
// readers only see the latest state. Call cancel to unsubscribe.
func (s *Store) Subscribe() (<-chan DisplayState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan DisplayState, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish replaces any unread value in ch with st. Callers hold s.mu, so
// there is exactly one sender per channel.
func publish(ch chan DisplayState, st DisplayState) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}
