package storage

import "sync"

// Subscribers is a set of change callbacks. Backends embed it to implement
// Notifier.
type Subscribers struct {
	mu   sync.RWMutex
	next uint64
	fns  map[uint64]func(key string)
}

// Add registers fn and returns a function that removes it.
func (s *Subscribers) Add(fn func(key string)) (stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[uint64]func(string))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

// Notify calls every registered callback with key.
func (s *Subscribers) Notify(key string) {
	s.mu.RLock()
	fns := make([]func(string), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Len returns the number of registered callbacks.
func (s *Subscribers) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fns)
}
