package theme

import "sync"

// Signal is a subscribable "prefers dark" flag reported by the OS.
type Signal interface {
	PrefersDark() bool
	// Subscribe registers fn for change notifications and returns a
	// function that removes the subscription.
	Subscribe(fn func(prefersDark bool)) (unsubscribe func())
}

// ManualSignal is a Signal whose value is pushed by the owner, e.g. from a
// terminal hint or an HTTP client hint.
type ManualSignal struct {
	mu     sync.Mutex
	dark   bool
	nextID int
	subs   map[int]func(bool)
}

// NewManualSignal returns a signal with the given initial value.
func NewManualSignal(dark bool) *ManualSignal {
	return &ManualSignal{dark: dark, subs: make(map[int]func(bool))}
}

// PrefersDark implements Signal.
func (s *ManualSignal) PrefersDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Subscribe implements Signal.
func (s *ManualSignal) Subscribe(fn func(bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Set updates the value and notifies subscribers when it changed.
// Subscribers run outside the signal's lock.
func (s *ManualSignal) Set(dark bool) {
	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark
	fns := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

// Subscribers returns the number of live subscriptions.
func (s *ManualSignal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
