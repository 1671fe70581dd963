package internal

import (
	"reflect"
	"slices"
	"sync"
)

type Signal struct {
	mu sync.RWMutex

	value any
	subs  []*Effect
}

func (r *Runtime) NewSignal(initial any) *Signal {
	return &Signal{
		value: initial,
	}
}

func (s *Signal) Read() any {
	GetRuntime().tracker.Track(s)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek returns the value without subscribing the running effect.
func (s *Signal) Peek() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *Signal) Write(v any) {
	s.mu.Lock()
	if isEqual(s.value, v) {
		s.mu.Unlock()
		return
	}

	s.value = v
	// cloning, subscribers relink while they re-run
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	r := GetRuntime()
	for _, e := range subs {
		r.schedule(e)
	}
}

func (s *Signal) subscribe(e *Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.subs, e) {
		s.subs = append(s.subs, e)
	}
}

func (s *Signal) unsubscribe(e *Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.subs, e); i >= 0 {
		s.subs = slices.Delete(s.subs, i, i+1)
	}
}

func isEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}

	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}

	defer func() { _ = recover() }() // interface fields holding uncomparable values
	return a == b
}
