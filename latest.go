package inview

import "sync/atomic"

// Latest holds the most recently supplied value, so closures built once can
// always see the newest one without being rebuilt.
type Latest[T any] struct {
	v atomic.Pointer[T]
}

func NewLatest[T any](v T) *Latest[T] {
	l := &Latest[T]{}
	l.Update(v)
	return l
}

func (l *Latest[T]) Update(v T) {
	l.v.Store(&v)
}

func (l *Latest[T]) Read() T {
	if p := l.v.Load(); p != nil {
		return *p
	}

	var zero T
	return zero
}
