// Package inviewtest provides an in-memory intersection observation service
// for testing trackers and the components that host them.
package inviewtest

import (
	"slices"

	"github.com/AnatoleLucet/inview"
	"github.com/pkg/errors"
)

// Service records every observer it creates. Notifications are delivered
// only when a test asks for them.
type Service[E comparable] struct {
	// Unsupported makes Supported report false.
	Unsupported bool

	probes    int
	observers []*Observer[E]
	peak      int
}

func New[E comparable]() *Service[E] {
	return &Service[E]{}
}

func (s *Service[E]) Supported() bool {
	s.probes++
	return !s.Unsupported
}

func (s *Service[E]) NewObserver(h inview.Handler[E], cfg inview.ObserverConfig[E]) inview.Observer[E] {
	o := &Observer[E]{
		Config:     cfg,
		svc:        s,
		handler:    h,
		thresholds: inview.NormalizeThresholds(cfg.Threshold),
	}

	s.observers = append(s.observers, o)
	return o
}

// Created returns how many observers were constructed.
func (s *Service[E]) Created() int {
	return len(s.observers)
}

// Probes returns how many times Supported was called.
func (s *Service[E]) Probes() int {
	return s.probes
}

// Observers returns every observer in creation order.
func (s *Service[E]) Observers() []*Observer[E] {
	return slices.Clone(s.observers)
}

// Active returns how many elements are being watched across all observers.
func (s *Service[E]) Active() int {
	n := 0
	for _, o := range s.observers {
		n += len(o.elements)
	}
	return n
}

// Peak returns the highest Active count seen so far.
func (s *Service[E]) Peak() int {
	return s.peak
}

// InstanceFor returns the observer currently watching el.
func (s *Service[E]) InstanceFor(el E) (*Observer[E], error) {
	for _, o := range s.observers {
		if o.Watching(el) {
			return o, nil
		}
	}

	return nil, errors.Errorf("inviewtest: no observer is watching %v, is it still attached?", el)
}

// Trigger delivers a record for target through the observer watching it.
func (s *Service[E]) Trigger(target E, isIntersecting bool, ratio float64) error {
	return s.Deliver(inview.Record[E]{
		Target:            target,
		IsIntersecting:    isIntersecting,
		IntersectionRatio: ratio,
	})
}

func (s *Service[E]) Deliver(rec inview.Record[E]) error {
	o, err := s.InstanceFor(rec.Target)
	if err != nil {
		return err
	}

	o.Fire(rec)
	return nil
}

// Reset forgets every observer and counter.
func (s *Service[E]) Reset() {
	s.probes = 0
	s.observers = nil
	s.peak = 0
}

type Observer[E comparable] struct {
	Config inview.ObserverConfig[E]

	// ObserveCalls lists every element passed to Observe, in order.
	ObserveCalls []E

	// DisconnectCalls counts calls to Disconnect.
	DisconnectCalls int

	svc        *Service[E]
	handler    inview.Handler[E]
	thresholds []float64
	elements   []E
	closed     bool
}

// Observe watches el. Like host/dom, an observer that was disconnected
// never watches anything again.
func (o *Observer[E]) Observe(el E) {
	o.ObserveCalls = append(o.ObserveCalls, el)

	if o.closed {
		return
	}
	if !slices.Contains(o.elements, el) {
		o.elements = append(o.elements, el)
	}
	o.svc.peak = max(o.svc.peak, o.svc.Active())
}

func (o *Observer[E]) Disconnect() {
	o.DisconnectCalls++
	o.closed = true
	o.elements = nil
}

// Closed reports whether Disconnect was called.
func (o *Observer[E]) Closed() bool {
	return o.closed
}

func (o *Observer[E]) Thresholds() []float64 {
	return slices.Clone(o.thresholds)
}

// Watching reports whether el is observed and not yet disconnected.
func (o *Observer[E]) Watching(el E) bool {
	return slices.Contains(o.elements, el)
}

// Fire calls the observer's handler with rec, even after Disconnect. Use it
// to simulate a host that delivers late.
func (o *Observer[E]) Fire(rec inview.Record[E]) {
	o.handler([]inview.Record[E]{rec}, o)
}
