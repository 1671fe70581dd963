// Package inview tracks whether an element is visible inside a scrolling
// container and publishes that state through sig signals, so hosts can bind
// it to a component's lifetime.
package inview

import (
	"reflect"
	"slices"

	"github.com/AnatoleLucet/inview/sig"
	"go.uber.org/zap"
)

type Options[E comparable] struct {
	// Root is the scrolling container; the zero value means the viewport.
	Root E

	// RootMargin grows or shrinks the root's box, CSS margin syntax.
	RootMargin string

	// Threshold lists the visibility ratios that count as in view.
	Threshold []float64

	// DefaultInView is reported until the first notification. Read at construction only.
	DefaultInView bool

	// DisconnectOnceVisible stops observing the first time the element is in view.
	DisconnectOnceVisible bool

	// OnChange is called with every record the observer delivers.
	OnChange func(Record[E])

	// Element supplies the element up front instead of Attach.
	Element Resolver[E]
}

type State[E comparable] struct {
	Entry  *Record[E]
	InView bool
}

// Tracker watches at most one element at a time through its own observer.
//
// A Tracker is not safe for concurrent use: call it from the goroutine that
// runs the host's event loop, which is also where notifications arrive.
type Tracker[E comparable] struct {
	svc Service[E]

	cfg      ObserverConfig[E]
	once     bool
	onChange *Latest[func(Record[E])]

	observer  Observer[E]
	gen       uint64
	watched   E
	observing bool
	mounted   bool

	probed    bool
	supported bool

	// set once any element was attached, silences unresolved warnings
	attached bool

	// scope outlives host effects; binding is replaced on every rebind
	scope    *sig.Owner
	resolver Resolver[E]
	binding  *sig.Owner

	state *sig.Signal[State[E]]
}

// New creates a tracker. No observer exists until an element is attached.
//
// Called inside a sig.Owner, the tracker closes itself when the owner is disposed.
func New[E comparable](svc Service[E], opts Options[E]) *Tracker[E] {
	t := &Tracker[E]{
		svc:      svc,
		onChange: NewLatest(opts.OnChange),
		mounted:  true,
		scope:    sig.NewOwner(),
		state:    sig.NewSignal(State[E]{InView: opts.DefaultInView}),
	}
	t.cfg = observerConfig(opts)
	t.once = opts.DisconnectOnceVisible

	sig.OnCleanup(t.Close)
	t.bind(opts.Element)

	return t
}

// Attach starts watching el. Attaching the zero element does nothing, and so
// does attaching the element already being watched.
func (t *Tracker[E]) Attach(el E) {
	var zero E
	if el == zero {
		return
	}

	t.attach(el)
}

func (t *Tracker[E]) attach(el E) {
	if !t.mounted || !t.hostSupported() {
		return
	}

	if t.observing && el == t.watched {
		return
	}

	// a disconnected observer is done for good, so a new element gets a new one
	t.Disconnect()

	t.watched = el
	t.attached = true
	t.observer = t.newObserver()

	t.observing = true
	t.observer.Observe(el)
}

// Disconnect stops observing and drops the observer along with the element.
// It is a no-op when nothing is observed.
func (t *Tracker[E]) Disconnect() {
	if !t.observing {
		return
	}

	obs := t.observer

	var zero E
	t.observer = nil
	t.observing = false
	t.watched = zero

	obs.Disconnect()
}

// Update re-applies options, as a host does on every render. The change
// callback is always replaced; the observer is only rebuilt when the root,
// margin or thresholds differ, re-observing the watched element.
func (t *Tracker[E]) Update(opts Options[E]) {
	if !t.mounted {
		return
	}

	t.onChange.Update(opts.OnChange)
	t.once = opts.DisconnectOnceVisible

	if cfg := observerConfig(opts); !sameConfig(cfg, t.cfg) {
		t.cfg = cfg

		if t.observing {
			el := t.watched
			t.Disconnect()
			t.attach(el)
		}
	}

	if !sameResolver(opts.Element, t.resolver) {
		t.bind(opts.Element)
	}
}

// Close tears the tracker down: no state is published afterwards.
func (t *Tracker[E]) Close() {
	if !t.mounted {
		return
	}

	t.mounted = false
	t.Disconnect()

	t.scope.Dispose()
	t.binding = nil
}

// State returns the published state. Reading it inside a sig effect
// re-runs the effect on every change.
func (t *Tracker[E]) State() State[E] {
	return t.state.Read()
}

func (t *Tracker[E]) InView() bool {
	return t.State().InView
}

// Entry returns the last record, if any notification arrived.
func (t *Tracker[E]) Entry() (Record[E], bool) {
	s := t.State()
	if s.Entry == nil {
		return Record[E]{}, false
	}

	return *s.Entry, true
}

func (t *Tracker[E]) Observing() bool {
	return t.observing
}

func (t *Tracker[E]) hostSupported() bool {
	if !t.probed {
		t.probed = true
		t.supported = t.svc != nil && t.svc.Supported()

		if !t.supported {
			logger().Warn("inview: tracking disabled", zap.Error(ErrUnsupportedHost))
		}
	}

	return t.supported
}

func (t *Tracker[E]) newObserver() Observer[E] {
	t.gen++
	gen := t.gen

	logger().Debug("inview: creating observer",
		zap.String("rootMargin", t.cfg.RootMargin),
		zap.Float64s("threshold", t.cfg.Threshold),
	)

	return t.svc.NewObserver(func(records []Record[E], _ Observer[E]) {
		for _, rec := range records {
			t.notify(gen, rec)
		}
	}, ObserverConfig[E]{
		Root:       t.cfg.Root,
		RootMargin: t.cfg.RootMargin,
		Threshold:  slices.Clone(t.cfg.Threshold),
	})
}

func (t *Tracker[E]) notify(gen uint64, rec Record[E]) {
	// late records from a dropped observer, or for an element we moved away from
	if gen != t.gen || !t.observing || rec.Target != t.watched {
		return
	}

	inView := rec.IsIntersecting && crossed(rec.IntersectionRatio, t.observer.Thresholds())

	if inView && t.once {
		t.Disconnect()
	}

	if prev := t.state.Peek(); prev.InView != inView {
		logger().Debug("inview: visibility changed", zap.Bool("inView", inView))
	}

	if onChange := t.onChange.Read(); onChange != nil {
		onChange(rec)
	}

	if t.mounted {
		t.state.Write(State[E]{Entry: &rec, InView: inView})
	}
}

// bind watches the resolver from an effect, so a Ref that changes re-attaches.
func (t *Tracker[E]) bind(r Resolver[E]) {
	if t.binding != nil {
		t.binding.Dispose()
		t.binding = nil
	}

	t.resolver = r
	if r == nil {
		return
	}

	t.scope.Run(func() error {
		t.binding = sig.NewOwner()

		return t.binding.Run(func() error {
			sig.NewEffect(func() {
				el := r.Current()
				sig.Untrack(func() any {
					t.resolved(el)
					return nil
				})
			})

			return nil
		})
	})
}

func (t *Tracker[E]) resolved(el E) {
	var zero E
	if el != zero {
		t.attach(el)
		return
	}

	if t.mounted && !t.attached {
		logger().Warn("inview: element resolver is empty", zap.Error(ErrUnresolvedElement))
	}
}

func observerConfig[E comparable](opts Options[E]) ObserverConfig[E] {
	d := CurrentDefaults()

	cfg := ObserverConfig[E]{
		Root:       opts.Root,
		RootMargin: opts.RootMargin,
		Threshold:  d.Threshold,
	}
	if cfg.RootMargin == "" {
		cfg.RootMargin = d.RootMargin
	}
	if len(opts.Threshold) > 0 {
		cfg.Threshold = NormalizeThresholds(opts.Threshold)
	}

	return cfg
}

func sameConfig[E comparable](a, b ObserverConfig[E]) bool {
	return a.Root == b.Root &&
		a.RootMargin == b.RootMargin &&
		slices.Equal(a.Threshold, b.Threshold)
}

func sameResolver[E comparable](a, b Resolver[E]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}

	return a == b
}
