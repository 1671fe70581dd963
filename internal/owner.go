package internal

import (
	"iter"
)

type Owner struct {
	// cleanup functions, run once on the next reset or dispose
	cleanups []func()

	// run on every Dispose call
	disposers []func()

	// panic error handlers
	catchers []func(any)

	disposed bool

	parent       *Owner
	prevSibling  *Owner
	nextSibling  *Owner
	childrenHead *Owner
}

// NewOwner creates an owner parented to the runtime's current owner, if any.
func (r *Runtime) NewOwner() *Owner {
	o := &Owner{}

	if parent := r.CurrentOwner(); parent != nil {
		parent.AddChild(o)
	}

	return o
}

func (o *Owner) Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.handle(r)
		}
	}()

	GetRuntime().tracker.RunWithOwner(o, func() { err = fn() })
	return err
}

// handle hands a recovered panic to the nearest owner with error listeners,
// re-panicking when nobody up the tree listens.
func (o *Owner) handle(r any) {
	for p := o; p != nil; p = p.parent {
		if len(p.catchers) == 0 {
			continue
		}

		for _, catcher := range p.catchers {
			catcher(r)
		}
		return
	}

	panic(r)
}

func (parent *Owner) AddChild(child *Owner) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

func (parent *Owner) removeChild(child *Owner) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else if parent.childrenHead == child {
		parent.childrenHead = child.nextSibling
	}

	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	}

	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// Children yields the most recently added child first.
func (o *Owner) Children() iter.Seq[*Owner] {
	return func(yield func(*Owner) bool) {
		child := o.childrenHead

		for child != nil {
			next := child.nextSibling
			if !yield(child) {
				return
			}

			child = next
		}
	}
}

func (o *Owner) Dispose() {
	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.reset()
	o.disposed = true

	for _, fn := range o.disposers {
		fn()
	}
}

// reset disposes the children and runs pending cleanups, keeping the owner alive.
func (o *Owner) reset() {
	o.DisposeChildren()

	cleanups := o.cleanups
	o.cleanups = nil

	for _, fn := range cleanups {
		fn()
	}
}

func (o *Owner) DisposeChildren() {
	for child := range o.Children() {
		child.Dispose()
	}
	o.childrenHead = nil
}

func (o *Owner) OnCleanup(fn func()) {
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) OnDispose(fn func()) {
	o.disposers = append(o.disposers, fn)
}

func (o *Owner) OnError(fn func(any)) {
	o.catchers = append(o.catchers, fn)
}
