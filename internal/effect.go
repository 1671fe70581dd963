package internal

import "slices"

type Effect struct {
	*Owner

	fn func()

	// signals read during the last run
	deps []*Signal

	queued bool
}

func (r *Runtime) NewEffect(fn func()) *Effect {
	e := &Effect{
		Owner: r.NewOwner(),
		fn:    fn,
	}

	e.OnDispose(e.clearDeps)

	e.run()

	return e
}

func (e *Effect) run() {
	e.queued = false
	if e.disposed {
		return
	}

	// drop the previous run's children, cleanups and subscriptions
	e.reset()
	e.clearDeps()

	defer func() {
		if r := recover(); r != nil {
			e.handle(r)
		}
	}()

	GetRuntime().tracker.RunWithEffect(e, e.fn)
}

func (e *Effect) link(s *Signal) {
	if slices.Contains(e.deps, s) {
		return
	}

	e.deps = append(e.deps, s)
	s.subscribe(e)
}

func (e *Effect) clearDeps() {
	deps := e.deps
	e.deps = nil

	for _, s := range deps {
		s.unsubscribe(e)
	}
}
