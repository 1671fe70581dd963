package internal

type Runtime struct {
	tracker *Tracker
	batcher *Batcher
	queue   *EffectQueue
}

func NewRuntime() *Runtime {
	return &Runtime{
		tracker: NewTracker(),
		batcher: NewBatcher(),
		queue:   NewEffectQueue(),
	}
}

func (r *Runtime) CurrentOwner() *Owner {
	return r.tracker.CurrentOwner()
}

func (r *Runtime) OnCleanup(fn func()) {
	owner := r.CurrentOwner()
	if owner != nil {
		owner.OnCleanup(fn)
	}
}

func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

// schedule runs the effect now, or queues it until the outermost batch completes.
func (r *Runtime) schedule(e *Effect) {
	if r.batcher.IsBatching() {
		r.queue.Enqueue(e)
		return
	}

	e.run()
}

func (r *Runtime) flush() {
	r.queue.Drain(func(e *Effect) { e.run() })
}
