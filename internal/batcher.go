package internal

type Batcher struct {
	// each nested batch increases the depth by 1
	// if depth > 0, effects are queued until the outermost batch is complete
	depth int
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth: 0,
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

func (b *Batcher) Batch(fn, onComplete func()) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth == 0 && onComplete != nil {
			onComplete()
		}
	}()

	fn()
}

func (r *Runtime) NewBatch(fn func()) {
	r.batcher.Batch(fn, r.flush)
}

type EffectQueue struct {
	effects []*Effect
}

func NewEffectQueue() *EffectQueue {
	return &EffectQueue{
		effects: make([]*Effect, 0),
	}
}

func (q *EffectQueue) Enqueue(e *Effect) {
	if e.queued {
		return
	}

	e.queued = true
	q.effects = append(q.effects, e)
}

// Drain runs queued effects in order, including any queued while draining.
func (q *EffectQueue) Drain(run func(*Effect)) {
	for len(q.effects) > 0 {
		effects := q.effects
		q.effects = make([]*Effect, 0)

		for _, e := range effects {
			run(e)
		}
	}
}
