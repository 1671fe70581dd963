package internal

type Tracker struct {
	tracking bool

	currentOwner  *Owner  // for lifecycle/cleanup tracking
	currentEffect *Effect // for reactive dependency tracking
}

func NewTracker() *Tracker {
	return &Tracker{
		tracking: true,
	}
}

func (t *Tracker) CurrentOwner() *Owner {
	return t.currentOwner
}

func (t *Tracker) RunWithOwner(owner *Owner, fn func()) {
	prev := t.currentOwner
	t.currentOwner = owner
	defer func() { t.currentOwner = prev }()

	fn()
}

func (t *Tracker) RunWithEffect(e *Effect, fn func()) {
	prevOwner := t.currentOwner
	prevEffect := t.currentEffect
	prevTracking := t.tracking

	t.currentOwner = e.Owner
	t.currentEffect = e
	t.tracking = true

	defer func() {
		t.currentOwner = prevOwner
		t.currentEffect = prevEffect
		t.tracking = prevTracking
	}()

	fn()
}

func (t *Tracker) RunUntracked(fn func()) {
	prev := t.tracking
	t.tracking = false
	defer func() { t.tracking = prev }()

	fn()
}

// Track links the running effect to the signal being read.
func (t *Tracker) Track(s *Signal) {
	if t.ShouldTrack() {
		t.currentEffect.link(s)
	}
}

func (t *Tracker) ShouldTrack() bool {
	return t.currentEffect != nil && t.tracking
}
