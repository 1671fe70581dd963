package inview

// Service is the host's intersection observation capability. In a browser it
// wraps IntersectionObserver (see host/dom); tests use inviewtest.Service.
type Service[E comparable] interface {
	// Supported reports whether the host can observe intersections at all.
	Supported() bool

	// NewObserver creates an observer that reports to h using cfg.
	NewObserver(h Handler[E], cfg ObserverConfig[E]) Observer[E]
}

// Observer is one live observation instance.
type Observer[E comparable] interface {
	// Observe starts watching the element.
	Observe(el E)

	// Disconnect stops watching every element and retires the observer:
	// later Observe calls do nothing. The handler must not be called for
	// this observer afterwards.
	Disconnect()

	// Thresholds returns the normalised thresholds in effect, ascending.
	Thresholds() []float64
}

// Handler receives the records an observer produced, in delivery order.
type Handler[E comparable] func(records []Record[E], obs Observer[E])

type ObserverConfig[E comparable] struct {
	// Root is the scrolling container; the zero value means the viewport.
	Root       E
	RootMargin string
	Threshold  []float64
}

// Record describes one element's intersection with the root at a point in time.
type Record[E comparable] struct {
	Target            E
	IsIntersecting    bool
	IntersectionRatio float64

	// Time is the host's timestamp for the change, in milliseconds.
	Time float64

	BoundingClientRect Rect
	IntersectionRect   Rect
	RootBounds         Rect
}

type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) Top() float64    { return min(r.Y, r.Y+r.Height) }
func (r Rect) Bottom() float64 { return max(r.Y, r.Y+r.Height) }
func (r Rect) Left() float64   { return min(r.X, r.X+r.Width) }
func (r Rect) Right() float64  { return max(r.X, r.X+r.Width) }

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}
