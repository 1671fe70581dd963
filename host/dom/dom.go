//go:build js && wasm

// Package dom observes DOM elements with the browser's IntersectionObserver.
package dom

import (
	"sync"
	"syscall/js"

	"github.com/AnatoleLucet/inview"
)

const (
	// handle property stored on each wrapped node, so a node always maps back
	// to the same *Element
	handleKey = "__inviewHandle"

	// milliseconds between Disconnect and releasing the Go callback
	releaseDelay = 1000
)

var (
	mu       sync.Mutex
	nextID   int
	elements = map[int]*Element{}
)

// Element is a comparable handle to a DOM node.
type Element struct {
	id    int
	Value js.Value
}

// Wrap returns the handle for v, creating it on first use. Null and
// undefined wrap to nil.
//
// Handles live in a package registry until Release. Entry targets are only
// looked up, so the registry holds exactly the nodes the caller wrapped, and
// the caller releases them once the node leaves the page.
func Wrap(v js.Value) *Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if id := v.Get(handleKey); id.Type() == js.TypeNumber {
		if el, ok := elements[id.Int()]; ok {
			return el
		}
	}

	nextID++
	el := &Element{id: nextID, Value: v}
	elements[el.id] = el
	v.Set(handleKey, el.id)

	return el
}

// lookup returns the handle already registered for v, or nil.
func lookup(v js.Value) *Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}

	id := v.Get(handleKey)
	if id.Type() != js.TypeNumber {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	return elements[id.Int()]
}

// Release forgets the handle so the node can be collected.
func Release(el *Element) {
	if el == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	delete(elements, el.id)
	el.Value.Delete(handleKey)
}

// ByID wraps document.getElementById(id).
func ByID(id string) *Element {
	return Wrap(js.Global().Get("document").Call("getElementById", id))
}

type Service struct{}

var _ inview.Service[*Element] = Service{}

// Supported probes for IntersectionObserver and entries that carry a ratio.
func (Service) Supported() bool {
	global := js.Global()

	observer := global.Get("IntersectionObserver")
	entry := global.Get("IntersectionObserverEntry")
	if observer.IsUndefined() || entry.IsUndefined() {
		return false
	}

	return js.Global().Get("Reflect").Call("has", entry.Get("prototype"), "intersectionRatio").Bool()
}

func (Service) NewObserver(h inview.Handler[*Element], cfg inview.ObserverConfig[*Element]) inview.Observer[*Element] {
	o := &observer{}

	o.callback = js.FuncOf(func(this js.Value, args []js.Value) any {
		if o.closed || len(args) == 0 {
			return nil
		}

		entries := args[0]
		records := make([]inview.Record[*Element], 0, entries.Length())
		for i := 0; i < entries.Length(); i++ {
			records = append(records, record(entries.Index(i)))
		}

		h(records, o)
		return nil
	})

	init := map[string]any{
		"rootMargin": cfg.RootMargin,
		"threshold":  thresholds(cfg.Threshold),
	}
	if cfg.Root != nil {
		init["root"] = cfg.Root.Value
	}

	o.value = js.Global().Get("IntersectionObserver").New(o.callback, init)
	return o
}

type observer struct {
	value    js.Value
	callback js.Func
	closed   bool
}

func (o *observer) Observe(el *Element) {
	if o.closed || el == nil {
		return
	}

	o.value.Call("observe", el.Value)
}

// Disconnect stops the observer for good. Pending entries are dropped, and
// the callback is released on a later task so a delivery the browser had
// already queued still lands on the closed check instead of a released func.
func (o *observer) Disconnect() {
	if o.closed {
		return
	}

	o.closed = true
	o.value.Call("takeRecords")
	o.value.Call("disconnect")

	callback := o.callback
	var release js.Func
	release = js.FuncOf(func(js.Value, []js.Value) any {
		callback.Release()
		release.Release()
		return nil
	})
	js.Global().Call("setTimeout", release, releaseDelay)
}

func (o *observer) Thresholds() []float64 {
	list := o.value.Get("thresholds")

	out := make([]float64, list.Length())
	for i := range out {
		out[i] = list.Index(i).Float()
	}

	return out
}

func thresholds(ts []float64) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

func record(entry js.Value) inview.Record[*Element] {
	return inview.Record[*Element]{
		Target:             lookup(entry.Get("target")),
		IsIntersecting:     entry.Get("isIntersecting").Bool(),
		IntersectionRatio:  entry.Get("intersectionRatio").Float(),
		Time:               entry.Get("time").Float(),
		BoundingClientRect: rect(entry.Get("boundingClientRect")),
		IntersectionRect:   rect(entry.Get("intersectionRect")),
		RootBounds:         rect(entry.Get("rootBounds")),
	}
}

// rect converts a DOMRectReadOnly; null becomes the zero rect.
func rect(v js.Value) inview.Rect {
	if v.IsNull() || v.IsUndefined() {
		return inview.Rect{}
	}

	return inview.Rect{
		X:      v.Get("x").Float(),
		Y:      v.Get("y").Float(),
		Width:  v.Get("width").Float(),
		Height: v.Get("height").Float(),
	}
}
