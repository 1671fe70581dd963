package inview

import "github.com/AnatoleLucet/inview/sig"

// Resolver yields the element a tracker should watch when the host supplies
// it up front instead of calling Attach.
type Resolver[E comparable] interface {
	Current() E
}

type fixed[E comparable] struct{ el E }

func (f fixed[E]) Current() E { return f.el }

// Fixed resolves to the same element forever.
func Fixed[E comparable](el E) Resolver[E] {
	return fixed[E]{el}
}

// Ref is a mutable element reference. Setting it re-binds any tracker
// that was given the ref as its element.
type Ref[E comparable] struct {
	value *sig.Signal[E]
}

func NewRef[E comparable]() *Ref[E] {
	var zero E
	return &Ref[E]{value: sig.NewSignal(zero)}
}

// Current returns the referenced element, the zero value until Set.
func (r *Ref[E]) Current() E {
	return r.value.Read()
}

func (r *Ref[E]) Set(el E) {
	r.value.Write(el)
}

