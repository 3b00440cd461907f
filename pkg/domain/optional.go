package domain

// Optional holds a value that may be left unset. Unset fields are omitted from
// the wire form so the renderer applies its own default.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a set value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool { return o.set }

// Or returns the value or fallback when unset.
func (o Optional[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}
