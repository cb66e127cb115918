package helpers

type Optional[T any] struct {
	_hasValue bool
	_t        T
}

func Some[T any](t T) Optional[T] {
	return Optional[T]{true, t}
}

func Empty[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) IsEmpty() bool {
	return !o._hasValue
}

func (o Optional[T]) HasValue() bool {
	return !o.IsEmpty()
}

func (o Optional[T]) Value() T {
	return o._t
}

// ValueOr returns the held value, or fallback when the optional is empty.
func (o Optional[T]) ValueOr(fallback T) T {
	if o.IsEmpty() {
		return fallback
	}
	return o._t
}
