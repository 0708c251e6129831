// Package result provides a two-state success/error container used on
// expected failure paths instead of panics or sentinel values.
package result

import "fmt"

// Void is the payload of a Result that carries no value.
type Void struct{}

// Result holds either a value (Ok) or an error (Err).
// The zero value is an Err holding the zero E; build results with Ok or Err.
type Result[T, E any] struct {
	ok    bool
	value T
	err   E
}

// Ok creates a successful result.
func Ok[T, E any](value T) Result[T, E] {
	return Result[T, E]{ok: true, value: value}
}

// OkVoid creates a successful result without a payload.
func OkVoid[E any]() Result[Void, E] {
	return Ok[Void, E](Void{})
}

// Err creates a failed result.
func Err[T, E any](err E) Result[T, E] {
	return Result[T, E]{err: err}
}

// IsOk reports whether the result holds a value.
func (r Result[T, E]) IsOk() bool {
	return r.ok
}

// IsErr reports whether the result holds an error.
func (r Result[T, E]) IsErr() bool {
	return !r.ok
}

// Unwrap returns the value of an Ok result.
// Calling it on an Err result is a programming error and panics with *MisuseError.
func (r Result[T, E]) Unwrap() T {
	if r.ok {
		return r.value
	}
	panic(&MisuseError{Message: stringify(r.err)})
}

// UnwrapOr returns the value of an Ok result, or def when the result is Err.
func (r Result[T, E]) UnwrapOr(def T) T {
	if r.ok {
		return r.value
	}
	return def
}

// UnwrapErr returns the error of an Err result.
// Calling it on an Ok result is a programming error and panics with *MisuseError.
func (r Result[T, E]) UnwrapErr() E {
	if !r.ok {
		return r.err
	}
	panic(&MisuseError{Message: "called UnwrapErr on an Ok value"})
}

// Transform maps the value of an Ok result and passes Err through unchanged.
func Transform[T, U, E any](r Result[T, E], fn func(T) U) Result[U, E] {
	if r.ok {
		return Ok[U, E](fn(r.value))
	}
	return Err[U](r.err)
}

// TransformErr maps the error of an Err result and passes Ok through unchanged.
func TransformErr[T, E, F any](r Result[T, E], fn func(E) F) Result[T, F] {
	if r.ok {
		return Ok[T, F](r.value)
	}
	return Err[T](fn(r.err))
}

// MisuseError is the panic value raised when a Result is unwrapped on the wrong side.
type MisuseError struct {
	Message string
}

func (e *MisuseError) Error() string {
	return e.Message
}

func stringify(v any) string {
	switch x := v.(type) {
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
