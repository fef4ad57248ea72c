// Package stream is a tiny pull-based iterator toolkit
//
// A Source yields one item per Next call and returns io.EOF once exhausted.
// Stages are single pass, keep at most one item in flight, and never reorder.
// Errors are sticky: after a non-EOF error every later call returns it again.
package stream

import (
	"errors"
	"io"
)

// Source produces items on demand; io.EOF signals the end
type Source[T any] interface {
	Next() (T, error)
}

// Func adapts a plain function to Source
type Func[T any] func() (T, error)

// Next calls f
func (f Func[T]) Next() (T, error) { return f() }

// Slice yields the items of s in order
func Slice[T any](s []T) Source[T] {
	i := 0
	return Func[T](func() (T, error) {
		if i >= len(s) {
			var zero T
			return zero, io.EOF
		}
		v := s[i]
		i++
		return v, nil
	})
}

// Filter yields only items for which keep returns true
func Filter[T any](src Source[T], keep func(T) bool) Source[T] {
	return Where(src, func(v T) (bool, error) { return keep(v), nil })
}

// Where is Filter for a predicate that can fail; its error ends the stream
func Where[T any](src Source[T], keep func(T) (bool, error)) Source[T] {
	return &filterSource[T]{src: src, keep: keep}
}

type filterSource[T any] struct {
	src  Source[T]
	keep func(T) (bool, error)
	err  error
}

func (f *filterSource[T]) Next() (T, error) {
	var zero T
	if f.err != nil {
		return zero, f.err
	}
	for {
		v, err := f.src.Next()
		if err != nil {
			f.err = err
			return zero, err
		}
		ok, err := f.keep(v)
		if err != nil {
			f.err = err
			return zero, err
		}
		if ok {
			return v, nil
		}
	}
}

// Map converts each item with fn; the first error aborts the stream
func Map[I, O any](src Source[I], fn func(I) (O, error)) Source[O] {
	return &mapSource[I, O]{src: src, fn: fn}
}

type mapSource[I, O any] struct {
	src Source[I]
	fn  func(I) (O, error)
	err error
}

func (m *mapSource[I, O]) Next() (O, error) {
	var zero O
	if m.err != nil {
		return zero, m.err
	}
	v, err := m.src.Next()
	if err != nil {
		m.err = err
		return zero, err
	}
	out, err := m.fn(v)
	if err != nil {
		m.err = err
		return zero, err
	}
	return out, nil
}

// Limit stops after n items; n <= 0 means no limit
func Limit[T any](src Source[T], n int) Source[T] {
	if n <= 0 {
		return src
	}
	seen := 0
	return Func[T](func() (T, error) {
		if seen >= n {
			var zero T
			return zero, io.EOF
		}
		v, err := src.Next()
		if err == nil {
			seen++
		}
		return v, err
	})
}

// Each calls fn for every item until the source ends or fn fails
// io.EOF is not reported as an error
func Each[T any](src Source[T], fn func(T) error) error {
	for {
		v, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// Collect drains src into a slice
func Collect[T any](src Source[T]) ([]T, error) {
	var out []T
	err := Each(src, func(v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// Batch groups items into slices of up to size and hands each to fn
// The last batch may be short; the slice passed to fn is reused between calls
func Batch[T any](src Source[T], size int, fn func([]T) error) error {
	if size <= 0 {
		size = 1
	}
	buf := make([]T, 0, size)
	err := Each(src, func(v T) error {
		buf = append(buf, v)
		if len(buf) < size {
			return nil
		}
		err := fn(buf)
		buf = buf[:0]
		return err
	})
	if err != nil {
		return err
	}
	if len(buf) > 0 {
		return fn(buf)
	}
	return nil
}
