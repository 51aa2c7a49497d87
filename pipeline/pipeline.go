package pipeline

import "context"

// Iterator provides pull-based sequential access to a stream of values.
// source.Iter adapts a Source to it.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Pipeline is a lazy, pull-based stream description. Each call to Iter,
// Collect or Drain builds a fresh iterator chain from it.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Runnable is a pipeline bound to a consumer, ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run pulls until the stream ends, an error occurs or ctx is done.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// ConsumerError wraps an error returned by the consumer passed to Drain or
// ForEach. Errors raised upstream, including context errors, are returned
// unwrapped.
type ConsumerError struct {
	Err error
}

func (e *ConsumerError) Error() string { return e.Err.Error() }
func (e *ConsumerError) Unwrap() error { return e.Err }

// From creates a pipeline over an existing iterator. The iterator is
// single use; building the pipeline twice yields the same iterator.
func From[T any](iter Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(context.Context) Iterator[T] { return iter },
	}
}

// FromSlice creates a pipeline yielding items in order.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(context.Context) Iterator[T] { return &sliceIter[T]{items: items} },
	}
}

// FromFunc creates a pipeline from an iterator factory.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// Drain binds p to consume. The iterator chain is closed when Run returns,
// whatever the outcome. A consume failure is returned as *ConsumerError.
func Drain[T any](p *Pipeline[T], consume func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			iter := p.create(ctx)
			defer iter.Close()
			for {
				val, ok, err := iter.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := consume(ctx, val); err != nil {
					return &ConsumerError{Err: err}
				}
			}
		},
	}
}

// Collect runs p and returns every value. On error it returns the values
// pulled so far.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	iter := p.create(ctx)
	defer iter.Close()
	var out []T
	for {
		val, ok, err := iter.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, val)
	}
}

// ForEach is Drain(p, fn).Run(ctx).
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Iter returns a fresh iterator chain. The caller must Close it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }
