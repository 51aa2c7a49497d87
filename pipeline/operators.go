package pipeline

import "context"

// Map transforms each value using fn. An fn error ends the stream.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return FilterMap(p, func(ctx context.Context, v I) (O, bool, error) {
		out, err := fn(ctx, v)
		return out, err == nil, err
	})
}

// FilterMap transforms each value using fn and drops the ones for which fn
// reports false. Relay chains are wired through it.
func FilterMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, bool, error)) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &filterMapIter[I, O]{source: p.create(ctx), fn: fn}
		},
	}
}

// Filter keeps only values that satisfy keep.
func Filter[T any](p *Pipeline[T], keep func(T) bool) *Pipeline[T] {
	return FilterMap(p, func(_ context.Context, v T) (T, bool, error) {
		return v, keep(v), nil
	})
}

// Tap calls fn for each value and passes the value through unchanged.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return FilterMap(p, func(ctx context.Context, v T) (T, bool, error) {
		if err := fn(ctx, v); err != nil {
			return v, false, err
		}
		return v, true, nil
	})
}

// Concat joins pipelines sequentially. Closing the result closes every
// part and returns the first close error.
func Concat[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			iters := make([]Iterator[T], len(pipelines))
			for i, p := range pipelines {
				iters[i] = p.create(ctx)
			}
			return &concatIter[T]{iters: iters}
		},
	}
}

type filterMapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, bool, error)
}

func (it *filterMapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		out, keep, err := it.fn(ctx, val)
		if err != nil {
			return zero, false, err
		}
		if keep {
			return out, true, nil
		}
	}
}

func (it *filterMapIter[I, O]) Close() error { return it.source.Close() }

type concatIter[T any] struct {
	iters []Iterator[T]
	index int
}

func (it *concatIter[T]) Next(ctx context.Context) (T, bool, error) {
	for it.index < len(it.iters) {
		val, ok, err := it.iters[it.index].Next(ctx)
		if err != nil {
			return val, false, err
		}
		if ok {
			return val, true, nil
		}
		it.index++
	}
	var zero T
	return zero, false, nil
}

func (it *concatIter[T]) Close() error {
	var first error
	for _, iter := range it.iters {
		if err := iter.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
