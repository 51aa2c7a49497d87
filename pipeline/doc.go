// Package pipeline provides pull-based iterator composition.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain or ForEach. Each stage pulls from the previous one on demand, so a
// slow consumer holds back the producer without any explicit flow control.
// Everything runs on the calling goroutine.
//
// Operators:
//
//   - Map: transform each value
//   - FilterMap: transform each value or drop it
//   - Filter: keep values matching a predicate
//   - Tap: side effect without altering the value
//   - Concat: join pipelines sequentially
//
// The engine builds one pipeline per run:
//
//	stream := pipeline.Concat(
//	    pipeline.FromSlice(prologue),
//	    pipeline.From(source.Iter(src)),
//	    pipeline.FromSlice(epilogue),
//	)
//	relayed := pipeline.FilterMap(stream, chain)
//	err := pipeline.Drain(relayed, sink.Accept).Run(ctx)
package pipeline
