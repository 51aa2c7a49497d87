// Package sink commits atoms to their destination.
//
// Every sink follows the same contract. Initialize opens the destination
// and Accept fails with INVALID_INPUT until it has succeeded. Control atoms
// are no-ops; error atoms are counted as errors and never fail the sink.
// After Close every Accept returns the same INVALID_INPUT error value.
// Close flushes what is buffered and logs secondary failures.
//
// The sinks keyed by field name (json, sqlite, relational and kafka) need a
// header row first; a data row before it is a GENERAL error.
//
//	s, err := sink.Build(sink.CsvSettings{Path: "out.csv"})
//	if err != nil {
//	    return err
//	}
//	if err := s.Initialize(ctx); err != nil {
//	    return err
//	}
//	defer s.Close(ctx)
package sink
