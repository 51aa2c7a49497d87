// Package source turns input files and in-memory streams into atoms.
//
// Every source is Ready after construction and moves to Completed on
// natural exhaustion or to Broken after a mid-stream failure. A broken
// source emits exactly one ErrorAtom and Close reports the same error:
//
//	src, err := source.Open(source.DefaultConfig("people.csv"))
//	if err != nil {
//	    return err
//	}
//	for a, ok := src.Next(); ok; a, ok = src.Next() {
//	    handle(a)
//	}
//	completed, err := src.Close()
package source
