// Package errors provides the closed error taxonomy shared by every
// pipeline stage.
//
// All failures are reported as *AppError carrying one of six codes:
// INVALID_CONFIG, PARSE, INVALID_INPUT, IO, NOT_FOUND and GENERAL. I/O
// failures keep their IOKind so callers can tell a missing file from a
// permission problem after the error has been stored and replayed.
//
//	src, err := source.Open(path, cfg)
//	if errors.IOKindOf(err) == errors.IOKindNotFound {
//	    // ...
//	}
package errors
