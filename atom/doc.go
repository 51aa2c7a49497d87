// Package atom defines the stream elements exchanged between sources,
// relays and sinks.
//
// Atoms fall into three kinds:
//
//   - Control: StartTask, FinishTask, ErrorAtom
//   - Data: ByteRowAtom, StringRowAtom, NameValuesAtom
//   - Metadata: HeaderRow, Comment, BlankLine
//
// Rows store all fields in one buffer with a table of cumulative end
// offsets, so a record costs two allocations regardless of its width.
package atom
