// Package csvcore is a push-style CSV tokenizer over caller-owned buffers.
//
// The Reader never reads or allocates. Callers feed it chunks and collect
// fields into their own output and ends buffers:
//
//	r := csvcore.NewReader(csvcore.WithDelimiter(','))
//	res, nin, nout, nend := r.ReadRecord(chunk, out[outPos:], ends[endPos:])
//
// An empty input chunk signals EOF.
package csvcore
