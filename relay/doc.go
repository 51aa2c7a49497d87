// Package relay provides in-stream processors that sit between a source and
// a sink. Relays run in order and a drop ends the chain for that atom.
package relay
