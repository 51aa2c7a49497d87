// Package engine drives pipelines.
//
// A Pipeline pulls atoms from one source, threads each through the relay
// chain and hands survivors to the sink, one atom at a time. A run ends
// with the source closed, every relay finished and the sink closed, in
// that order, whatever happened before.
//
//	p, err := engine.FromConfig(cfg, engine.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	res, err := p.Run(ctx)
//
// Worker runs pipelines on a dedicated goroutine behind a command channel
// and an event channel, for front ends that must not block on I/O.
package engine
