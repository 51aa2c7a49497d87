// Package metrics provides per-stage counters for sources, relays and sinks.
//
// Snapshots combine associatively so a driver can report one aggregate for a
// whole run:
//
//	total := metrics.Sum(src.Metrics(), sink.Metrics())
//	if rps, ok := total.RecordsPerSecond(); ok {
//	    log.Info("run finished", logger.Fields("records_per_second", rps))
//	}
package metrics
