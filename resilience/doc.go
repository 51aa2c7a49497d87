// Package resilience retries operations that fail transiently.
//
// The database sink and the message-queue producer use it to ride out
// brief outages while connecting and writing:
//
//	db, err := resilience.Retry(ctx, resilience.Policy{Attempts: 5, Backoff: time.Second},
//	    func(ctx context.Context) (*gorm.DB, error) { return connect(ctx) })
package resilience
