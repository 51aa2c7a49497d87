// Package database opens gorm connections for the relational sinks.
//
// One Config covers sqlite, mysql and postgres. Open retries the initial
// connection with a linear backoff, routes gorm's own logging through the
// riv logger and, when Tracing is set, installs the OpenTelemetry gorm
// plugin so every statement becomes a span.
//
//	db, err := database.Open(ctx, database.Config{Driver: "sqlite", Database: "out.db"}, log)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	cols := database.ColumnNames(header)
//	err = db.CreateTextTable(ctx, "people", cols)
//
// Errors are AppErrors; FromDatabase maps driver failures onto the riv codes.
package database
