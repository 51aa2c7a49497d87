// Package bootstrap runs a riv process: it validates the typed config,
// sets up logging, starts registered components in order and stops them
// in reverse on exit.
//
// Run is for long-running commands such as "riv serve" and blocks until
// SIGINT, SIGTERM or context cancellation. RunTask is for finite commands
// such as "riv publish": the task context is cancelled on a signal, which
// abandons the pipeline run in progress.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(observability.NewTelemetry(cfg.Telemetry))
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := p.Run(ctx)
//	    return err
//	})
package bootstrap
