package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/bootstrap"
	"github.com/kbukum/riv/engine"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/observability"
	"github.com/kbukum/riv/server"
	"github.com/kbukum/riv/sink"
	"github.com/kbukum/riv/version"
)

var errHelp = pflag.ErrHelp

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func isUsage(err error) bool {
	var u usageError
	return stderrors.As(err, &u)
}

// pipelineDefaults keep one-shot commands quiet on stderr unless asked.
var pipelineDefaults = map[string]any{
	"logging.level":     "warn",
	"source.delimiter":  ";",
	"source.has_header": true,
}

// setup parses the flags of a pipeline command, loads the config and
// builds the app with a telemetry component registered.
func setup(name string, args []string, stderr io.Writer) (*bootstrap.App[*cliConfig], *observability.Telemetry, bool, error) {
	fs := pflag.NewFlagSet("riv "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf commonFlags
	addCommonFlags(fs, &cf)
	addPipelineFlags(fs)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, nil, false, err
		}
		return nil, nil, false, usageError{err.Error()}
	}
	if fs.NArg() > 1 {
		return nil, nil, false, usageError{"expected one input path, got " + strconv.Itoa(fs.NArg())}
	}

	cfg, err := loadConfig(fs, cf, pipelineDefaults)
	if err != nil {
		return nil, nil, false, errors.InvalidConfig("config", err.Error()).WithCause(err)
	}
	if fs.NArg() == 1 {
		cfg.Source.Path = fs.Arg(0)
	}
	if cfg.Source.Path == "" {
		return nil, nil, false, usageError{"missing input path"}
	}
	cfg.needsPipeline = true

	app, err := bootstrap.NewApp(cfg, bootstrap.WithQuiet(), bootstrap.WithSummaryOutput(stderr))
	if err != nil {
		return nil, nil, false, err
	}
	tel := observability.NewTelemetry(cfg.Telemetry)
	if err := app.RegisterComponent(tel); err != nil {
		return nil, nil, false, err
	}
	return app, tel, cf.quiet, nil
}

// runParse builds the pipeline from the config, relays included, and
// streams the file into the configured sink. The console sink prints to
// stdout.
func runParse(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	app, tel, quiet, err := setup("parse", args, stderr)
	if err != nil {
		return err
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		p, err := engine.FromConfig(app.Cfg.Config,
			engine.WithLogger(app.Logger),
			engine.WithTelemetryComponent(tel),
			engine.WithSinkOptions(sink.WithOutput(stdout)),
		)
		if err != nil {
			return err
		}
		res, err := p.Run(ctx)
		if !quiet {
			report(stderr, res)
		}
		if err != nil {
			return err
		}
		return incomplete(res)
	})
}

// runAnalyze counts atoms by type and prints the table to stdout.
func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	app, tel, quiet, err := setup("analyze", args, stderr)
	if err != nil {
		return err
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		done, err := runWorker(ctx, app, tel, engine.Analyze{Path: app.Cfg.Source.Path})
		if err != nil {
			return err
		}
		printCounts(stdout, done.Counts)
		if !quiet {
			report(stderr, done.Result)
		}
		return incomplete(done.Result)
	})
}

// runPublish writes the file into the configured sink, which must be a
// durable one.
func runPublish(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	app, tel, quiet, err := setup("publish", args, stderr)
	if err != nil {
		return err
	}
	settings, err := app.Cfg.Sink.Settings()
	if err != nil {
		return err
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		done, err := runWorker(ctx, app, tel, engine.Publish{Path: app.Cfg.Source.Path, Sink: settings})
		if !quiet && done != nil {
			report(stderr, done.Result)
		}
		if err != nil {
			return err
		}
		return incomplete(done.Result)
	})
}

// runWorker runs cmd on a worker bound to ctx, so a signal abandons the
// run. Progress snapshots go to the log.
func runWorker(ctx context.Context, app *bootstrap.App[*cliConfig], tel *observability.Telemetry, cmd engine.Command) (*engine.DoneEvent, error) {
	w := engine.NewWorker(
		engine.WithSourceTemplate(app.Cfg.Source),
		engine.WithMetricsEvery(app.Cfg.Worker.MetricsEvery),
		engine.WithPipelineOptions(engine.WithLogger(app.Logger), engine.WithTelemetryComponent(tel)),
	)
	go w.Run(ctx)
	defer func() {
		select {
		case w.Commands() <- engine.Quit{}:
		case <-w.Done():
		}
	}()

	select {
	case w.Commands() <- cmd:
	case <-w.Done():
		return nil, errors.IO(errors.IOKindInterrupted, "run abandoned")
	}

	var runErr error
	for ev := range w.Events() {
		switch e := ev.(type) {
		case engine.MetricsEvent:
			app.Logger.Info("progress", logger.Fields(
				logger.FieldRecords, e.Metrics.RecordCount,
				logger.FieldBytes, e.Metrics.HumanBytes(),
			))
		case engine.ErrorEvent:
			if e.Final {
				return nil, e.Err
			}
			runErr = e.Err
		case engine.DoneEvent:
			return &e, runErr
		}
	}
	return nil, errors.IO(errors.IOKindInterrupted, "run abandoned")
}

// incomplete turns a run that ended without error but did not complete
// into an error for the exit code.
func incomplete(res engine.Result) error {
	switch {
	case res.Completed:
		return nil
	case res.Abandoned:
		return errors.IO(errors.IOKindInterrupted, "run abandoned")
	case len(res.RelayFailures) > 0:
		return errors.Generalf("relay finish failed at positions %v", res.RelayFailures)
	default:
		return errors.General("run did not complete")
	}
}

// report prints one summary line for a run.
func report(w io.Writer, res engine.Result) {
	m := res.Metrics
	fmt.Fprintf(w, "%s: %s records, %s written in %s\n",
		res.Status(),
		humanize.Comma(int64(m.Sink.RecordCount)),
		m.Sink.HumanBytes(),
		m.Total.Duration.Round(time.Microsecond),
	)
	if m.Total.ErrorCount > 0 {
		fmt.Fprintf(w, "%s errors\n", humanize.Comma(int64(m.Total.ErrorCount)))
	}
}

func printCounts(w io.Writer, counts map[atom.Type]uint64) {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	fmt.Fprintf(w, "%-12s %12s\n", "type", "count")
	for _, t := range types {
		fmt.Fprintf(w, "%-12s %12s\n", t, humanize.Comma(int64(counts[atom.Type(t)])))
	}
}

// runServe starts the telemetry exporters, the pipeline worker and the
// HTTP server, and blocks until a signal.
func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("riv serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var cf commonFlags
	addCommonFlags(fs, &cf)
	addServeFlags(fs)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return err
		}
		return usageError{err.Error()}
	}

	cfg, err := loadConfig(fs, cf, map[string]any{"source.delimiter": ";", "source.has_header": true})
	if err != nil {
		return errors.InvalidConfig("config", err.Error()).WithCause(err)
	}
	opts := []bootstrap.Option{bootstrap.WithSummaryOutput(stderr)}
	if cf.quiet {
		opts = append(opts, bootstrap.WithQuiet())
	}
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return err
	}

	tel := observability.NewTelemetry(cfg.Telemetry)
	worker := engine.NewWorkerComponent(engine.NewWorker(
		engine.WithSourceTemplate(cfg.Source),
		engine.WithMetricsEvery(cfg.Worker.MetricsEvery),
		engine.WithPipelineOptions(engine.WithLogger(app.Logger), engine.WithTelemetryComponent(tel)),
	))
	srv := server.New(cfg.Server, app.Logger)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)
	srv.RegisterRuns(worker.Worker())

	if err := app.RegisterComponent(tel); err != nil {
		return err
	}
	if err := app.RegisterComponent(worker); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}
	return app.Run(ctx)
}

func runVersion(stdout io.Writer) error {
	_, err := fmt.Fprintln(stdout, version.String())
	return err
}
