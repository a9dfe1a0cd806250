package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kbukum/lambdacontainer/component"
	"github.com/kbukum/lambdacontainer/config"
	"github.com/kbukum/lambdacontainer/di"
	"github.com/kbukum/lambdacontainer/logger"
	"github.com/kbukum/lambdacontainer/observability"
)

// App represents an application whose services come from a DI container.
// The type parameter C is the config type; any struct embedding
// config.ServiceConfig satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg,
//	    bootstrap.WithRegistries(&orders.Registry{}),
//	    bootstrap.WithRegistryTypes(bootstrap.RegistryType[*billing.Registry]()),
//	)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    svc, err := di.Resolve[orders.Service](a.Container)
//	    ...
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Container  *di.Container
	Catalog    *Catalog
	Report     *Report
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	bootID          string
	gracefulTimeout time.Duration
	metrics         *observability.ResolutionMetrics
	telemetry       []func(ctx context.Context) error
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and
// creates the container from the config's container section.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Catalog:         NewCatalog().Add(o.registries...).AddType(o.registryTypes...),
		Components:      component.NewRegistry(),
		bootID:          uuid.NewString(),
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	// diagnostics.NewRegistry falls back to this when given no logger.
	logger.Register("diagnostics", app.Logger.WithComponent("diagnostics"))

	containerOpts := []di.Option{di.FromConfig(base.Container), di.WithLogger(app.Logger)}
	observer, err := app.observer(base.Container)
	if err != nil {
		return nil, err
	}
	if observer != nil {
		containerOpts = append(containerOpts, di.WithObserver(observer))
	}
	app.Container = di.New(append(containerOpts, o.containerOpts...)...)

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// observer builds the resolution observer on the global providers, which
// delegate to the ones installed later by initTelemetry.
func (a *App[C]) observer(cfg config.ContainerConfig) (di.Observer, error) {
	if !cfg.Tracing && !cfg.Metrics {
		return nil, nil
	}
	var opts []observability.ObserverOption
	if cfg.Tracing {
		opts = append(opts, observability.WithTracer(observability.Tracer()))
	}
	if cfg.Metrics {
		m, err := observability.NewResolutionMetrics(observability.Meter())
		if err != nil {
			return nil, fmt.Errorf("resolution metrics: %w", err)
		}
		a.metrics = m
		opts = append(opts, observability.WithMetrics(m))
	}
	return observability.NewResolutionObserver(opts...), nil
}

// BootID identifies this application run in logs and reports.
func (a *App[C]) BootID() string { return a.bootID }

// Register adds registry instances. It has no effect after Boot.
func (a *App[C]) Register(registries ...di.Registry) {
	a.Catalog.Add(registries...)
}

// RegisterType adds registry types, constructed at boot.
func (a *App[C]) RegisterType(types ...reflect.Type) {
	a.Catalog.AddType(types...)
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback to run during the configure phase, after
// the container has booted and components have started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Boot discovers the catalog's registries and boots the container with
// them. The container then joins the component registry, followed by every
// component it registers. Boot runs once; later calls return nil.
func (a *App[C]) Boot(ctx context.Context) (err error) {
	if a.Report != nil {
		return nil
	}
	start := time.Now()
	ctx = logger.ContextWithBootID(ctx, a.bootID)
	log := a.Logger.WithContext(ctx)

	ctx, span := observability.StartSpan(ctx, observability.SpanBoot)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	base := a.Cfg.GetServiceConfig()
	boot := di.New(
		di.FromConfig(base.Container),
		di.WithDuplicatePolicy(di.DuplicateOverwrite),
		di.WithLogger(a.Logger),
	)
	if err := boot.Boot(bootRegistry[C]{app: a}); err != nil {
		return fmt.Errorf("bootstrap container: %w", err)
	}
	defer boot.Close()

	registries, report := a.Catalog.Discover(ctx, boot, base.Container, log)
	report.BootID = a.bootID

	if err := a.Container.Boot(registries...); err != nil {
		return fmt.Errorf("container boot: %w", err)
	}
	report.Registrations = a.Container.Len()
	report.Duration = time.Since(start)
	a.Report = report

	span.SetAttributes(
		attribute.Int(observability.AttrCount, report.Registrations),
		attribute.StringSlice(observability.AttrRegistry, report.Recorded),
	)
	if a.metrics != nil {
		a.metrics.RecordRegistrations(ctx, report.Registrations)
	}

	if err := a.Components.Register(&containerComponent{container: a.Container}); err != nil {
		return err
	}
	n, err := a.Components.RegisterFrom(a.Container)
	if err != nil {
		return fmt.Errorf("container components: %w", err)
	}

	log.Info("container booted", logger.Fields(
		logger.FieldCount, report.Registrations,
		"registries", len(report.Recorded),
		"skipped", len(report.Skipped),
		"components", n,
		logger.FieldDuration, report.Duration.Milliseconds(),
	))
	return nil
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full lifecycle of a long-running service:
// Telemetry, Boot, Start, OnStart hooks, Configure, ReadyCheck, OnReady
// hooks, then block on signal, OnStop hooks and graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle. It does
// not block on shutdown signals; a signal cancels the task's context and
// the application shuts down when the task returns.
//
//	app, _ := bootstrap.NewApp(&cfg, bootstrap.WithRegistries(jobs.Registry{}))
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    job, err := di.Resolve[jobs.Job](app.Container)
//	    ...
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		logger.FieldBootID, a.bootID,
	))

	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	if err := a.Boot(ctx); err != nil {
		return fmt.Errorf("boot failed: %w", err)
	}

	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// initTelemetry installs the OTLP providers the container config asks for.
func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()
	if base.Container.Tracing {
		tc := observability.DefaultTracerConfig(base.Name)
		tc.ServiceVersion = base.Version
		tc.Environment = base.Environment
		tp, err := observability.InitTracer(ctx, tc)
		if err != nil {
			return err
		}
		a.telemetry = append(a.telemetry, tp.Shutdown)
	}
	if base.Container.Metrics {
		mc := observability.DefaultMeterConfig(base.Name)
		mc.ServiceVersion = base.Version
		mc.Environment = base.Environment
		mp, err := observability.InitMeter(ctx, mc)
		if err != nil {
			return err
		}
		a.telemetry = append(a.telemetry, mp.Shutdown)
	}
	return nil
}

func (a *App[C]) initialize(ctx context.Context) error {
	a.Logger.Info("Starting components")

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	a.Logger.Info("All components started")
	return nil
}

// DisplaySummary prints the startup summary, collecting infrastructure,
// routes and health from the component registry and the boot report.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Components, a.Report)
}

func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Running configuration callbacks", logger.Fields(logger.FieldCount, len(a.onConfigure)))

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs OnStop hooks, stops components in reverse order, closes the
// container and flushes telemetry, all within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("on_stop", err))
		errs = append(errs, err)
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("stop_components", err))
		errs = append(errs, err)
	}

	// The container component closed it already when the app booted.
	if a.Report == nil {
		if err := a.Container.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, shutdown := range a.telemetry {
		if err := shutdown(ctx); err != nil {
			a.Logger.Warn("Telemetry shutdown error", logger.ErrorFields("telemetry", err))
		}
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}

// bootRegistry registers what registry types may depend on: the app config,
// the service config, the container config and the logger.
type bootRegistry[C Config] struct {
	app *App[C]
}

func (r bootRegistry[C]) WriteContentsTo(rec *di.Recorder) {
	base := r.app.Cfg.GetServiceConfig()
	di.Record(rec, func(b *di.RegistrationsBuilder[di.FactoryRegistrations]) {
		b.Build().
			Register(di.Value(r.app.Cfg)).
			Register(di.Value(base)).
			Register(di.Value(base.Container)).
			Register(di.Value(r.app.Logger))
	})
}
