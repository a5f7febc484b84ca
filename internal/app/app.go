// Package app wires the engine's components together: configuration,
// sink registry, source/parser worker pools, the admin HTTP surface, and
// the actor lifecycle that starts and drains them in order.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"wparse/internal/actor"
	"wparse/internal/adminhttp"
	"wparse/internal/backpressure"
	"wparse/internal/config"
	"wparse/internal/knowledge"
	"wparse/internal/parser"
	"wparse/internal/routing"
	"wparse/internal/routing/sinkfile"
	"wparse/internal/routing/sinkkafka"
	"wparse/internal/source"
	"wparse/internal/source/filesrc"
	"wparse/internal/tracing"
)

// App is the top-level orchestrator: load config, build the sink registry,
// source workers and parser pool, and run them under the actor lifecycle
// until a shutdown signal arrives.
type App struct {
	config *config.EngineConfig
	logger *logrus.Logger

	manager   *actor.TaskManager
	registry  *routing.Registry
	stats     *routing.StatRecord
	pool      *parser.Pool
	sampler   *backpressure.Sampler
	tracer    *tracing.Manager
	sourceOut chan *source.SourceBatch

	httpServer *http.Server

	ctx        context.Context
	cancel     context.CancelFunc
	configFile string
	wg         sync.WaitGroup
}

// Options carries the pieces of an App that aren't derivable from the
// engine config file alone: the rule bindings a deployment wants to run,
// and the HTTP listen address for the admin surface.
type Options struct {
	ConfigFile string
	Bindings   map[string]*parser.RuleBinding // sourceID -> binding
	ListenAddr string                         // admin HTTP; empty disables it
	Workers    int
}

// New loads configuration and builds every component, but does not start
// anything yet.
func New(opts Options) (*App, error) {
	cfg, err := config.LoadEngineConfig(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	ctx, cancel := context.WithCancel(context.Background())

	tracer, err := tracing.New(tracing.DefaultConfig())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	app := &App{
		config:     cfg,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		configFile: opts.ConfigFile,
		stats:      &routing.StatRecord{},
		sampler:    backpressure.NewSampler(time.Second),
		tracer:     tracer,
		sourceOut:  make(chan *source.SourceBatch, 16),
	}

	if err := app.initRegistry(); err != nil {
		cancel()
		return nil, fmt.Errorf("init sink registry: %w", err)
	}
	app.manager = actor.NewTaskManager()
	app.initParserPool(opts)
	if opts.ListenAddr != "" {
		app.initHTTPServer(opts.ListenAddr)
	}

	return app, nil
}

func (app *App) initRegistry() error {
	reg := routing.NewRegistry()

	business := &routing.SinkGroup{Name: routing.GroupDefault, Fmt: routing.FmtJSON}
	miss := &routing.SinkGroup{Name: routing.GroupMiss, Fmt: routing.FmtJSON}
	residue := &routing.SinkGroup{Name: routing.GroupResidue, Fmt: routing.FmtRaw}
	errGroup := &routing.SinkGroup{Name: routing.GroupError, Fmt: routing.FmtJSON}
	monitor := &routing.SinkGroup{Name: routing.GroupMonitor, Fmt: routing.FmtJSON}

	workRoot := app.config.General.WorkRoot
	businessSink, err := sinkfile.New(workRoot + "/business.log")
	if err != nil {
		return err
	}
	missSink, err := sinkfile.New(workRoot + "/miss.log")
	if err != nil {
		return err
	}
	residueSink, err := sinkfile.New(workRoot + "/residue.log")
	if err != nil {
		return err
	}
	errSink, err := sinkfile.New(workRoot + "/error.log")
	if err != nil {
		return err
	}
	monitorSink, err := sinkfile.New(workRoot + "/monitor.log")
	if err != nil {
		return err
	}

	business.Instances = []*routing.SinkInstance{
		routing.NewSinkInstance(routing.GroupDefault, "business-file", businessSink),
	}
	miss.Instances = []*routing.SinkInstance{
		routing.NewSinkInstance(routing.GroupMiss, "miss-file", missSink),
	}
	residue.Instances = []*routing.SinkInstance{
		routing.NewSinkInstance(routing.GroupResidue, "residue-file", residueSink),
	}
	errGroup.Instances = []*routing.SinkInstance{
		routing.NewSinkInstance(routing.GroupError, "error-file", errSink),
	}
	monitor.Instances = []*routing.SinkInstance{
		routing.NewSinkInstance(routing.GroupMonitor, "monitor-file", monitorSink),
	}

	reg.AddGroup(business)
	reg.AddGroup(miss)
	reg.AddGroup(residue)
	reg.AddGroup(errGroup)
	reg.AddGroup(monitor)

	app.registry = reg
	return nil
}

// AddKafkaSink attaches an additional Kafka-backed instance to group, for
// deployments that want business records mirrored to a topic alongside the
// file sink built by initRegistry.
func (app *App) AddKafkaSink(group string, cfg sinkkafka.Config, instanceName string) error {
	backend, err := sinkkafka.New(cfg)
	if err != nil {
		return fmt.Errorf("init kafka sink: %w", err)
	}
	g, ok := app.registry.Group(group)
	if !ok {
		return fmt.Errorf("unknown sink group %q", group)
	}
	g.Instances = append(g.Instances, routing.NewSinkInstance(group, instanceName, backend))
	return nil
}

func (app *App) initParserPool(opts Options) {
	resolve := func(sourceID string) (*parser.RuleBinding, bool) {
		b, ok := opts.Bindings[sourceID]
		return b, ok
	}
	pool := parser.NewPool(app.sourceOut, resolve, app.registry, app.stats, opts.Workers)
	pool.Tracer = app.tracer
	pool.Knowledge = NewKnowledgeCache[string, map[string]string](knowledge.DefaultCapacity)
	app.pool = pool
}

func (app *App) initHTTPServer(addr string) {
	srv := adminhttp.NewServer(adminhttp.Deps{
		Stats:   app.stats,
		Sampler: app.sampler,
		Version: "v1",
	})
	app.httpServer = &http.Server{Addr: addr, Handler: srv.Handler()}
}

// AddFileSource registers a filesrc.Connector as a source worker under the
// given sourceID, spawning its actor.Task on app.manager.Sources.
func (app *App) AddFileSource(sourceID string, conn *filesrc.Connector, occ source.Occupancy) {
	w := source.NewWorker(sourceID, conn, app.sourceOut, occ)
	app.manager.Sources.Spawn(w)
}

// NewKnowledgeCache is a convenience constructor forwarding to the
// knowledge package, kept here so deployments wiring OML record operations
// don't need a second import alongside app.
func NewKnowledgeCache[K comparable, V any](capacity int) *knowledge.Cache[K, V] {
	return knowledge.New[K, V](capacity)
}

// Start begins all components: HTTP server, parser pool, then sources, in
// that dependency order (sinks must be reachable before parsers emit, and
// parsers must be running before sources start pulling).
func (app *App) Start() error {
	app.logger.Info("starting wparse engine")

	if app.httpServer != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.logger.WithField("addr", app.httpServer.Addr).Info("starting admin http server")
			if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				app.logger.WithError(err).Error("admin http server error")
			}
		}()
	}

	go app.sampler.Run(app.ctx.Done())

	app.registry.Spawn(app.manager.Sinks)
	app.pool.Spawn(app.manager.Parsers)
	app.manager.StartAll()

	app.logger.Info("wparse engine started")
	return nil
}

// Stop drains the pipeline in source->parser->sink order and shuts down
// the HTTP server and tracer.
func (app *App) Stop() error {
	app.logger.Info("stopping wparse engine")
	app.cancel()

	app.manager.Shutdown()

	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.httpServer.Shutdown(ctx); err != nil {
			app.logger.WithError(err).Error("admin http server shutdown error")
		}
	}

	if app.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.tracer.Shutdown(ctx); err != nil {
			app.logger.WithError(err).Error("tracer shutdown error")
		}
	}

	app.wg.Wait()
	app.logger.Info("wparse engine stopped")
	return nil
}

// Run starts the engine and blocks until SIGINT/SIGTERM, then stops it.
func (app *App) Run() error {
	if err := app.Start(); err != nil {
		return err
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	app.logger.Info("shutdown signal received")
	return app.Stop()
}

// Registry exposes the sink registry for deployments that need to attach
// additional sinks before Start.
func (app *App) Registry() *routing.Registry { return app.registry }

// Stats exposes the shared StatRecord for reporting or testing.
func (app *App) Stats() *routing.StatRecord { return app.stats }
