package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/stoplight-backend/internal/config"
	"github.com/yungbote/stoplight-backend/internal/embedding"
	stoplighthttp "github.com/yungbote/stoplight-backend/internal/http"
	httpH "github.com/yungbote/stoplight-backend/internal/http/handlers"
	"github.com/yungbote/stoplight-backend/internal/observability"
	"github.com/yungbote/stoplight-backend/internal/platform/logger"
	"github.com/yungbote/stoplight-backend/internal/runlog"
	"github.com/yungbote/stoplight-backend/internal/sheets"
	"github.com/yungbote/stoplight-backend/internal/survey"
)

const collectorInterval = 15 * time.Second

type App struct {
	Log     *logger.Logger
	Config  *config.Config
	Metrics *observability.Metrics
	Service *survey.Service
	Server  *stoplighthttp.Server

	exec    *embedding.Executor
	ledger  *runlog.Ledger
	cancel  context.CancelFunc
	closers []func() error
}

// New wires every component from cfg. Background collectors stop when Close
// is called.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	a = &App{Log: log, Config: cfg, cancel: cancel}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if cfg.Metrics {
		a.Metrics = observability.New()
	}
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Version,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	a.closers = append(a.closers, func() error {
		flushCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return shutdownOTel(flushCtx)
	})

	store, closeStore, err := resolveStore(ctx, log, cfg.Source)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)
	reader := sheets.NewReader(store, cfg.Source.Prefix)

	reducer, err := resolveReducer(cfg.Reducer)
	if err != nil {
		return nil, err
	}
	lease, rdb, err := resolveLease(ctx, log, cfg.Lease)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, rdb.Close)
		a.Metrics.StartRedisCollector(bgCtx, log, rdb, collectorInterval)
	}
	a.exec = embedding.NewExecutor(reducer, embedding.Options{Lease: lease, Metrics: a.Metrics, Log: log})

	var runs survey.RunRecorder
	var runList httpH.RunLister
	if cfg.RunLog.Driver != "" {
		a.ledger, err = runlog.Open(cfg.RunLog.Driver, cfg.RunLog.DSN, log)
		if err != nil {
			return nil, err
		}
		a.Metrics.StartDBCollector(bgCtx, log, a.ledger.DB(), collectorInterval)
		runs, runList = a.ledger, a.ledger
	}

	a.Service = survey.NewService(survey.NewLoader(reader, a.Metrics, log), a.exec, runs, log)

	serviceName := ""
	if cfg.Tracing.Enabled {
		serviceName = cfg.Tracing.ServiceName
	}
	a.Server = stoplighthttp.NewServer(cfg.HTTP, stoplighthttp.RouterConfig{
		Log:              log,
		Metrics:          a.Metrics,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.HTTP.CORSOrigins,
		MaxRequestBytes:  cfg.HTTP.MaxRequestBytes,
		EmbeddingHandler: httpH.NewEmbeddingHandler(a.Service, cfg.Reducer.Seed),
		DatasetHandler:   httpH.NewDatasetHandler(a.Service),
		RunHandler:       httpH.NewRunHandler(runList),
		HealthHandler:    httpH.NewHealthHandler(),
	})

	log.Info("App initialized",
		"source_driver", cfg.Source.Driver,
		"reducer_engine", reducer.Name(),
		"lease_driver", cfg.Lease.Driver,
		"runlog_driver", cfg.RunLog.Driver,
		"metrics", cfg.Metrics,
		"tracing", cfg.Tracing.Enabled,
	)
	return a, nil
}

// Run serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Config.HTTP.Addr)
	return a.Server.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.exec != nil {
		a.exec.Close()
	}
	var errs []error
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil && a.Log != nil {
		a.Log.Warn("App shutdown incomplete", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
