package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"os"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/brands"
	"github.com/carcatalog/catalog/cars"
	"github.com/carcatalog/catalog/http"
	"github.com/carcatalog/catalog/kit/tracing"
	"github.com/carcatalog/catalog/logger"
	"github.com/carcatalog/catalog/sqlstore"
	"github.com/carcatalog/catalog/sqlstore/migrations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalogd"

// Launcher represents the main program execution.
type Launcher struct {
	log *zap.Logger
	reg *prometheus.Registry

	store         *sqlstore.SqlStore
	tracingCloser io.Closer

	brandService catalog.BrandService
	carService   catalog.CarService

	group      *errgroup.Group
	done       context.Context
	httpServer *nethttp.Server
	httpPort   int

	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher returns a new instance of Launcher connected to standard out/err.
func NewLauncher() *Launcher {
	return &Launcher{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Logger returns the launcher's logger.
func (m *Launcher) Logger() *zap.Logger {
	return m.log
}

// Registry returns the prometheus metrics registry.
func (m *Launcher) Registry() *prometheus.Registry {
	return m.reg
}

// URL returns the URL to connect to the HTTP server.
func (m *Launcher) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", m.httpPort)
}

// BrandService returns the brand service the API serves.
func (m *Launcher) BrandService() catalog.BrandService {
	return m.brandService
}

// CarService returns the car service the API serves.
func (m *Launcher) CarService() catalog.CarService {
	return m.carService
}

// Done is closed when ctx given to Start ends or the HTTP server fails.
func (m *Launcher) Done() <-chan struct{} {
	return m.done.Done()
}

// Run starts catalogd and blocks until ctx is cancelled or the server fails,
// then shuts it down.
func (m *Launcher) Run(ctx context.Context, cfg *Config) error {
	if err := m.Start(ctx, cfg); err != nil {
		return err
	}
	<-m.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return m.Shutdown(shutdownCtx)
}

// Start opens every resource and starts serving HTTP. It returns once the
// listener is bound.
func (m *Launcher) Start(ctx context.Context, cfg *Config) (err error) {
	if m.log, err = newLogger(cfg, m.Stdout); err != nil {
		return err
	}

	info := catalog.GetBuildInfo()
	m.log.Info("Welcome to catalogd",
		zap.String("version", info.Version),
		zap.String("commit", info.Commit),
		zap.String("build_date", info.Date),
	)

	defer func() {
		if err != nil {
			if cerr := m.close(); cerr != nil {
				m.log.Error("Failed to release resources", zap.Error(cerr))
			}
		}
	}()

	if m.tracingCloser, err = tracing.Open(cfg.TracingType, serviceName, m.log); err != nil {
		m.log.Error("Failed to set up tracing", zap.Error(err))
		return err
	}

	if m.store, err = openStore(ctx, cfg, m.log); err != nil {
		return err
	}

	m.reg = prometheus.NewRegistry()
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.reg.MustRegister(m.store.PrometheusCollectors()...)

	m.brandService, m.carService = newServices(m.log, m.store)

	httpLogger := m.log.With(zap.String("service", "http"))
	api := http.NewAPIHandler(&http.APIBackend{
		Logger:       httpLogger,
		BrandService: m.brandService,
		CarService:   m.carService,
	})
	root := http.NewRootHandler("catalog",
		http.WithLog(httpLogger),
		http.WithAPIHandler(api),
		http.WithPinger("store", m.store),
		http.WithMetrics(m.reg),
		http.WithRateLimit(cfg.HTTPRateLimit, cfg.HTTPRateBurst),
	)

	ln, err := net.Listen("tcp", cfg.HTTPBindAddress)
	if err != nil {
		httpLogger.Error("Failed http listener", zap.Error(err))
		return err
	}
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		m.httpPort = addr.Port
	}

	m.httpServer = &nethttp.Server{
		Handler:           root,
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ErrorLog:          zap.NewStdLog(httpLogger),
	}

	m.group, m.done = errgroup.WithContext(ctx)
	m.group.Go(func() error {
		httpLogger.Info("Listening",
			zap.String("transport", "http"),
			zap.String("addr", cfg.HTTPBindAddress),
			zap.Int("port", m.httpPort),
		)
		if err := m.httpServer.Serve(ln); !errors.Is(err, nethttp.ErrServerClosed) {
			httpLogger.Error("Failed http service", zap.Error(err))
			return err
		}
		httpLogger.Info("Stopping")
		return nil
	})

	return nil
}

// Shutdown stops the HTTP server, waits for it to drain and releases every
// resource.
func (m *Launcher) Shutdown(ctx context.Context) error {
	var err error
	if m.httpServer != nil {
		m.log.Info("Stopping", zap.String("service", "http"))
		err = multierr.Append(err, m.httpServer.Shutdown(ctx))
	}
	if m.group != nil {
		err = multierr.Append(err, m.group.Wait())
	}
	err = multierr.Append(err, m.close())

	_ = m.log.Sync()
	return err
}

func (m *Launcher) close() error {
	var err error
	if m.store != nil {
		m.log.Info("Stopping", zap.String("service", "store"))
		err = multierr.Append(err, m.store.Close())
		m.store = nil
	}
	if m.tracingCloser != nil {
		err = multierr.Append(err, m.tracingCloser.Close())
		m.tracingCloser = nil
	}
	return err
}

func newLogger(cfg *Config, w io.Writer) (*zap.Logger, error) {
	logconf := logger.Config{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	}
	return logconf.New(w)
}

// openStore connects to the configured database and migrates it to the
// latest schema.
func openStore(ctx context.Context, cfg *Config, log *zap.Logger) (*sqlstore.SqlStore, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	storeLogger := log.With(zap.String("service", "store"))
	store, err := sqlstore.NewSqlStore(cfg.StoreDriver, dsn, storeLogger)
	if err != nil {
		storeLogger.Error("Failed opening store", zap.Error(err))
		return nil, err
	}

	source, err := migrations.ForDriver(cfg.StoreDriver)
	if err == nil {
		err = sqlstore.NewMigrator(store, storeLogger).Up(ctx, source)
	}
	if err != nil {
		storeLogger.Error("Failed migrating store", zap.Error(err))
		return nil, multierr.Append(err, store.Close())
	}
	return store, nil
}

func newServices(log *zap.Logger, store *sqlstore.SqlStore) (catalog.BrandService, catalog.CarService) {
	brandLogger := log.With(zap.String("service", "brands"))
	carLogger := log.With(zap.String("service", "cars"))

	var brandSvc catalog.BrandService = brands.NewService(brandLogger, store)
	brandSvc = brands.NewLoggingService(brandLogger, brandSvc)

	var carSvc catalog.CarService = cars.NewService(carLogger, store)
	carSvc = cars.NewLoggingService(carLogger, carSvc)

	return brandSvc, carSvc
}
