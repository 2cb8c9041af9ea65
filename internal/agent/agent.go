package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mwantia/codingrules/pkg/api"
	"github.com/mwantia/codingrules/pkg/catalog"
	"github.com/mwantia/codingrules/pkg/db/store"
	"github.com/mwantia/codingrules/pkg/log"
	"github.com/mwantia/codingrules/pkg/metrics"
	"github.com/mwantia/fabric/pkg/container"
	"github.com/prometheus/client_golang/prometheus"

	config "github.com/mwantia/codingrules/internal/config/server"
)

type CodingRulesAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg     *config.BaseServerConfig
	sc      *container.ServiceContainer
	log     log.LoggerService
	store   *store.SQLiteStore
	metrics *metrics.Collector
	version string
}

func NewAgent(cfg *config.BaseServerConfig, version string) *CodingRulesAgent {
	return &CodingRulesAgent{
		cfg:     cfg,
		sc:      container.NewServiceContainer(),
		log:     log.NewLoggerService("codingrules", cfg.Log),
		metrics: metrics.NewCollector(prometheus.NewRegistry()),
		version: version,
	}
}

func (cra *CodingRulesAgent) setupStore(ctx context.Context) error {
	st, err := store.OpenSQLiteStore(ctx, store.SQLiteConfig{Path: cra.cfg.Metadata.SQLite.Path}, true)
	if err != nil {
		return err
	}

	cra.store = st
	if err := cra.seed(ctx); err != nil {
		st.Close()
		cra.store = nil
		return err
	}
	return nil
}

// seed imports the configured catalog into an empty store.
func (cra *CodingRulesAgent) seed(ctx context.Context) error {
	count, err := cra.store.CountRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}
	defer func() {
		if count, err := cra.store.CountRules(ctx); err == nil {
			cra.metrics.SetCatalogRules(count)
		}
	}()

	if cra.cfg.Metadata.Seed == "" || count > 0 {
		return nil
	}

	cat, err := catalog.LoadFile(cra.cfg.Metadata.Seed)
	if err != nil {
		return err
	}

	stats, err := catalog.Import(ctx, cra.store, cat)
	if err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	cra.log.Info("Seeded store from '%s' with %d rules, %d profiles and %d activations",
		cra.cfg.Metadata.Seed, stats.Rules, stats.Profiles, stats.Activations)
	return nil
}

func (cra *CodingRulesAgent) setupServices() error {
	errs := container.Errors{}

	cra.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](cra.sc,
		container.With[log.LoggerService](),
		container.WithInstance(cra.log)))

	cra.log.Debug("Registering 'RuleStore'...")
	errs.Add(container.Register[store.SQLiteStore](cra.sc,
		container.With[store.RuleStore](),
		container.WithInstance(cra.store)))

	return errs.Errors()
}

func (cra *CodingRulesAgent) resolveStore(ctx context.Context) (store.RuleStore, error) {
	ok, resolved := cra.sc.ResolveByType(ctx, reflect.TypeOf((*store.RuleStore)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("no rule store registered")
	}

	rs, ok := resolved.(store.RuleStore)
	if !ok {
		return nil, fmt.Errorf("resolved service is not a RuleStore")
	}
	return rs, nil
}

func (cra *CodingRulesAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	cra.mutex.Lock()

	if err := cra.setupStore(ctx); err != nil {
		cra.mutex.Unlock()
		return err
	}
	defer cra.store.Close()

	if err := cra.setupServices(); err != nil {
		cra.mutex.Unlock()
		return err
	}

	rs, err := cra.resolveStore(ctx)
	if err != nil {
		cra.mutex.Unlock()
		return err
	}

	gin.SetMode(cra.cfg.HTTP.Mode)
	server := api.NewServer(rs, cra.log.Named("http"), cra.metrics, api.Options{
		DefaultPageSize: cra.cfg.Search.DefaultPageSize,
		MaxPageSize:     cra.cfg.Search.MaxPageSize,
		Version:         cra.version,
		AccessLog:       cra.cfg.Log.Access,
	})

	httpServer := &http.Server{
		Addr:              cra.cfg.HTTP.Address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	cra.wait.Add(1)
	go func() {
		defer cra.wait.Done()

		cra.log.Info("Listening on %s", cra.cfg.HTTP.Address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	cra.mutex.Unlock()

	var failure error
	select {
	case <-ctx.Done():
		cra.log.Info("Shutting down...")
	case failure = <-serveErr:
		cra.log.Error("HTTP server failed: %v", failure)
	}

	timeout, err := time.ParseDuration(cra.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdown); err != nil {
		cra.log.Warn("Failed to shut down HTTP server gracefully: %v", err)
	}

	if err := cra.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	cra.wait.Wait()
	return failure
}
