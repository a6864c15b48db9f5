package cmd

import (
	"context"
	"fmt"

	"github.com/curioledger/curio/internal/cachemanager"
	"github.com/curioledger/curio/internal/config"
	"github.com/curioledger/curio/internal/flags"
	"github.com/curioledger/curio/internal/infrastructure/sqlite"
	"github.com/curioledger/curio/internal/log"
	"github.com/curioledger/curio/internal/pubsub"
	"github.com/curioledger/curio/internal/registry/application"
	"github.com/curioledger/curio/internal/registry/domain"
	"github.com/curioledger/curio/internal/tracing"
)

// services bundles the application service with the resources it owns.
type services struct {
	svc    *application.Service
	db     *sqlite.DB
	broker *pubsub.Broker[domain.Event]
	tracer *tracing.Provider
	cancel context.CancelFunc
}

// openService builds the full stack for one command invocation: ledger
// database, repository, event broker, token cache, and tracing.
func openService(ctx context.Context) (*services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tcfg := cfg.Tracing
	if tcfg.Enabled && tcfg.Exporter == "file" && tcfg.FilePath == "" {
		tcfg.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tcfg)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	db, err := sqlite.NewDB(cfg.Ledger.Path)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("opening ledger %s: %w", cfg.Ledger.Path, err)
	}

	broker := pubsub.NewBroker[domain.Event]()
	subCtx, cancel := context.WithCancel(ctx)

	// Mirror published events into the debug log.
	events := broker.Subscribe(subCtx)
	go func() {
		for ev := range events {
			log.Debug(log.CatEvents, "event published", "type", ev.Type, "payload", ev.Payload)
		}
	}()

	opts := []application.Option{
		application.WithBroker(broker),
		application.WithTracer(provider.Tracer()),
	}
	if !cfg.Cache.Disabled {
		cache := cachemanager.NewInMemoryCacheManager[string, application.TokenDetails](
			application.TokenCacheUseCase,
			cachemanager.DefaultExpiration,
			cachemanager.DefaultCleanupInterval,
		)
		opts = append(opts, application.WithCache(cache, cfg.Cache.ParseTTL(application.DefaultTokenTTL)))
		if featureFlags.Enabled(flags.FlagCacheRefresh) {
			opts = append(opts, application.WithCacheRefresh())
		}
	}

	svc, err := application.NewService(ctx, db.RegistryRepository(), cfg.Registry.Name, cfg.Registry.Symbol, opts...)
	if err != nil {
		cancel()
		broker.Close()
		_ = db.Close()
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	return &services{
		svc:    svc,
		db:     db,
		broker: broker,
		tracer: provider,
		cancel: cancel,
	}, nil
}

// close releases everything openService acquired.
func (s *services) close() {
	s.cancel()
	s.broker.Close()
	if err := s.svc.Close(); err != nil {
		log.ErrorErr(log.CatDB, "closing repository", err)
	}
	if err := s.db.Close(); err != nil {
		log.ErrorErr(log.CatDB, "closing ledger", err)
	}
	if err := s.tracer.Shutdown(context.Background()); err != nil {
		log.ErrorErr(log.CatCLI, "shutting down tracing", err)
	}
}
