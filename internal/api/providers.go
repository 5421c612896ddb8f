package api

import (
	"github.com/dropbox/godropbox/time2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/config"
	"github.com/portara/walletcore/internal/metrics"
	"github.com/portara/walletcore/internal/wallet"
	"github.com/portara/walletcore/internal/wallet/connection"
	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
	"github.com/portara/walletcore/internal/wallet/ledger"
	"github.com/portara/walletcore/internal/wallet/multisig"
	"github.com/portara/walletcore/internal/wallet/pipeline"
	"github.com/portara/walletcore/internal/wallet/provider"
)

// PROVIDERS - the wire.Build arguments in wire.go reference these.

func NewClock() time2.Clock {
	return time2.DefaultClock
}

// NewBus wires the metrics observer into the event stream so every state
// transition is counted.
func NewBus(m *metrics.Metrics) *events.Bus {
	bus := events.NewBus()
	bus.Subscribe(m.ObserveEvent)
	return bus
}

func NewAuditLog(cfg config.Server) *errclass.AuditLog {
	return errclass.NewAuditLog(cfg.Wallet.AuditLogCapacity)
}

func NewProviderRegistry() *provider.Registry {
	return provider.NewRegistry()
}

// NewSessionStore picks redis when configured, memory otherwise.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSessionStore(cfg config.Server) (connection.Store, error) {
	if cfg.Wallet.RedisURL == "" {
		log.Debug().Msg("No redis URL configured, using in-memory session store")
		return connection.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.Wallet.RedisURL)
	if err != nil {
		return nil, err
	}

	return connection.NewRedisStore(redis.NewClient(opts)), nil
}

func NewConnectionManager(cfg config.Server, registry *provider.Registry, store connection.Store, bus *events.Bus, audit *errclass.AuditLog) *connection.Manager {
	return connection.NewManager(connection.Config{
		SessionTTL:       cfg.Wallet.SessionTTL,
		CacheTTL:         cfg.Wallet.ConnectCacheTTL,
		HandshakeTimeout: cfg.Wallet.HandshakeTimeout,
	}, registry, store, bus, audit)
}

func NewCoordinator(cfg config.Server, bus *events.Bus) *multisig.Coordinator {
	return multisig.NewCoordinator(multisig.Config{TTL: cfg.Wallet.MultiSigTTL}, bus)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewBroadcaster(cfg config.Server) (ledger.Broadcaster, error) {
	return ledger.NewEVMBroadcaster(cfg.Wallet.RPCURLs)
}

func NewRetrier(audit *errclass.AuditLog, m *metrics.Metrics) *errclass.Retrier {
	return errclass.NewRetrier(
		errclass.WithAuditLog(audit),
		errclass.WithOnRetry(m.RecordRetry),
		errclass.WithOnFailure(m.RecordError),
	)
}

func NewPipeline(cfg config.Server, manager *connection.Manager, registry *provider.Registry, coordinator *multisig.Coordinator, broadcaster ledger.Broadcaster, retrier *errclass.Retrier, bus *events.Bus) *pipeline.Pipeline {
	return pipeline.NewPipeline(pipeline.Config{MaxBatchSize: cfg.Wallet.MaxBatchSize}, manager, registry, coordinator, broadcaster, retrier, bus)
}

//nolint:ireturn // Returning interface is intentional for dependency injection
func NewWalletService(cfg config.Server, registry *provider.Registry, manager *connection.Manager, coordinator *multisig.Coordinator, p *pipeline.Pipeline, bus *events.Bus, audit *errclass.AuditLog) (wallet.Service, error) {
	return wallet.NewService(cfg.Wallet.SweepInterval, registry, manager, coordinator, p, bus, audit)
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	clock time2.Clock,
	m *metrics.Metrics,
	bus *events.Bus,
	audit *errclass.AuditLog,
	registry *provider.Registry,
	store connection.Store,
	walletService wallet.Service,
) *Server {
	return &Server{
		Config:   cfg,
		Clock:    clock,
		Metrics:  m,
		Bus:      bus,
		Audit:    audit,
		Registry: registry,
		Store:    store,
		Wallet:   walletService,
	}
}
