package config

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/subosito/gotenv"

	"github.com/portara/walletcore/internal/util"
)

// EchoServer configures the echo HTTP server.
type EchoServer struct {
	Debug                          bool
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	EnableRecoverMiddleware        bool
	EnableRequestIDMiddleware      bool
	EnableLoggerMiddleware         bool
	EnableMetricsMiddleware        bool
}

// LoggerServer configures zerolog.
type LoggerServer struct {
	Level              zerolog.Level
	RequestLevel       zerolog.Level
	PrettyPrintConsole bool
}

// WalletServer configures the wallet coordination core.
type WalletServer struct {
	// SessionTTL bounds how long a persisted connection session is trusted.
	SessionTTL time.Duration
	// ConnectCacheTTL bounds the short-lived connect result cache,
	// independent of SessionTTL.
	ConnectCacheTTL time.Duration
	// HandshakeTimeout is the per-call deadline for a provider handshake.
	HandshakeTimeout time.Duration
	// MultiSigTTL is how long an open signature-collection record survives.
	MultiSigTTL time.Duration
	// SweepInterval is the cadence of the expiry sweeps.
	SweepInterval time.Duration

	AuditLogCapacity int
	MaxBatchSize     int
	DefaultChainID   int64

	// RPCURLs are the ledger JSON-RPC endpoints, first is primary.
	RPCURLs []string

	// KeystorePath is the local provider's encrypted seed file.
	KeystorePath string

	// RedisURL enables the redis-backed session store when set; the
	// in-memory store is used otherwise.
	RedisURL string
}

// ManagementServer configures the management endpoints.
type ManagementServer struct {
	Secret string `json:"-"` // sensitive
}

// Server is the aggregated service configuration.
type Server struct {
	Echo       EchoServer
	Logger     LoggerServer
	Wallet     WalletServer
	Management ManagementServer
}

var (
	config     Server
	configOnce sync.Once
)

// DefaultServiceConfigFromEnv returns the server config populated from the
// environment (and an optional .env.local file), parsed exactly once.
func DefaultServiceConfigFromEnv() Server {
	configOnce.Do(func() {
		// optional local env overrides, ignored when absent
		_ = gotenv.Load(".env.local")

		config = Server{
			Echo: EchoServer{
				Debug:                          util.GetEnvAsBool("SERVER_ECHO_DEBUG", false),
				ListenAddress:                  util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":8080"),
				HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_ECHO_HIDE_INTERNAL_SERVER_ERROR_DETAILS", true),
				EnableRecoverMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
				EnableRequestIDMiddleware:      util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
				EnableLoggerMiddleware:         util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
				EnableMetricsMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_METRICS_MIDDLEWARE", true),
			},
			Logger: LoggerServer{
				Level:              logLevelFromString(util.GetEnv("SERVER_LOGGER_LEVEL", "info")),
				RequestLevel:       logLevelFromString(util.GetEnv("SERVER_LOGGER_REQUEST_LEVEL", "debug")),
				PrettyPrintConsole: util.GetEnvAsBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false),
			},
			Wallet: WalletServer{
				SessionTTL:       util.GetEnvAsDuration("SERVER_WALLET_SESSION_TTL", 24*time.Hour),
				ConnectCacheTTL:  util.GetEnvAsDuration("SERVER_WALLET_CONNECT_CACHE_TTL", 5*time.Minute),
				HandshakeTimeout: util.GetEnvAsDuration("SERVER_WALLET_HANDSHAKE_TIMEOUT", 10*time.Second),
				MultiSigTTL:      util.GetEnvAsDuration("SERVER_WALLET_MULTISIG_TTL", time.Hour),
				SweepInterval:    util.GetEnvAsDuration("SERVER_WALLET_SWEEP_INTERVAL", time.Minute),
				AuditLogCapacity: util.GetEnvAsInt("SERVER_WALLET_AUDIT_LOG_CAPACITY", 1000),
				MaxBatchSize:     util.GetEnvAsInt("SERVER_WALLET_MAX_BATCH_SIZE", 100),
				DefaultChainID:   int64(util.GetEnvAsInt("SERVER_WALLET_DEFAULT_CHAIN_ID", 1)),
				RPCURLs:          util.GetEnvAsStringArr("SERVER_WALLET_RPC_URLS", []string{"http://localhost:8545"}),
				KeystorePath:     util.GetEnv("SERVER_WALLET_KEYSTORE_PATH", "/app/keystore/seed.json"),
				RedisURL:         util.GetEnv("SERVER_WALLET_REDIS_URL", ""),
			},
			Management: ManagementServer{
				Secret: util.GetEnv("SERVER_MANAGEMENT_SECRET", "mgmt-secret"),
			},
		}
	})

	return config
}

func logLevelFromString(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
