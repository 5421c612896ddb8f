package test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/router"
	"github.com/portara/walletcore/internal/config"
)

// DefaultTestConfig returns the service config used by handler tests. The
// redis URL is always cleared so tests run against the in-memory session
// store.
func DefaultTestConfig() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()

	cfg.Echo.ListenAddress = ":0"
	cfg.Echo.EnableLoggerMiddleware = false
	cfg.Wallet.RedisURL = ""

	return cfg
}

// WithTestServer creates a fully initialized server with the deterministic
// test signing provider registered and passes it to the closure. The echo
// instance never listens, requests are performed in-process.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()
	WithTestServerConfigurable(t, DefaultTestConfig(), closure)
}

// WithTestServerConfigurable is WithTestServer with a custom config.
func WithTestServerConfigurable(t *testing.T, cfg config.Server, closure func(s *api.Server)) {
	t.Helper()

	s, err := api.InitNewServer(cfg)
	require.NoError(t, err)

	require.NoError(t, RegisterTestProvider(s))

	router.Init(s)

	closure(s)
}
