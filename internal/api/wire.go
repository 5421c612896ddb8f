//go:build wireinject

package api

import (
	"github.com/google/wire"

	"github.com/portara/walletcore/internal/config"
	"github.com/portara/walletcore/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewClock,
	metrics.New,
	NewBus,
	NewAuditLog,
	NewProviderRegistry,
	NewSessionStore,
	NewConnectionManager,
	NewCoordinator,
	NewBroadcaster,
	NewRetrier,
	NewPipeline,
	NewWalletService,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
