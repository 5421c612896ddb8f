package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/config"
	"github.com/portara/walletcore/internal/metrics"
	"github.com/portara/walletcore/internal/wallet"
	"github.com/portara/walletcore/internal/wallet/connection"
	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
	"github.com/portara/walletcore/internal/wallet/provider"
	"github.com/portara/walletcore/internal/wallet/provider/localkey"
)

// WalletService is the surface the handlers consume.
type WalletService = wallet.Service

type Router struct {
	Routes      []*echo.Route
	Root        *echo.Group
	Management  *echo.Group
	APIV1Wallet *echo.Group
	APIV1Txn    *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`

	Config   config.Server
	Clock    time2.Clock
	Metrics  *metrics.Metrics
	Bus      *events.Bus
	Audit    *errclass.AuditLog
	Registry *provider.Registry
	Store    connection.Store
	Wallet   WalletService
}

func NewServer(config config.Server) *Server {
	s := &Server{
		Config: config,
	}

	return s
}

func (s *Server) Ready() bool {
	if s.Echo == nil ||
		s.Router == nil ||
		s.Clock == nil ||
		s.Metrics == nil ||
		s.Bus == nil ||
		s.Audit == nil ||
		s.Registry == nil ||
		s.Store == nil ||
		s.Wallet == nil {
		log.Debug().Msg("Server is not fully initialized")
		return false
	}

	return true
}

// RegisterLocalKeyProvider wires the in-process signing agent into the
// provider registry. Called after the keystore password was obtained.
func (s *Server) RegisterLocalKeyProvider(password string) error {
	return s.Registry.Register(localkey.ProviderID, localkey.Factory(localkey.Config{
		KeystorePath: s.Config.Wallet.KeystorePath,
		Password:     password,
		ChainID:      s.Config.Wallet.DefaultChainID,
	}))
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Wallet.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start wallet service: %w", err)
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Wallet != nil {
		log.Debug().Msg("Stopping wallet service")
		s.Wallet.Stop()
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	return errs
}
