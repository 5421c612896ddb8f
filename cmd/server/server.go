package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/portara/walletcore/internal/api"
	"github.com/portara/walletcore/internal/api/router"
	"github.com/portara/walletcore/internal/config"
	"github.com/portara/walletcore/internal/util/command"
	"github.com/portara/walletcore/internal/wallet"
)

const shutdownTimeout = 30 * time.Second

const keystorePasswordFlag = "keystore-password"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Starts the server",
		Long: `Starts the stateless RESTful JSON server

Requires configuration through ENV and a local keystore.
The keystore password is prompted on startup unless provided
via --keystore-password or SERVER_WALLET_KEYSTORE_PASSWORD;
a missing keystore file is created interactively.`,
		Run: func(_ *cobra.Command, _ []string) {
			runServer()
		},
	}

	cmd.Flags().String(keystorePasswordFlag, "", "Keystore password for non-interactive startup")
	_ = viper.BindPFlag(keystorePasswordFlag, cmd.Flags().Lookup(keystorePasswordFlag))
	_ = viper.BindEnv(keystorePasswordFlag, "SERVER_WALLET_KEYSTORE_PASSWORD")

	return cmd
}

func runServer() {
	cfg := config.DefaultServiceConfigFromEnv()

	command.ApplyLoggerConfig(cfg.Logger)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	// the local signing agent needs its keystore unlocked before it can be
	// registered
	password := viper.GetString(keystorePasswordFlag)
	if password != "" {
		if err := wallet.UnlockLocalKeystore(cfg.Wallet.KeystorePath, password); err != nil {
			log.Fatal().Err(err).Msg("Failed to unlock local keystore")
		}
	} else {
		password, err = wallet.InitializeLocalKeystore(cfg.Wallet.KeystorePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize local keystore")
		}
	}

	if err := s.RegisterLocalKeyProvider(password); err != nil {
		log.Fatal().Err(err).Msg("Failed to register local signing provider")
	}

	router.Init(s)

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(ctx); len(errs) > 0 {
		log.Fatal().Errs("errs", errs).Msg("Failed to gracefully shut down server")
	}
}
