package probe

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/portara/walletcore/internal/config"
)

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs the liveness probe",
		Long: `Runs a liveness probe against the local server

Hits the secret-guarded management /healthy endpoint.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse flags")
			}

			cfg := config.DefaultServiceConfigFromEnv()

			runProbe(fmt.Sprintf("/-/healthy?mgmt-secret=%s", url.QueryEscape(cfg.Management.Secret)), verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Prints the probe response body")

	return cmd
}
