package probe

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/portara/walletcore/internal/config"
)

const probeTimeout = 5 * time.Second

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs the readiness probe",
		Long: `Runs a readiness probe against the local server

Hits the management /ready endpoint and exits non-zero
unless the server reports it is fully initialized.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse flags")
			}

			runProbe("/-/ready", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Prints the probe response body")

	return cmd
}

// runProbe performs a GET against the management endpoint on the local
// listen address and fatals on any non-200 outcome.
func runProbe(path string, verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	addr := cfg.Echo.ListenAddress
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	client := &http.Client{Timeout: probeTimeout}

	res, err := client.Get(fmt.Sprintf("http://%s%s", addr, path))
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Probe request failed")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read probe response")
	}

	if verbose {
		fmt.Println(string(body))
	}

	if res.StatusCode != http.StatusOK {
		log.Fatal().Int("status", res.StatusCode).Str("path", path).Msg("Probe failed")
	}
}
