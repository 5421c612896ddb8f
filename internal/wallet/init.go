package wallet

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/portara/walletcore/internal/wallet/provider/localkey"
)

const minPasswordLength = 8

// InitializeLocalKeystore makes sure a local keystore exists at path and
// returns the password that unlocks it. A missing keystore is created after
// prompting for a fresh password; an existing one is verified by decrypting
// the seed once. Called at server startup before the localkey provider is
// registered.
func InitializeLocalKeystore(path string) (string, error) {
	log := log.With().Str("component", "wallet_init").Logger()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", path).Msg("Keystore not found, creating a new one")

		password, err := promptPassword(fmt.Sprintf("Enter new password for keystore (min %d characters): ", minPasswordLength))
		if err != nil {
			return "", errors.Wrap(err, "failed to read password")
		}
		if len(password) < minPasswordLength {
			return "", errors.Errorf("password must be at least %d characters", minPasswordLength)
		}

		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return "", errors.Wrap(err, "failed to read password confirmation")
		}
		if password != confirm {
			return "", errors.New("passwords do not match")
		}

		if err := localkey.CreateKeystore(path, password); err != nil {
			return "", errors.Wrap(err, "failed to create keystore")
		}

		log.Info().Str("path", path).Msg("Keystore created")
		return password, nil
	}

	password, err := promptPassword("Enter keystore password: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}

	if err := UnlockLocalKeystore(path, password); err != nil {
		return "", err
	}

	log.Info().Str("path", path).Msg("Keystore unlocked")
	return password, nil
}

// UnlockLocalKeystore verifies the password against an existing keystore at
// path by decrypting the seed once. Used for non-interactive startup where
// the password arrives via configuration instead of a prompt.
func UnlockLocalKeystore(path, password string) error {
	ks, err := localkey.LoadKeystore(path)
	if err != nil {
		return errors.Wrap(err, "failed to load keystore")
	}

	seed, err := localkey.DecryptSeed(ks, password)
	if err != nil {
		return errors.Wrap(err, "invalid keystore password")
	}
	for i := range seed {
		seed[i] = 0
	}

	return nil
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "failed to read from terminal")
	}

	return string(password), nil
}
