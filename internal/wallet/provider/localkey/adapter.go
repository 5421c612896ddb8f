// Package localkey implements the provider adapter contract with an
// in-process signing agent backed by an encrypted seed file. It exists so the
// registry, the connect handshake and the single-signer path work end to end
// without an external wallet.
package localkey

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"os"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tyler-smith/go-bip32"

	"github.com/portara/walletcore/internal/wallet/provider"
)

// ProviderID is the identifier the adapter registers under.
const ProviderID = "localkey"

// Config configures the adapter.
type Config struct {
	// KeystorePath is the scrypt-encrypted seed file.
	KeystorePath string
	// Password unlocks the keystore.
	Password string
	// AccountIndex selects the derived account (m/44'/60'/0'/0/<index>).
	AccountIndex uint32
	// ChainID is reported to the handshake and enforced on sign requests.
	ChainID int64
}

type adapter struct {
	cfg Config

	mu         sync.Mutex
	privateKey *ecdsa.PrivateKey
	address    string
	publicKey  string
}

// New creates the adapter. The keystore is not touched until Connect.
//
//nolint:ireturn // adapters are handed out behind the provider contract
func New(cfg Config) provider.Adapter {
	return &adapter{cfg: cfg}
}

// Factory returns a registry factory for the adapter.
func Factory(cfg Config) provider.Factory {
	return func() (provider.Adapter, error) {
		return New(cfg), nil
	}
}

func (a *adapter) ID() string {
	return ProviderID
}

// Connect unlocks the keystore, derives the signing key and returns the
// authorization identity.
func (a *adapter) Connect(_ context.Context, meta provider.Metadata) (*provider.Credentials, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.privateKey == nil {
		if err := a.unlock(); err != nil {
			return nil, err
		}
	}

	chainID := a.cfg.ChainID
	if meta.ChainID != 0 {
		chainID = meta.ChainID
	}

	return &provider.Credentials{
		Address:   a.address,
		PublicKey: a.publicKey,
		ChainID:   chainID,
	}, nil
}

// Disconnect wipes the cached key material. Always succeeds.
func (a *adapter) Disconnect(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.privateKey != nil {
		a.privateKey.D.SetInt64(0)
		a.privateKey = nil
	}
	a.address = ""
	a.publicKey = ""

	log.Debug().Str("provider_id", ProviderID).Msg("Local key material cleared")

	return nil
}

// SignTransaction signs the encoded transaction payload as an EIP-1559
// transaction.
func (a *adapter) SignTransaction(_ context.Context, payload []byte) (*provider.SignedArtifact, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.privateKey == nil {
		return nil, errors.New("provider is not connected")
	}

	txPayload, err := provider.DecodeTxPayload(payload)
	if err != nil {
		return nil, err
	}

	return a.signEIP1559(txPayload)
}

// SignMessage signs the message per EIP-191 (personal_sign).
func (a *adapter) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.privateKey == nil {
		return nil, errors.New("provider is not connected")
	}

	hash := accounts191Hash(message)
	sig, err := crypto.Sign(hash, a.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign message")
	}

	return sig, nil
}

// Installed reports whether the keystore file exists.
func (a *adapter) Installed(_ context.Context) bool {
	_, err := os.Stat(a.cfg.KeystorePath)
	return err == nil
}

// unlock decrypts the seed and derives the account key. Caller holds a.mu.
func (a *adapter) unlock() error {
	ks, err := LoadKeystore(a.cfg.KeystorePath)
	if err != nil {
		return err
	}

	seed, err := DecryptSeed(ks, a.cfg.Password)
	if err != nil {
		return err
	}
	defer zero(seed)

	privateKey, err := deriveAccountKey(seed, a.cfg.AccountIndex)
	if err != nil {
		return err
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return errors.New("failed to cast public key to ECDSA")
	}

	a.privateKey = privateKey
	a.address = crypto.PubkeyToAddress(*publicKey).Hex()
	a.publicKey = "0x" + hex.EncodeToString(crypto.CompressPubkey(publicKey))

	return nil
}

// deriveAccountKey walks m/44'/60'/0'/0/<index> from the seed.
func deriveAccountKey(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	path := []uint32{
		bip32.FirstHardenedChild + 44,
		bip32.FirstHardenedChild + 60,
		bip32.FirstHardenedChild,
		0,
		index,
	}

	key := master
	for _, childIndex := range path {
		key, err = key.NewChildKey(childIndex)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key %d", childIndex)
		}
	}

	privateKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert derived key to ECDSA")
	}

	return privateKey, nil
}

func accounts191Hash(message []byte) []byte {
	prefix := []byte("\x19Ethereum Signed Message:\n" + strconv.Itoa(len(message)))
	return crypto.Keccak256(prefix, message)
}
