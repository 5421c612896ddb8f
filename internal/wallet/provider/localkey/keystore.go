package localkey

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// KeystoreJSON is the on-disk seed container, following the Ethereum
// keystore v3 layout (scrypt KDF, AES-128-CTR cipher, keccak MAC).
type KeystoreJSON struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Cipher       string `json:"cipher"`
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

const (
	keystoreVersion = 3

	scryptN     = 1 << 17
	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32

	saltSize = 32
	ivSize   = 16 // AES-128-CTR
)

var errInvalidMAC = errors.New("keystore MAC mismatch (invalid password?)")

// EncryptSeed encrypts the seed with a password-derived key.
func EncryptSeed(seed []byte, password string) (*KeystoreJSON, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	ciphertext, err := applyAESCTR(derivedKey[:16], iv, seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt seed")
	}

	mac := crypto.Keccak256(derivedKey[16:32], ciphertext)

	ks := &KeystoreJSON{
		Version: keystoreVersion,
		ID:      uuid.New().String(),
	}
	ks.Crypto.Cipher = "aes-128-ctr"
	ks.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	ks.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	ks.Crypto.KDF = "scrypt"
	ks.Crypto.KDFParams.N = scryptN
	ks.Crypto.KDFParams.R = scryptR
	ks.Crypto.KDFParams.P = scryptP
	ks.Crypto.KDFParams.DKLen = scryptDKLen
	ks.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	ks.Crypto.MAC = hex.EncodeToString(mac)

	return ks, nil
}

// DecryptSeed recovers the seed, verifying the MAC before decryption.
func DecryptSeed(ks *KeystoreJSON, password string) ([]byte, error) {
	if ks.Version != keystoreVersion {
		return nil, errors.Errorf("unsupported keystore version %d", ks.Version)
	}

	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode salt")
	}

	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode IV")
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode MAC")
	}

	derivedKey, err := scrypt.Key(
		[]byte(password), salt,
		ks.Crypto.KDFParams.N, ks.Crypto.KDFParams.R, ks.Crypto.KDFParams.P, ks.Crypto.KDFParams.DKLen,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	mac := crypto.Keccak256(derivedKey[16:32], ciphertext)
	if !bytes.Equal(mac, expectedMAC) {
		return nil, errInvalidMAC
	}

	return applyAESCTR(derivedKey[:16], iv, ciphertext)
}

// LoadKeystore reads the keystore file at path.
func LoadKeystore(path string) (*KeystoreJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keystore file")
	}

	var ks KeystoreJSON
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, errors.Wrap(err, "failed to parse keystore file")
	}

	return &ks, nil
}

// WriteKeystore persists the keystore to path, creating parent directories.
func WriteKeystore(path string, ks *KeystoreJSON) error {
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal keystore")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create keystore directory")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write keystore file")
	}

	return nil
}

// CreateKeystore generates a fresh random seed, encrypts it with the password
// and writes it to path. It refuses to overwrite an existing file.
func CreateKeystore(path string, password string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("keystore already exists at %s", path)
	}

	seed := make([]byte, 64)
	if _, err := rand.Read(seed); err != nil {
		return errors.Wrap(err, "failed to generate seed")
	}
	defer zero(seed)

	ks, err := EncryptSeed(seed, password)
	if err != nil {
		return err
	}

	return WriteKeystore(path, ks)
}

func applyAESCTR(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
