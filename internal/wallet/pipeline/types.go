package pipeline

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Status is the transaction lifecycle state.
type Status string

const (
	// StatusPending means the record was prepared but not yet signed.
	StatusPending Status = "pending"
	// StatusSigning means signing is in progress, possibly waiting on
	// additional approvers.
	StatusSigning Status = "signing"
	// StatusBroadcasting means the signed artifact was handed to the ledger.
	StatusBroadcasting Status = "broadcasting"
	// StatusConfirmed is terminal.
	StatusConfirmed Status = "confirmed"
	// StatusFailed is terminal.
	StatusFailed Status = "failed"
	// StatusCancelled is terminal.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions may leave s.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusCancelled
}

// maxAmountWei bounds intent magnitude at 2^128-1 wei.
var maxAmountWei = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Intent is one requested transfer of value, the input to Prepare.
type Intent struct {
	ChainID              int64  `json:"chainId"`
	To                   string `json:"to"`
	Amount               string `json:"amount"` // wei, decimal string
	GasLimit             uint64 `json:"gasLimit"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	Nonce                uint64 `json:"nonce"`
	Data                 []byte `json:"data,omitempty"`
}

// Validate checks the intent before any record is created.
func (i Intent) Validate() error {
	amount, ok := new(big.Int).SetString(i.Amount, 10)
	if !ok {
		return errors.Errorf("amount %q is not a decimal integer", i.Amount)
	}
	if amount.Sign() <= 0 {
		return errors.New("amount must be positive")
	}
	if amount.Cmp(maxAmountWei) > 0 {
		return errors.New("amount exceeds the representable maximum")
	}
	if !common.IsHexAddress(i.To) {
		return errors.Errorf("target %q is not a valid address", i.To)
	}

	maxFee, ok := new(big.Int).SetString(i.MaxFeePerGas, 10)
	if !ok || maxFee.Sign() < 0 {
		return errors.Errorf("maxFeePerGas %q is not a non-negative decimal integer", i.MaxFeePerGas)
	}
	tip, ok := new(big.Int).SetString(i.MaxPriorityFeePerGas, 10)
	if !ok || tip.Sign() < 0 {
		return errors.Errorf("maxPriorityFeePerGas %q is not a non-negative decimal integer", i.MaxPriorityFeePerGas)
	}
	if tip.Cmp(maxFee) > 0 {
		return errors.New("maxPriorityFeePerGas must not exceed maxFeePerGas")
	}

	return nil
}

// Fingerprint derives the stable content identifier for the intent. Retries
// of the same logical transfer map to the same fingerprint.
func (i Intent) Fingerprint() string {
	preimage := fmt.Sprintf("%d|%s|%s|%d|", i.ChainID, strings.ToLower(i.To), i.Amount, i.Nonce)
	digest := crypto.Keccak256(append([]byte(preimage), i.Data...))
	return hexutil.Encode(digest)
}

// TransactionRecord is one attempted transfer moving through the lifecycle.
type TransactionRecord struct {
	ID          string      `json:"id"`
	Fingerprint string      `json:"fingerprint"`
	Status      Status      `json:"status"`
	RetryCount  int         `json:"retryCount"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastError   null.String `json:"lastError,omitempty"`
	LedgerID    null.String `json:"ledgerId,omitempty"`
	Intent      Intent      `json:"intent"`
}

const (
	// SignStatusSigned means a complete artifact is ready for broadcast.
	SignStatusSigned = "signed"
	// SignStatusPending means more approvers are still required.
	SignStatusPending = "pending"
)

// SignResult is the outcome of one Sign call. When further approvers are
// required the result is a progress report, not an error.
type SignResult struct {
	Status    string `json:"status"`
	Collected int    `json:"collected,omitempty"`
	Required  int    `json:"required,omitempty"`
	Signed    []byte `json:"signed,omitempty"`
	Hash      string `json:"hash,omitempty"`
}

// BatchProgress is one aggregate progress report during batch signing.
type BatchProgress struct {
	Progress    int    `json:"progress"` // 0-100
	Message     string `json:"message"`
	TotalSigned int    `json:"totalSigned"`
	TotalFailed int    `json:"totalFailed"`
}

// BatchResult summarizes a finished batch. Partial success is expected,
// already-signed items are never rolled back.
type BatchResult struct {
	Records     []*TransactionRecord `json:"records"`
	TotalSigned int                  `json:"totalSigned"`
	TotalFailed int                  `json:"totalFailed"`
}
