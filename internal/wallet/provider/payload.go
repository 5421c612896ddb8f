package provider

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// TxPayload is the provider-neutral description of an unsigned transaction.
// The pipeline encodes it, adapters decode it; neither side inspects the
// other's internals.
type TxPayload struct {
	ChainID              int64  `json:"chainId"`
	To                   string `json:"to"`
	Value                string `json:"value"` // wei, decimal string to avoid precision loss
	GasLimit             uint64 `json:"gasLimit"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	Nonce                uint64 `json:"nonce"`
	Data                 []byte `json:"data,omitempty"`
	From                 string `json:"from,omitempty"`
}

// Encode serializes the payload for an Adapter.SignTransaction call.
func (p *TxPayload) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode transaction payload")
	}
	return data, nil
}

// DecodeTxPayload parses a payload handed to an adapter.
func DecodeTxPayload(data []byte) (*TxPayload, error) {
	var p TxPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to decode transaction payload")
	}
	return &p, nil
}
