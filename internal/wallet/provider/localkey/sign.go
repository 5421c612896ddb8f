package localkey

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/portara/walletcore/internal/wallet/provider"
)

const base10 = 10

// signEIP1559 signs the payload as an EIP-1559 (dynamic fee) transaction.
// Caller holds a.mu.
func (a *adapter) signEIP1559(p *provider.TxPayload) (*provider.SignedArtifact, error) {
	if a.cfg.ChainID != 0 && p.ChainID != a.cfg.ChainID {
		return nil, errors.Errorf("payload chain id %d does not match provider chain id %d", p.ChainID, a.cfg.ChainID)
	}

	if !common.IsHexAddress(p.To) {
		return nil, errors.Errorf("invalid recipient address %q", p.To)
	}
	toAddress := common.HexToAddress(p.To)

	if p.From != "" && common.HexToAddress(p.From) != common.HexToAddress(a.address) {
		return nil, errors.New("from address does not match provider key")
	}

	value, ok := new(big.Int).SetString(p.Value, base10)
	if !ok {
		return nil, errors.Errorf("invalid value %q", p.Value)
	}

	maxFeePerGas, ok := new(big.Int).SetString(p.MaxFeePerGas, base10)
	if !ok {
		return nil, errors.Errorf("invalid maxFeePerGas %q", p.MaxFeePerGas)
	}

	maxPriorityFeePerGas, ok := new(big.Int).SetString(p.MaxPriorityFeePerGas, base10)
	if !ok {
		return nil, errors.Errorf("invalid maxPriorityFeePerGas %q", p.MaxPriorityFeePerGas)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(p.ChainID),
		Nonce:     p.Nonce,
		GasTipCap: maxPriorityFeePerGas,
		GasFeeCap: maxFeePerGas,
		Gas:       p.GasLimit,
		To:        &toAddress,
		Value:     value,
		Data:      p.Data,
	})

	signer := types.NewLondonSigner(big.NewInt(p.ChainID))
	signedTx, err := types.SignTx(tx, signer, a.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	raw, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal signed transaction")
	}

	return &provider.SignedArtifact{
		Raw:    raw,
		Hash:   signedTx.Hash().Hex(),
		Signer: a.address,
	}, nil
}
