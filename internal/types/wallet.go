package types

import (
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
)

// PostConnectPayload requests a session with one provider.
type PostConnectPayload struct {
	ProviderID *string `json:"providerId"`
}

func (p *PostConnectPayload) Validate() error {
	if swag.StringValue(p.ProviderID) == "" {
		return errors.New("providerId is required")
	}
	return nil
}

// ConnectionResponse describes the current connection.
type ConnectionResponse struct {
	State       *string          `json:"state"`
	ProviderID  string           `json:"providerId,omitempty"`
	Address     string           `json:"address,omitempty"`
	PublicKey   string           `json:"publicKey,omitempty"`
	ChainID     int64            `json:"chainId,omitempty"`
	ConnectedAt *strfmt.DateTime `json:"connectedAt,omitempty"`
	ExpiresAt   *strfmt.DateTime `json:"expiresAt,omitempty"`
	LastError   string           `json:"lastError,omitempty"`
}

// TransactionIntentPayload is one requested transfer.
type TransactionIntentPayload struct {
	ChainID              *int64        `json:"chainId"`
	To                   *string       `json:"to"`
	Amount               *string       `json:"amount"` // wei, decimal string
	GasLimit             int64         `json:"gasLimit,omitempty"`
	MaxFeePerGas         string        `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string        `json:"maxPriorityFeePerGas,omitempty"`
	Nonce                *int64        `json:"nonce"`
	Data                 strfmt.Base64 `json:"data,omitempty"`
}

func (p *TransactionIntentPayload) Validate() error {
	if p.ChainID == nil {
		return errors.New("chainId is required")
	}
	if swag.StringValue(p.To) == "" {
		return errors.New("to is required")
	}
	if swag.StringValue(p.Amount) == "" {
		return errors.New("amount is required")
	}
	if p.Nonce == nil || *p.Nonce < 0 {
		return errors.New("nonce is required and must be non-negative")
	}
	if p.GasLimit < 0 {
		return errors.New("gasLimit must be non-negative")
	}
	return nil
}

// TransactionRecordResponse is the API shape of a transaction record.
type TransactionRecordResponse struct {
	ID          *string          `json:"id"`
	Fingerprint *string          `json:"fingerprint"`
	Status      *string          `json:"status"`
	RetryCount  int64            `json:"retryCount"`
	CreatedAt   *strfmt.DateTime `json:"createdAt"`
	LastError   string           `json:"lastError,omitempty"`
	LedgerID    string           `json:"ledgerId,omitempty"`
}

// PostSignTransactionPayload asks for a prepared record to be signed.
type PostSignTransactionPayload struct {
	TransactionID *string `json:"transactionId"`
}

func (p *PostSignTransactionPayload) Validate() error {
	if swag.StringValue(p.TransactionID) == "" {
		return errors.New("transactionId is required")
	}
	return nil
}

// SignTransactionResponse reports the signing outcome or collection progress.
type SignTransactionResponse struct {
	Status    *string       `json:"status"`
	Collected int64         `json:"collected,omitempty"`
	Required  int64         `json:"required,omitempty"`
	Signed    strfmt.Base64 `json:"signed,omitempty"`
	Hash      string        `json:"hash,omitempty"`
}

// PostSignTransactionBatchPayload signs several intents as one unit.
type PostSignTransactionBatchPayload struct {
	Intents []*TransactionIntentPayload `json:"intents"`
}

func (p *PostSignTransactionBatchPayload) Validate() error {
	if len(p.Intents) == 0 {
		return errors.New("intents must not be empty")
	}
	for i, intent := range p.Intents {
		if intent == nil {
			return errors.Errorf("intents[%d] is null", i)
		}
		if err := intent.Validate(); err != nil {
			return errors.Wrapf(err, "intents[%d]", i)
		}
	}
	return nil
}

// SignTransactionBatchResponse summarizes a finished batch.
type SignTransactionBatchResponse struct {
	Records     []*TransactionRecordResponse `json:"records"`
	TotalSigned int64                        `json:"totalSigned"`
	TotalFailed int64                        `json:"totalFailed"`
}

// PostBroadcastTransactionPayload submits a signed artifact.
type PostBroadcastTransactionPayload struct {
	TransactionID *string       `json:"transactionId"`
	Signed        strfmt.Base64 `json:"signed"`
}

func (p *PostBroadcastTransactionPayload) Validate() error {
	if swag.StringValue(p.TransactionID) == "" {
		return errors.New("transactionId is required")
	}
	if len(p.Signed) == 0 {
		return errors.New("signed is required")
	}
	return nil
}

// BroadcastTransactionResponse carries the ledger-side identifier.
type BroadcastTransactionResponse struct {
	LedgerID *string `json:"ledgerId"`
}

// PostCancelTransactionPayload aborts a record before broadcast.
type PostCancelTransactionPayload struct {
	TransactionID *string `json:"transactionId"`
}

func (p *PostCancelTransactionPayload) Validate() error {
	if swag.StringValue(p.TransactionID) == "" {
		return errors.New("transactionId is required")
	}
	return nil
}

// PostSignMessagePayload signs an arbitrary message with the bound provider.
type PostSignMessagePayload struct {
	Message *string `json:"message"`
}

func (p *PostSignMessagePayload) Validate() error {
	if swag.StringValue(p.Message) == "" {
		return errors.New("message is required")
	}
	return nil
}

// SignMessageResponse carries the produced signature.
type SignMessageResponse struct {
	Signature strfmt.Base64 `json:"signature"`
}

// MultiSigStatusResponse reports collection progress for one fingerprint.
type MultiSigStatusResponse struct {
	Fingerprint *string          `json:"fingerprint"`
	Collected   int64            `json:"collected"`
	Required    int64            `json:"required"`
	State       *string          `json:"state"`
	ExpiresAt   *strfmt.DateTime `json:"expiresAt"`
}

// MultiSigPendingResponse lists fingerprints still collecting signatures.
type MultiSigPendingResponse struct {
	Fingerprints []string `json:"fingerprints"`
}

// PutMultiSigPolicyPayload configures the signing policy roster.
type PutMultiSigPolicyPayload struct {
	Owner     *string `json:"owner"`
	Threshold *int64  `json:"threshold"`
}

func (p *PutMultiSigPolicyPayload) Validate() error {
	if swag.StringValue(p.Owner) == "" {
		return errors.New("owner is required")
	}
	if p.Threshold == nil || *p.Threshold < 1 {
		return errors.New("threshold is required and must be at least 1")
	}
	return nil
}

// MultiSigApproverPayload adds or removes one roster member.
type MultiSigApproverPayload struct {
	Actor    *string `json:"actor"`
	Approver *string `json:"approver"`
}

func (p *MultiSigApproverPayload) Validate() error {
	if swag.StringValue(p.Actor) == "" {
		return errors.New("actor is required")
	}
	if swag.StringValue(p.Approver) == "" {
		return errors.New("approver is required")
	}
	return nil
}

// PutMultiSigThresholdPayload changes the required signer count.
type PutMultiSigThresholdPayload struct {
	Actor     *string `json:"actor"`
	Threshold *int64  `json:"threshold"`
}

func (p *PutMultiSigThresholdPayload) Validate() error {
	if swag.StringValue(p.Actor) == "" {
		return errors.New("actor is required")
	}
	if p.Threshold == nil || *p.Threshold < 1 {
		return errors.New("threshold is required and must be at least 1")
	}
	return nil
}

// MultiSigPolicyResponse is the API shape of the active policy.
type MultiSigPolicyResponse struct {
	Threshold *int64   `json:"threshold"`
	SignerSet []string `json:"signerSet"`
}
