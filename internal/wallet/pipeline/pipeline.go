package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/wallet/connection"
	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
	"github.com/portara/walletcore/internal/wallet/ledger"
	"github.com/portara/walletcore/internal/wallet/multisig"
	"github.com/portara/walletcore/internal/wallet/provider"
)

// Config holds the pipeline's knobs.
type Config struct {
	// MaxBatchSize caps how many intents one batch call may carry.
	MaxBatchSize int
}

// Pipeline orchestrates prepare, sign, broadcast and cancel for transaction
// records. Signing routes to the bound provider directly or through the
// multi-signature coordinator when a threshold policy is set. Failures are
// classified and retried per their recovery strategy before surfacing.
type Pipeline struct {
	cfg         Config
	conn        *connection.Manager
	registry    *provider.Registry
	coordinator *multisig.Coordinator
	broadcaster ledger.Broadcaster
	retrier     *errclass.Retrier
	bus         *events.Bus
	now         func() time.Time

	mu        sync.Mutex
	records   map[string]*TransactionRecord
	confirmed map[string]string // fingerprint -> ledger id, never resubmitted
	policy    *multisig.Policy
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithNow overrides the time source, used by tests to pin the clock.
func WithNow(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithPolicy installs a threshold signing policy at construction time.
func WithPolicy(policy multisig.Policy) Option {
	return func(p *Pipeline) { p.policy = &policy }
}

// NewPipeline creates an empty Pipeline.
func NewPipeline(cfg Config, conn *connection.Manager, registry *provider.Registry, coordinator *multisig.Coordinator, broadcaster ledger.Broadcaster, retrier *errclass.Retrier, bus *events.Bus, opts ...Option) *Pipeline {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 100
	}

	p := &Pipeline{
		cfg:         cfg,
		conn:        conn,
		registry:    registry,
		coordinator: coordinator,
		broadcaster: broadcaster,
		retrier:     retrier,
		bus:         bus,
		now:         time.Now,
		records:     make(map[string]*TransactionRecord),
		confirmed:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SetPolicy switches signing to the given threshold policy. A threshold of
// one behaves like direct single-signer signing.
func (p *Pipeline) SetPolicy(policy multisig.Policy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policy = &policy
}

// ClearPolicy reverts to direct single-signer signing.
func (p *Pipeline) ClearPolicy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.policy = nil
}

// Prepare validates the intent and creates a pending record. Validation
// failures surface immediately and never create a record.
func (p *Pipeline) Prepare(ctx context.Context, intent Intent) (*TransactionRecord, error) {
	if err := intent.Validate(); err != nil {
		return nil, errclass.New(errclass.KindInvalidRequest, err)
	}

	record := &TransactionRecord{
		ID:          uuid.New().String(),
		Fingerprint: intent.Fingerprint(),
		Status:      StatusPending,
		CreatedAt:   p.now(),
		Intent:      intent,
	}

	p.mu.Lock()
	p.records[record.ID] = record
	cp := *record
	p.mu.Unlock()

	p.publishState(cp.Fingerprint, StatusPending, nil)

	log.Debug().
		Str("record_id", cp.ID).
		Str("fingerprint", cp.Fingerprint).
		Msg("Transaction prepared")

	return &cp, nil
}

// Sign produces a signed artifact for the record. Under a threshold policy
// the bound signer's contribution is submitted to the coordinator and the
// caller receives a progress report until the final approver signs.
func (p *Pipeline) Sign(ctx context.Context, recordID string) (*SignResult, error) {
	session, ok := p.conn.CurrentSession()
	if !ok {
		return nil, errclass.New(errclass.KindInvalidRequest, errors.New("no active connection session"))
	}

	p.mu.Lock()
	record, found := p.records[recordID]
	if !found {
		p.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.Errorf("unknown transaction record %s", recordID))
	}
	if record.Status != StatusPending && record.Status != StatusSigning {
		status := record.Status
		p.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.Errorf("cannot sign a transaction in status %s", status))
	}

	record.Status = StatusSigning
	fingerprint := record.Fingerprint
	intent := record.Intent
	policy := p.policy
	p.mu.Unlock()

	p.publishState(fingerprint, StatusSigning, nil)

	adapter, err := p.registry.Resolve(session.ProviderID)
	if err != nil {
		return nil, p.fail(recordID, fingerprint, err)
	}

	payload := provider.TxPayload{
		ChainID:              intent.ChainID,
		To:                   intent.To,
		Value:                intent.Amount,
		GasLimit:             intent.GasLimit,
		MaxFeePerGas:         intent.MaxFeePerGas,
		MaxPriorityFeePerGas: intent.MaxPriorityFeePerGas,
		Nonce:                intent.Nonce,
		Data:                 intent.Data,
		From:                 session.Address,
	}
	encoded, err := payload.Encode()
	if err != nil {
		return nil, p.fail(recordID, fingerprint, err)
	}

	var artifact *provider.SignedArtifact
	_, err = p.retrier.Do(ctx, session.ProviderID, func(ctx context.Context) error {
		var signErr error
		artifact, signErr = adapter.SignTransaction(ctx, encoded)
		return signErr
	})
	if err != nil {
		return nil, p.fail(recordID, fingerprint, err)
	}

	if policy == nil || policy.Threshold <= 1 {
		log.Info().
			Str("record_id", recordID).
			Str("fingerprint", fingerprint).
			Str("signer", artifact.Signer).
			Msg("Transaction signed")

		return &SignResult{Status: SignStatusSigned, Signed: artifact.Raw, Hash: artifact.Hash}, nil
	}

	// a rejected submission (late signer, cancelled collection) surfaces to
	// the caller without failing the shared record: the collection state is
	// authoritative for all signers
	result, err := p.coordinator.SubmitSignature(ctx, fingerprint, session.Address, artifact.Raw, *policy)
	if err != nil {
		return nil, errclass.Classify(err)
	}

	if result.Status == multisig.StatusPending {
		return &SignResult{Status: SignStatusPending, Collected: result.Collected, Required: result.Required}, nil
	}

	return &SignResult{
		Status:    SignStatusSigned,
		Collected: result.Collected,
		Required:  result.Required,
		Signed:    result.Artifact.Combined,
		Hash:      artifact.Hash,
	}, nil
}

// Broadcast submits the signed artifact to the ledger, retrying transient
// failures per the recovery strategy of their kind. A fingerprint already
// confirmed is never resubmitted; the prior ledger id is returned instead.
func (p *Pipeline) Broadcast(ctx context.Context, recordID string, signed []byte) (string, error) {
	p.mu.Lock()
	record, found := p.records[recordID]
	if !found {
		p.mu.Unlock()
		return "", errclass.New(errclass.KindInvalidRequest, errors.Errorf("unknown transaction record %s", recordID))
	}

	if ledgerID, done := p.confirmed[record.Fingerprint]; done {
		record.Status = StatusConfirmed
		record.LedgerID = null.StringFrom(ledgerID)
		p.mu.Unlock()

		log.Info().
			Str("record_id", recordID).
			Str("ledger_id", ledgerID).
			Msg("Fingerprint already confirmed, skipping resubmission")

		return ledgerID, nil
	}

	if record.Status != StatusSigning {
		status := record.Status
		p.mu.Unlock()
		return "", errclass.New(errclass.KindInvalidRequest, errors.Errorf("cannot broadcast a transaction in status %s", status))
	}

	record.Status = StatusBroadcasting
	fingerprint := record.Fingerprint
	p.mu.Unlock()

	p.publishState(fingerprint, StatusBroadcasting, nil)

	var receipt *ledger.Receipt
	retries, err := p.retrier.Do(ctx, "", func(ctx context.Context) error {
		var submitErr error
		receipt, submitErr = p.broadcaster.Submit(ctx, signed)
		return submitErr
	})

	p.mu.Lock()
	record.RetryCount = retries
	p.mu.Unlock()

	if err != nil {
		return "", p.fail(recordID, fingerprint, err)
	}

	p.mu.Lock()
	record.Status = StatusConfirmed
	record.LedgerID = null.StringFrom(receipt.ID)
	p.confirmed[fingerprint] = receipt.ID
	p.mu.Unlock()

	p.publishState(fingerprint, StatusConfirmed, nil)

	log.Info().
		Str("record_id", recordID).
		Str("fingerprint", fingerprint).
		Str("ledger_id", receipt.ID).
		Int("retries", retries).
		Msg("Transaction confirmed")

	return receipt.ID, nil
}

// Cancel aborts a record that has not been handed to the ledger yet and
// cascades to any open signature-collection record for its fingerprint.
func (p *Pipeline) Cancel(ctx context.Context, recordID string) error {
	p.mu.Lock()
	record, found := p.records[recordID]
	if !found {
		p.mu.Unlock()
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("unknown transaction record %s", recordID))
	}
	if record.Status != StatusPending && record.Status != StatusSigning {
		status := record.Status
		p.mu.Unlock()
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("cannot cancel a transaction in status %s", status))
	}

	record.Status = StatusCancelled
	fingerprint := record.Fingerprint
	p.mu.Unlock()

	p.publishState(fingerprint, StatusCancelled, nil)

	if p.coordinator != nil {
		if err := p.coordinator.Cancel(ctx, fingerprint); err != nil {
			log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Failed to cancel signature collection")
		}
	}

	log.Info().Str("record_id", recordID).Str("fingerprint", fingerprint).Msg("Transaction cancelled")

	return nil
}

// SignBatch prepares and signs each intent independently, reporting
// aggregate progress after every item. A failed item never rolls back the
// ones already signed.
func (p *Pipeline) SignBatch(ctx context.Context, intents []Intent, report func(BatchProgress)) (*BatchResult, error) {
	if len(intents) == 0 {
		return nil, errclass.New(errclass.KindInvalidRequest, errors.New("batch must contain at least one intent"))
	}
	if len(intents) > p.cfg.MaxBatchSize {
		return nil, errclass.New(errclass.KindInvalidRequest, errors.Errorf("batch size %d exceeds maximum %d", len(intents), p.cfg.MaxBatchSize))
	}

	batch := &BatchResult{}
	for i, intent := range intents {
		record, err := p.Prepare(ctx, intent)
		if err != nil {
			batch.TotalFailed++
			p.reportBatch(report, batch, i+1, len(intents))
			continue
		}

		if _, err := p.Sign(ctx, record.ID); err != nil {
			batch.TotalFailed++
		} else {
			batch.TotalSigned++
		}

		if updated, ok := p.GetRecord(record.ID); ok {
			record = updated
		}
		batch.Records = append(batch.Records, record)
		p.reportBatch(report, batch, i+1, len(intents))
	}

	log.Info().
		Int("total", len(intents)).
		Int("signed", batch.TotalSigned).
		Int("failed", batch.TotalFailed).
		Msg("Batch signing finished")

	return batch, nil
}

// GetRecord returns a copy of the record, if known.
func (p *Pipeline) GetRecord(recordID string) (*TransactionRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	record, ok := p.records[recordID]
	if !ok {
		return nil, false
	}

	cp := *record
	return &cp, true
}

// Reset drops all records and confirmed-fingerprint tracking, used on logout.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = make(map[string]*TransactionRecord)
	p.confirmed = make(map[string]string)
	p.policy = nil
}

// fail moves the record to the terminal failed state with the classified
// error attached and returns that error.
func (p *Pipeline) fail(recordID, fingerprint string, cause error) error {
	classified := errclass.Classify(cause)

	p.mu.Lock()
	if record, ok := p.records[recordID]; ok && !record.Status.Terminal() {
		record.Status = StatusFailed
		record.LastError = null.StringFrom(string(classified.Kind()))
	}
	p.mu.Unlock()

	p.publishState(fingerprint, StatusFailed, classified)

	log.Warn().
		Str("record_id", recordID).
		Str("fingerprint", fingerprint).
		Str("kind", string(classified.Kind())).
		AnErr("cause", classified.Cause()).
		Msg("Transaction failed")

	return classified
}

func (p *Pipeline) reportBatch(report func(BatchProgress), batch *BatchResult, done, total int) {
	if report == nil {
		return
	}
	report(BatchProgress{
		Progress:    done * 100 / total,
		Message:     fmt.Sprintf("processed %d of %d transactions", done, total),
		TotalSigned: batch.TotalSigned,
		TotalFailed: batch.TotalFailed,
	})
}

func (p *Pipeline) publishState(fingerprint string, status Status, cause error) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(events.Event{
		Type:              events.TypeTransactionStateChanged,
		Fingerprint:       fingerprint,
		TransactionStatus: string(status),
		Err:               cause,
	})
}
