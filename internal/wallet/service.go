package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/wallet/connection"
	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
	"github.com/portara/walletcore/internal/wallet/multisig"
	"github.com/portara/walletcore/internal/wallet/pipeline"
	"github.com/portara/walletcore/internal/wallet/provider"
)

// Service is the surface the wallet core offers upward to API layers.
type Service interface {
	// Connect establishes a session with the given provider.
	Connect(ctx context.Context, providerID string) (*connection.Session, error)

	// Disconnect tears down the current session. Idempotent.
	Disconnect(ctx context.Context) error

	// GetConnectionState returns the current connection state.
	GetConnectionState() connection.State

	// CurrentSession returns the active session, if any.
	CurrentSession() (*connection.Session, bool)

	// PrepareTransaction validates the intent and creates a pending record.
	PrepareTransaction(ctx context.Context, intent pipeline.Intent) (*pipeline.TransactionRecord, error)

	// SignTransaction signs the record, or reports collection progress when
	// additional approvers are required.
	SignTransaction(ctx context.Context, recordID string) (*pipeline.SignResult, error)

	// SignTransactionBatch signs a list of intents as a unit with aggregate
	// progress reporting. Partial success is expected.
	SignTransactionBatch(ctx context.Context, intents []pipeline.Intent, report func(pipeline.BatchProgress)) (*pipeline.BatchResult, error)

	// BroadcastTransaction submits a signed artifact and returns the ledger id.
	BroadcastTransaction(ctx context.Context, recordID string, signed []byte) (string, error)

	// CancelTransaction aborts a record not yet handed to the ledger.
	CancelTransaction(ctx context.Context, recordID string) error

	// GetTransaction returns the record, if known.
	GetTransaction(recordID string) (*pipeline.TransactionRecord, bool)

	// SignMessage signs an arbitrary message with the bound provider.
	SignMessage(ctx context.Context, message []byte) ([]byte, error)

	// ConfigureMultiSigPolicy starts a policy draft owned by the given
	// identity and activates it on the signing pipeline. A previous draft
	// is replaced.
	ConfigureMultiSigPolicy(owner string, threshold int) error

	// AddMultiSigApprover adds a signer to the policy roster. Owner only.
	AddMultiSigApprover(actor, approver string) error

	// RemoveMultiSigApprover removes a signer from the policy roster. Owner only.
	RemoveMultiSigApprover(actor, approver string) error

	// SetMultiSigThreshold changes the required signer count. Owner only.
	SetMultiSigThreshold(actor string, threshold int) error

	// GetMultiSigPolicy returns the active policy, if one is configured.
	GetMultiSigPolicy() (*multisig.Policy, bool)

	// ClearMultiSigPolicy drops the policy and reverts to direct signing.
	ClearMultiSigPolicy()

	// GetMultiSigStatus reports signature-collection progress for a fingerprint.
	GetMultiSigStatus(fingerprint string) (*multisig.Status, bool)

	// ListPendingMultiSigTransactions lists fingerprints still collecting.
	ListPendingMultiSigTransactions() []string

	// Subscribe registers a listener for state-change notifications and
	// returns an unsubscribe handle.
	Subscribe(cb events.Callback) func()

	// ErrorStats summarizes the classified-error audit log.
	ErrorStats() errclass.AuditStats

	// Start restores any persisted session and launches the expiry sweeps.
	Start(ctx context.Context) error

	// Stop halts the sweeps. Safe to call more than once.
	Stop()

	// Reset clears all connection, collection and transaction state.
	Reset(ctx context.Context)
}

type service struct {
	sweepInterval time.Duration

	registry    *provider.Registry
	manager     *connection.Manager
	coordinator *multisig.Coordinator
	pipeline    *pipeline.Pipeline
	bus         *events.Bus
	audit       *errclass.AuditLog

	policyMu sync.Mutex
	draft    *multisig.PolicyDraft

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	started  bool
	mu       sync.Mutex
}

// NewService assembles the wallet core facade.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(sweepInterval time.Duration, registry *provider.Registry, manager *connection.Manager, coordinator *multisig.Coordinator, p *pipeline.Pipeline, bus *events.Bus, audit *errclass.AuditLog) (Service, error) {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	return &service{
		sweepInterval: sweepInterval,
		registry:      registry,
		manager:       manager,
		coordinator:   coordinator,
		pipeline:      p,
		bus:           bus,
		audit:         audit,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}, nil
}

func (s *service) Connect(ctx context.Context, providerID string) (*connection.Session, error) {
	return s.manager.Connect(ctx, providerID)
}

func (s *service) Disconnect(ctx context.Context) error {
	return s.manager.Disconnect(ctx)
}

func (s *service) GetConnectionState() connection.State {
	return s.manager.GetState()
}

func (s *service) CurrentSession() (*connection.Session, bool) {
	return s.manager.CurrentSession()
}

func (s *service) PrepareTransaction(ctx context.Context, intent pipeline.Intent) (*pipeline.TransactionRecord, error) {
	return s.pipeline.Prepare(ctx, intent)
}

func (s *service) SignTransaction(ctx context.Context, recordID string) (*pipeline.SignResult, error) {
	return s.pipeline.Sign(ctx, recordID)
}

func (s *service) SignTransactionBatch(ctx context.Context, intents []pipeline.Intent, report func(pipeline.BatchProgress)) (*pipeline.BatchResult, error) {
	return s.pipeline.SignBatch(ctx, intents, report)
}

func (s *service) BroadcastTransaction(ctx context.Context, recordID string, signed []byte) (string, error) {
	return s.pipeline.Broadcast(ctx, recordID, signed)
}

func (s *service) CancelTransaction(ctx context.Context, recordID string) error {
	return s.pipeline.Cancel(ctx, recordID)
}

func (s *service) GetTransaction(recordID string) (*pipeline.TransactionRecord, bool) {
	return s.pipeline.GetRecord(recordID)
}

// SignMessage delegates to the bound provider. Failures are classified the
// same way transaction signing failures are.
func (s *service) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	session, ok := s.manager.CurrentSession()
	if !ok {
		return nil, errclass.New(errclass.KindInvalidRequest, errors.New("no active connection session"))
	}

	adapter, err := s.registry.Resolve(session.ProviderID)
	if err != nil {
		return nil, errclass.Classify(err)
	}

	signature, err := adapter.SignMessage(ctx, message)
	if err != nil {
		classified := errclass.Classify(err)
		if s.audit != nil {
			s.audit.Record(session.ProviderID, classified)
		}
		return nil, classified
	}

	return signature, nil
}

// ConfigureMultiSigPolicy starts a fresh draft and binds its materialized
// policy to the pipeline. Subsequent roster changes re-materialize the
// policy so new records always pick up the current roster.
func (s *service) ConfigureMultiSigPolicy(owner string, threshold int) error {
	draft, err := multisig.NewPolicyDraft(owner, threshold)
	if err != nil {
		return err
	}

	s.policyMu.Lock()
	defer s.policyMu.Unlock()

	s.draft = draft
	s.pipeline.SetPolicy(draft.Policy())

	log.Info().Int("threshold", threshold).Msg("Multi-signature policy configured")

	return nil
}

func (s *service) AddMultiSigApprover(actor, approver string) error {
	return s.mutateDraft(func(d *multisig.PolicyDraft) error {
		return d.AddApprover(actor, approver)
	})
}

func (s *service) RemoveMultiSigApprover(actor, approver string) error {
	return s.mutateDraft(func(d *multisig.PolicyDraft) error {
		return d.RemoveApprover(actor, approver)
	})
}

func (s *service) SetMultiSigThreshold(actor string, threshold int) error {
	return s.mutateDraft(func(d *multisig.PolicyDraft) error {
		return d.SetThreshold(actor, threshold)
	})
}

func (s *service) GetMultiSigPolicy() (*multisig.Policy, bool) {
	s.policyMu.Lock()
	defer s.policyMu.Unlock()

	if s.draft == nil {
		return nil, false
	}

	policy := s.draft.Policy()
	return &policy, true
}

func (s *service) ClearMultiSigPolicy() {
	s.policyMu.Lock()
	defer s.policyMu.Unlock()

	s.draft = nil
	s.pipeline.ClearPolicy()
}

func (s *service) mutateDraft(mutate func(*multisig.PolicyDraft) error) error {
	s.policyMu.Lock()
	defer s.policyMu.Unlock()

	if s.draft == nil {
		return errclass.New(errclass.KindInvalidRequest, errors.New("no multi-signature policy configured"))
	}
	if err := mutate(s.draft); err != nil {
		return err
	}

	s.pipeline.SetPolicy(s.draft.Policy())
	return nil
}

func (s *service) GetMultiSigStatus(fingerprint string) (*multisig.Status, bool) {
	return s.coordinator.GetStatus(fingerprint)
}

func (s *service) ListPendingMultiSigTransactions() []string {
	return s.coordinator.ListPending()
}

func (s *service) Subscribe(cb events.Callback) func() {
	return s.bus.Subscribe(cb)
}

func (s *service) ErrorStats() errclass.AuditStats {
	return s.audit.Stats()
}

// Start restores the persisted session and runs the periodic expiry sweeps
// until Stop is called. A failed restore leaves the state machine in unknown
// and is logged, not fatal.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("wallet service already started")
	}
	s.started = true
	s.mu.Unlock()

	if err := s.manager.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Session restore failed, continuing without a session")
	}

	go s.sweepLoop()

	log.Info().Dur("sweep_interval", s.sweepInterval).Msg("Wallet service started")

	return nil
}

func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)

		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.done
		}
	})
}

func (s *service) Reset(ctx context.Context) {
	s.policyMu.Lock()
	s.draft = nil
	s.policyMu.Unlock()

	s.manager.Reset(ctx)
	s.coordinator.Reset()
	s.pipeline.Reset()
	if s.audit != nil {
		s.audit.Reset()
	}
}

func (s *service) sweepLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if s.manager.SweepExpired(ctx) {
				log.Info().Msg("Expired session swept")
			}
			if n := s.coordinator.SweepExpired(ctx); n > 0 {
				log.Info().Int("count", n).Msg("Expired signature collections swept")
			}
			cancel()
		}
	}
}
