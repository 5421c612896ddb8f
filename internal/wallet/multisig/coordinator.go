package multisig

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
)

// Policy describes the signing requirements bound to a pending record at the
// moment it is created. Later submissions are judged against the stored copy,
// not against whatever policy the caller happens to pass.
type Policy struct {
	// Threshold is the number of distinct signers required to finalize.
	Threshold int
	// SignerSet lists the identities allowed to contribute a signature.
	SignerSet []string
}

func (p Policy) validate() error {
	if p.Threshold < 1 {
		return errors.New("threshold must be at least 1")
	}
	if len(p.SignerSet) == 0 {
		return errors.New("signer set must not be empty")
	}
	if p.Threshold > len(p.SignerSet) {
		return errors.Errorf("threshold %d exceeds signer set size %d", p.Threshold, len(p.SignerSet))
	}
	return nil
}

// SignerSignature is one signer's contribution.
type SignerSignature struct {
	Signer    string `json:"signer"`
	Signature []byte `json:"signature"`
}

// Artifact is the combined output produced exactly once, when the threshold
// is reached. Signatures are ordered by signer identity so the combined
// payload is deterministic regardless of submission order.
type Artifact struct {
	Fingerprint string            `json:"fingerprint"`
	Signatures  []SignerSignature `json:"signatures"`
	Combined    []byte            `json:"combined"`
}

// SubmitResult reports the outcome of one submission.
type SubmitResult struct {
	Status    string    `json:"status"` // "pending" or "signed"
	Collected int       `json:"collected"`
	Required  int       `json:"required"`
	Artifact  *Artifact `json:"artifact,omitempty"`
}

// Status is the externally visible shape of a record.
type Status struct {
	Fingerprint string    `json:"fingerprint"`
	Collected   int       `json:"collected"`
	Required    int       `json:"required"`
	State       string    `json:"state"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

const (
	StatusPending = "pending"
	StatusSigned  = "signed"
)

type recordState string

const (
	stateCollecting recordState = "collecting"
	stateFinalized  recordState = "finalized"
	stateCancelled  recordState = "cancelled"
	stateExpired    recordState = "expired"
)

// record is one PendingMultiSigTransaction. Each record carries its own
// mutex so submissions for different fingerprints never contend.
type record struct {
	mu          sync.Mutex
	fingerprint string
	required    int
	signerSet   map[string]struct{}
	signatures  map[string][]byte
	createdAt   time.Time
	expiresAt   time.Time
	state       recordState
	artifact    *Artifact
}

// Config holds the coordinator's knobs.
type Config struct {
	// TTL bounds how long an unfinalized record accepts signatures.
	TTL time.Duration
}

// Coordinator accumulates independent signatures per transaction fingerprint
// until the policy threshold is met, then combines them exactly once.
type Coordinator struct {
	cfg Config
	bus *events.Bus
	now func() time.Time

	mu      sync.Mutex
	records map[string]*record
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithNow overrides the time source, used by tests to pin the clock.
func WithNow(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates an empty Coordinator.
func NewCoordinator(cfg Config, bus *events.Bus, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		bus:     bus,
		now:     time.Now,
		records: make(map[string]*record),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SubmitSignature records one signer's signature for the given fingerprint,
// creating the pending record on the first submission. A resubmission from a
// signer whose slot is already filled replaces their prior signature without
// advancing the count. The check-and-finalize step runs under the record's
// own critical section so the threshold fires exactly once.
func (c *Coordinator) SubmitSignature(ctx context.Context, fingerprint string, signer string, signature []byte, policy Policy) (*SubmitResult, error) {
	rec, err := c.getOrCreate(fingerprint, policy)
	if err != nil {
		return nil, errclass.New(errclass.KindInvalidRequest, err)
	}

	rec.mu.Lock()

	if rec.state == stateCollecting && c.now().After(rec.expiresAt) {
		rec.state = stateExpired
	}

	switch rec.state {
	case stateFinalized:
		rec.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.Errorf("signature collection for %s already finalized", fingerprint))
	case stateCancelled:
		rec.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.Errorf("signature collection for %s was cancelled", fingerprint))
	case stateExpired:
		rec.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.Errorf("signature collection for %s expired", fingerprint))
	}

	if _, ok := rec.signerSet[signer]; !ok {
		rec.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.Errorf("signer %s is not a member of the signer set", signer))
	}

	rec.signatures[signer] = append([]byte(nil), signature...)
	collected := len(rec.signatures)
	required := rec.required

	var result *SubmitResult
	if collected < required {
		result = &SubmitResult{Status: StatusPending, Collected: collected, Required: required}
	} else {
		rec.state = stateFinalized
		rec.artifact = combine(fingerprint, rec.signatures)
		result = &SubmitResult{Status: StatusSigned, Collected: collected, Required: required, Artifact: rec.artifact}
	}
	rec.mu.Unlock()

	c.publishProgress(fingerprint, collected, required)

	if result.Status == StatusSigned {
		log.Info().
			Str("fingerprint", fingerprint).
			Int("required", required).
			Msg("Signature threshold reached, artifact finalized")
	} else {
		log.Debug().
			Str("fingerprint", fingerprint).
			Str("signer", signer).
			Int("collected", collected).
			Int("required", required).
			Msg("Signature collected")
	}

	return result, nil
}

// Cancel marks the record for the fingerprint cancelled so no further
// signatures are accepted. Cancelling an unknown fingerprint is a no-op;
// cancelling a finalized record is rejected.
func (c *Coordinator) Cancel(ctx context.Context, fingerprint string) error {
	c.mu.Lock()
	rec, ok := c.records[fingerprint]
	c.mu.Unlock()

	if !ok {
		return nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	switch rec.state {
	case stateFinalized:
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("signature collection for %s already finalized", fingerprint))
	case stateCancelled:
		return nil
	}

	rec.state = stateCancelled
	log.Info().Str("fingerprint", fingerprint).Msg("Signature collection cancelled")

	return nil
}

// GetStatus reports progress for one fingerprint.
func (c *Coordinator) GetStatus(fingerprint string) (*Status, bool) {
	c.mu.Lock()
	rec, ok := c.records[fingerprint]
	c.mu.Unlock()

	if !ok {
		return nil, false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	return &Status{
		Fingerprint: rec.fingerprint,
		Collected:   len(rec.signatures),
		Required:    rec.required,
		State:       string(rec.state),
		ExpiresAt:   rec.expiresAt,
	}, true
}

// ListPending returns the fingerprints still collecting signatures, sorted.
func (c *Coordinator) ListPending() []string {
	c.mu.Lock()
	recs := make([]*record, 0, len(c.records))
	for _, rec := range c.records {
		recs = append(recs, rec)
	}
	c.mu.Unlock()

	pending := make([]string, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		if rec.state == stateCollecting {
			pending = append(pending, rec.fingerprint)
		}
		rec.mu.Unlock()
	}

	sort.Strings(pending)
	return pending
}

// SweepExpired marks collecting records past their expiry and drops records
// that reached a terminal state more than one TTL ago. Returns the number of
// records newly expired.
func (c *Coordinator) SweepExpired(ctx context.Context) int {
	now := c.now()

	c.mu.Lock()
	recs := make(map[string]*record, len(c.records))
	for fp, rec := range c.records {
		recs[fp] = rec
	}
	c.mu.Unlock()

	expired := 0
	var drop []string
	for fp, rec := range recs {
		rec.mu.Lock()
		if rec.state == stateCollecting && now.After(rec.expiresAt) {
			rec.state = stateExpired
			expired++
			log.Info().Str("fingerprint", fp).Msg("Signature collection expired")
		}
		if rec.state != stateCollecting && now.Sub(rec.expiresAt) > c.cfg.TTL {
			drop = append(drop, fp)
		}
		rec.mu.Unlock()
	}

	if len(drop) > 0 {
		c.mu.Lock()
		for _, fp := range drop {
			delete(c.records, fp)
		}
		c.mu.Unlock()
	}

	return expired
}

// Reset drops all records, used on logout.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[string]*record)
}

func (c *Coordinator) getOrCreate(fingerprint string, policy Policy) (*record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.records[fingerprint]; ok {
		return rec, nil
	}

	if err := policy.validate(); err != nil {
		return nil, err
	}

	signerSet := make(map[string]struct{}, len(policy.SignerSet))
	for _, signer := range policy.SignerSet {
		signerSet[signer] = struct{}{}
	}

	now := c.now()
	rec := &record{
		fingerprint: fingerprint,
		required:    policy.Threshold,
		signerSet:   signerSet,
		signatures:  make(map[string][]byte),
		createdAt:   now,
		expiresAt:   now.Add(c.cfg.TTL),
		state:       stateCollecting,
	}
	c.records[fingerprint] = rec

	log.Debug().
		Str("fingerprint", fingerprint).
		Int("threshold", policy.Threshold).
		Int("signers", len(policy.SignerSet)).
		Msg("Signature collection opened")

	return rec, nil
}

func (c *Coordinator) publishProgress(fingerprint string, collected, required int) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Type:                events.TypeMultiSigProgress,
		Fingerprint:         fingerprint,
		CollectedSignatures: collected,
		RequiredSignatures:  required,
	})
}

// combine assembles the finalized artifact. Signer order is lexical so the
// combined payload is stable regardless of arrival order.
func combine(fingerprint string, signatures map[string][]byte) *Artifact {
	signers := make([]string, 0, len(signatures))
	for signer := range signatures {
		signers = append(signers, signer)
	}
	sort.Strings(signers)

	parts := make([]SignerSignature, 0, len(signers))
	var combined []byte
	for _, signer := range signers {
		sig := append([]byte(nil), signatures[signer]...)
		parts = append(parts, SignerSignature{Signer: signer, Signature: sig})
		combined = append(combined, sig...)
	}

	return &Artifact{
		Fingerprint: fingerprint,
		Signatures:  parts,
		Combined:    combined,
	}
}
