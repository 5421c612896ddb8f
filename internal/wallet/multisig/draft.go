package multisig

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/portara/walletcore/internal/wallet/errclass"
)

// PolicyDraft is the approver roster for a wallet policy that has not been
// bound to a pending record yet. The owner always counts as a signer on top
// of the roster, so a draft with N approvers supports thresholds up to N+1.
// Only the owner may mutate the roster.
type PolicyDraft struct {
	mu        sync.Mutex
	owner     string
	threshold int
	approvers map[string]struct{}
}

// NewPolicyDraft starts a draft with the owner as the sole implicit signer.
func NewPolicyDraft(owner string, threshold int) (*PolicyDraft, error) {
	if owner == "" {
		return nil, errclass.New(errclass.KindInvalidRequest, errors.New("draft owner must not be empty"))
	}
	if threshold < 1 {
		return nil, errclass.New(errclass.KindInvalidRequest, errors.New("threshold must be at least 1"))
	}

	return &PolicyDraft{
		owner:     owner,
		threshold: threshold,
		approvers: make(map[string]struct{}),
	}, nil
}

// AddApprover adds a signer to the roster. Owner-initiated only.
func (d *PolicyDraft) AddApprover(actor, approver string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkActor(actor); err != nil {
		return err
	}
	if approver == "" || approver == d.owner {
		return errclass.New(errclass.KindInvalidRequest, errors.New("approver must be a distinct non-empty identity"))
	}
	if _, ok := d.approvers[approver]; ok {
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("%s is already an approver", approver))
	}

	d.approvers[approver] = struct{}{}
	return nil
}

// RemoveApprover removes a signer from the roster. Owner-initiated only.
// The roster may never drop below one approver, and the configured threshold
// must stay satisfiable by the remaining roster plus the owner.
func (d *PolicyDraft) RemoveApprover(actor, approver string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkActor(actor); err != nil {
		return err
	}
	if _, ok := d.approvers[approver]; !ok {
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("%s is not an approver", approver))
	}
	if len(d.approvers) <= 1 {
		return errclass.New(errclass.KindInvalidRequest, errors.New("roster must keep at least one approver"))
	}

	remaining := len(d.approvers) - 1
	if d.threshold > remaining+1 {
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("removing %s would make threshold %d unsatisfiable", approver, d.threshold))
	}

	delete(d.approvers, approver)
	return nil
}

// SetThreshold changes the required signer count. Owner-initiated only.
func (d *PolicyDraft) SetThreshold(actor string, threshold int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkActor(actor); err != nil {
		return err
	}
	if threshold < 1 || threshold > len(d.approvers)+1 {
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("threshold %d out of range for %d approvers plus owner", threshold, len(d.approvers)))
	}

	d.threshold = threshold
	return nil
}

// Policy materializes the draft into the policy bound to pending records.
// The signer set is the roster plus the owner, sorted.
func (d *PolicyDraft) Policy() Policy {
	d.mu.Lock()
	defer d.mu.Unlock()

	signers := make([]string, 0, len(d.approvers)+1)
	signers = append(signers, d.owner)
	for approver := range d.approvers {
		signers = append(signers, approver)
	}
	sort.Strings(signers)

	return Policy{Threshold: d.threshold, SignerSet: signers}
}

func (d *PolicyDraft) checkActor(actor string) error {
	if actor != d.owner {
		return errclass.New(errclass.KindInvalidRequest, errors.Errorf("only the owner may change the roster"))
	}
	return nil
}
