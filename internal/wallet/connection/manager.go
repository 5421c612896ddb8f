package connection

import (
	"context"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
	"github.com/portara/walletcore/internal/wallet/provider"
)

// Config holds the manager's timing knobs.
type Config struct {
	// SessionTTL bounds how long a persisted session's credentials are trusted.
	SessionTTL time.Duration
	// CacheTTL bounds the connect-result cache, independent of SessionTTL.
	CacheTTL time.Duration
	// HandshakeTimeout is the per-call deadline for the provider handshake.
	HandshakeTimeout time.Duration
	// Metadata is handed to adapters during the handshake.
	Metadata provider.Metadata
}

type cacheEntry struct {
	creds    provider.Credentials
	cachedAt time.Time
}

// Manager owns the single current connection's lifecycle: the state machine,
// the short-lived connect-result cache and the persisted session record.
// All mutations for the session key go through the manager's critical
// section; events are delivered after the section is released.
type Manager struct {
	cfg      Config
	registry *provider.Registry
	store    Store
	bus      *events.Bus
	audit    *errclass.AuditLog
	now      func() time.Time

	mu         sync.Mutex
	state      State
	session    *Session
	cache      map[string]cacheEntry
	generation uint64
}

// Option customizes a Manager.
type Option func(*Manager)

// WithNow overrides the time source, used by tests to pin the clock.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager in the disconnected state.
func NewManager(cfg Config, registry *provider.Registry, store Store, bus *events.Bus, audit *errclass.AuditLog, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg,
		registry: registry,
		store:    store,
		bus:      bus,
		audit:    audit,
		now:      time.Now,
		state:    StateDisconnected,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// GetState returns the current state. Pure read, no side effects.
func (m *Manager) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentSession returns a copy of the active session, if any.
func (m *Manager) CurrentSession() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, false
	}

	cp := *m.session
	return &cp, true
}

// Connect establishes a session with the given provider, short-circuiting to
// a cached handshake result when a non-expired cache entry exists for that
// provider. Failures are returned classified.
func (m *Manager) Connect(ctx context.Context, providerID string) (*Session, error) {
	m.mu.Lock()

	if entry, ok := m.cache[providerID]; ok {
		if m.now().Sub(entry.cachedAt) < m.cfg.CacheTTL {
			session, event := m.sessionFromCacheLocked(providerID, entry.creds)
			m.mu.Unlock()
			m.publish(event)

			log.Debug().Str("provider_id", providerID).Msg("Connect served from cache")
			return session, nil
		}
		delete(m.cache, providerID)
	}

	if m.state == StateConnecting {
		m.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.New("a connection attempt is already in progress"))
	}

	m.generation++
	gen := m.generation
	event := m.setStateLocked(StateConnecting, providerID, nil)
	m.mu.Unlock()
	m.publish(event)

	adapter, err := m.registry.Resolve(providerID)
	if err != nil {
		if errors.Is(err, provider.ErrUnknownProvider) {
			return nil, m.failConnect(gen, providerID, errclass.New(errclass.KindInvalidRequest, err))
		}
		return nil, m.failConnect(gen, providerID, err)
	}

	if !adapter.Installed(ctx) {
		return nil, m.failConnect(gen, providerID, errclass.ErrWalletNotInstalled)
	}

	return m.handshake(ctx, gen, providerID, adapter)
}

// handshake races the adapter handshake against the configured timeout.
// Whichever resolves first wins; the loser's late resolution is discarded
// rather than applied.
func (m *Manager) handshake(ctx context.Context, gen uint64, providerID string, adapter provider.Adapter) (*Session, error) {
	hctx, cancel := context.WithTimeout(ctx, m.cfg.HandshakeTimeout)
	defer cancel()

	type handshakeResult struct {
		creds *provider.Credentials
		err   error
	}

	resultCh := make(chan handshakeResult, 1)
	go func() {
		creds, err := adapter.Connect(hctx, m.cfg.Metadata)
		resultCh <- handshakeResult{creds: creds, err: err}
	}()

	select {
	case <-hctx.Done():
		// The timeout won. Drain the handshake in the background so a late
		// success is observed and dropped instead of overwriting the
		// user-visible timeout state.
		go func() {
			if result := <-resultCh; result.err == nil {
				log.Warn().Str("provider_id", providerID).Msg("Discarding late handshake success after timeout")
			}
		}()
		return nil, m.failConnect(gen, providerID, hctx.Err())

	case result := <-resultCh:
		if result.err != nil {
			return nil, m.failConnect(gen, providerID, result.err)
		}
		return m.completeConnect(gen, providerID, result.creds)
	}
}

func (m *Manager) completeConnect(gen uint64, providerID string, creds *provider.Credentials) (*Session, error) {
	m.mu.Lock()

	if m.generation != gen {
		m.mu.Unlock()
		return nil, errclass.New(errclass.KindInvalidRequest, errors.New("connection attempt superseded"))
	}

	now := m.now()
	session := &Session{
		Status:      StateConnected,
		ProviderID:  providerID,
		Address:     creds.Address,
		PublicKey:   creds.PublicKey,
		ChainID:     creds.ChainID,
		ConnectedAt: now,
		ExpiresAt:   now.Add(m.cfg.SessionTTL),
	}

	m.session = session
	m.cache[providerID] = cacheEntry{creds: *creds, cachedAt: now}
	event := m.setStateLocked(StateConnected, providerID, nil)

	cp := *session
	m.mu.Unlock()
	m.publish(event)

	if err := m.store.Save(context.Background(), &cp); err != nil {
		// local state is authoritative, persistence is best effort
		log.Warn().Err(err).Msg("Failed to persist connection session")
	}

	log.Info().
		Str("provider_id", providerID).
		Str("address", cp.Address).
		Int64("chain_id", cp.ChainID).
		Msg("Connection established")

	return &cp, nil
}

func (m *Manager) failConnect(gen uint64, providerID string, cause error) error {
	classified := errclass.Classify(cause)
	if m.audit != nil {
		m.audit.Record(providerID, classified)
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return classified
	}

	m.session = nil
	event := m.setStateLocked(StateError, providerID, classified)
	m.mu.Unlock()
	m.publish(event)

	log.Warn().
		Str("provider_id", providerID).
		Str("kind", string(classified.Kind())).
		AnErr("cause", classified.Cause()).
		Msg("Connection attempt failed")

	return classified
}

// Disconnect tears down the current session. The remote teardown is best
// effort; local state always ends up disconnected. Idempotent.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()

	if m.state == StateDisconnected && m.session == nil {
		m.mu.Unlock()
		return nil
	}

	providerID := ""
	if m.session != nil {
		providerID = m.session.ProviderID
	}

	m.generation++
	m.session = nil
	m.cache = make(map[string]cacheEntry)
	event := m.setStateLocked(StateDisconnected, providerID, nil)
	m.mu.Unlock()
	m.publish(event)

	if providerID != "" {
		if adapter, err := m.registry.Resolve(providerID); err == nil {
			if err := adapter.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Str("provider_id", providerID).Msg("Remote teardown failed, local state cleared anyway")
			}
		}
	}

	if err := m.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to clear persisted session")
	}

	log.Info().Str("provider_id", providerID).Msg("Disconnected")

	return nil
}

// Restore loads the persisted session after a process restart. An unreadable
// record yields StateUnknown; an expired one is cleared.
func (m *Manager) Restore(ctx context.Context) error {
	session, err := m.store.Load(ctx)
	if err != nil {
		m.mu.Lock()
		event := m.setStateLocked(StateUnknown, "", nil)
		m.mu.Unlock()
		m.publish(event)
		return errors.Wrap(err, "failed to restore session")
	}

	m.mu.Lock()

	if session == nil {
		event := m.setStateLocked(StateDisconnected, "", nil)
		m.mu.Unlock()
		m.publish(event)
		return nil
	}

	if session.Expired(m.now()) || session.Status != StateConnected {
		m.session = nil
		event := m.setStateLocked(StateDisconnected, session.ProviderID, nil)
		m.mu.Unlock()
		m.publish(event)

		if err := m.store.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to clear stale session")
		}
		return nil
	}

	m.session = session
	event := m.setStateLocked(StateConnected, session.ProviderID, nil)
	m.mu.Unlock()
	m.publish(event)

	log.Info().Str("provider_id", session.ProviderID).Time("expires_at", session.ExpiresAt).Msg("Session restored")

	return nil
}

// SweepExpired forces connected → disconnected once the persisted session's
// expiry has passed, and drops stale cache entries. Returns true when the
// session was expired.
func (m *Manager) SweepExpired(ctx context.Context) bool {
	m.mu.Lock()

	now := m.now()
	for id, entry := range m.cache {
		if now.Sub(entry.cachedAt) >= m.cfg.CacheTTL {
			delete(m.cache, id)
		}
	}

	if m.state != StateConnected || m.session == nil || !m.session.Expired(now) {
		m.mu.Unlock()
		return false
	}

	providerID := m.session.ProviderID
	m.generation++
	m.session = nil
	m.cache = make(map[string]cacheEntry)
	event := m.setStateLocked(StateDisconnected, providerID, nil)
	m.mu.Unlock()
	m.publish(event)

	if err := m.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to clear expired session")
	}

	log.Info().Str("provider_id", providerID).Msg("Session expired, forced disconnect")

	return true
}

// Reset clears all connection state, used on logout.
func (m *Manager) Reset(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	m.session = nil
	m.cache = make(map[string]cacheEntry)
	event := m.setStateLocked(StateDisconnected, "", nil)
	m.mu.Unlock()
	m.publish(event)

	if err := m.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to clear persisted session on reset")
	}
}

// sessionFromCacheLocked serves a connect call from a fresh cache entry.
// Caller holds m.mu.
func (m *Manager) sessionFromCacheLocked(providerID string, creds provider.Credentials) (*Session, events.Event) {
	if m.session != nil && m.session.ProviderID == providerID && m.state == StateConnected {
		cp := *m.session
		return &cp, events.Event{}
	}

	now := m.now()
	session := &Session{
		Status:      StateConnected,
		ProviderID:  providerID,
		Address:     creds.Address,
		PublicKey:   creds.PublicKey,
		ChainID:     creds.ChainID,
		ConnectedAt: now,
		ExpiresAt:   now.Add(m.cfg.SessionTTL),
	}
	m.session = session
	event := m.setStateLocked(StateConnected, providerID, nil)

	cp := *session
	return &cp, event
}

// setStateLocked transitions the state and builds the notification event.
// Caller holds m.mu and publishes the returned event after unlocking.
func (m *Manager) setStateLocked(next State, providerID string, cause *errclass.Error) events.Event {
	if m.state == next && cause == nil {
		return events.Event{}
	}

	m.state = next
	if m.session != nil {
		m.session.Status = next
		if cause != nil {
			m.session.LastError = null.StringFrom(string(cause.Kind()))
		}
	}

	event := events.Event{
		Type:            events.TypeConnectionStateChanged,
		ProviderID:      providerID,
		ConnectionState: string(next),
	}
	if cause != nil {
		event.Err = cause
	}

	return event
}

// publish delivers a state-change event, skipping empty ones.
func (m *Manager) publish(event events.Event) {
	if m.bus == nil || event.Type == "" {
		return
	}
	m.bus.Publish(event)
}
