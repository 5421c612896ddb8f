package errclass

import (
	"sync"
	"time"
)

// AuditEntry is one classified fault kept for later statistics.
type AuditEntry struct {
	Kind        Kind
	ProviderID  string
	Recoverable bool
	RawMessage  string
	OccurredAt  time.Time
}

// AuditStats aggregates the retained entries.
type AuditStats struct {
	Total         int
	ByKind        map[Kind]int
	ByProvider    map[string]int
	Recoverable   int
	Unrecoverable int
}

// AuditLog is a bounded in-memory log of classified errors. When the capacity
// is reached the oldest entries are evicted first.
type AuditLog struct {
	mu       sync.Mutex
	capacity int
	entries  []AuditEntry
}

const defaultAuditCapacity = 1000

// NewAuditLog creates a log retaining at most capacity entries.
func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditLog{capacity: capacity}
}

// Record appends the classified error attributed to the given provider.
func (l *AuditLog) Record(providerID string, err *Error) {
	if err == nil {
		return
	}

	rawMessage := ""
	if cause := err.Cause(); cause != nil {
		rawMessage = cause.Error()
	}

	entry := AuditEntry{
		Kind:        err.Kind(),
		ProviderID:  providerID,
		Recoverable: err.Kind().Recoverable(),
		RawMessage:  rawMessage,
		OccurredAt:  time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Stats aggregates the retained entries by kind, provider and recoverability.
func (l *AuditLog) Stats() AuditStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := AuditStats{
		Total:      len(l.entries),
		ByKind:     make(map[Kind]int),
		ByProvider: make(map[string]int),
	}

	for _, e := range l.entries {
		stats.ByKind[e.Kind]++
		if e.ProviderID != "" {
			stats.ByProvider[e.ProviderID]++
		}
		if e.Recoverable {
			stats.Recoverable++
		} else {
			stats.Unrecoverable++
		}
	}

	return stats
}

// Reset drops all retained entries.
func (l *AuditLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
