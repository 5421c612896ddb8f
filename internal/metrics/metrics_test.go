package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/portara/walletcore/internal/metrics"
	"github.com/portara/walletcore/internal/wallet/errclass"
	"github.com/portara/walletcore/internal/wallet/events"
)

func TestObserveEvent(t *testing.T) {
	m := metrics.New()

	m.ObserveEvent(events.Event{Type: events.TypeConnectionStateChanged, ConnectionState: "connected"})
	m.ObserveEvent(events.Event{Type: events.TypeConnectionStateChanged, ConnectionState: "connected"})
	m.ObserveEvent(events.Event{Type: events.TypeTransactionStateChanged, TransactionStatus: "confirmed"})
	m.ObserveEvent(events.Event{Type: events.TypeMultiSigProgress, CollectedSignatures: 1, RequiredSignatures: 2})

	count, err := testutil.GatherAndCount(m.Registry(),
		"walletcore_connection_transitions_total",
		"walletcore_transaction_transitions_total",
		"walletcore_multisig_signatures_total",
	)
	assert.NoError(t, err)
	// one series per distinct label set
	assert.Equal(t, 3, count)
}

func TestCounters(t *testing.T) {
	m := metrics.New()

	m.RecordError(errclass.KindNetworkError, "localkey")
	m.RecordError(errclass.KindTimeout, "")
	m.RecordRetry(errclass.KindNetworkError, 1, time.Second)

	count, err := testutil.GatherAndCount(m.Registry(),
		"walletcore_errors_classified_total",
		"walletcore_errors_retries_total",
	)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}
