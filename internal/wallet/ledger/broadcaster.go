package ledger

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Receipt is the outcome of one broadcast attempt.
type Receipt struct {
	Accepted bool   `json:"accepted"`
	ID       string `json:"id,omitempty"`
}

// Broadcaster submits a signed artifact to the remote ledger. Submissions
// are not idempotent on the remote side; callers track fingerprints and must
// not resubmit one already confirmed.
type Broadcaster interface {
	Submit(ctx context.Context, raw []byte) (*Receipt, error)
}

// EVMBroadcaster submits raw EIP-2718 encoded transactions over one of
// several RPC endpoints, rotating to the next endpoint when one fails.
type EVMBroadcaster struct {
	urls []string

	mu      sync.Mutex
	clients []*ethclient.Client
	current int
}

// NewEVMBroadcaster dials the given RPC URLs. Endpoints that cannot be
// reached at construction time are retried lazily on use.
func NewEVMBroadcaster(urls []string) (*EVMBroadcaster, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	clients := make([]*ethclient.Client, len(urls))
	reachable := 0
	for i, url := range urls {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().Str("url", url).Err(err).Msg("Failed to connect to RPC node, will retry on use")
			continue
		}
		clients[i] = client
		reachable++
	}

	if reachable == 0 {
		return nil, errors.New("failed to connect to any RPC node")
	}

	return &EVMBroadcaster{urls: urls, clients: clients}, nil
}

// Close closes all underlying connections.
func (b *EVMBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, client := range b.clients {
		if client != nil {
			client.Close()
		}
	}
}

// Submit decodes and sends the signed transaction, trying each endpoint in
// turn starting from the last one that worked. The returned receipt carries
// the transaction hash as the ledger-side identifier.
func (b *EVMBroadcaster) Submit(ctx context.Context, raw []byte) (*Receipt, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode signed transaction")
	}

	var lastErr error
	for i := 0; i < len(b.urls); i++ {
		idx, client, err := b.clientAt(i)
		if err != nil {
			lastErr = err
			continue
		}

		if err := client.SendTransaction(ctx, tx); err != nil {
			lastErr = err
			log.Warn().
				Str("url", b.urls[idx]).
				Str("tx_hash", tx.Hash().Hex()).
				Err(err).
				Msg("Broadcast attempt failed, rotating endpoint")
			continue
		}

		b.mu.Lock()
		b.current = idx
		b.mu.Unlock()

		log.Info().
			Str("url", b.urls[idx]).
			Str("tx_hash", tx.Hash().Hex()).
			Msg("Transaction broadcast accepted")

		return &Receipt{Accepted: true, ID: tx.Hash().Hex()}, nil
	}

	return nil, errors.Wrap(lastErr, "all RPC endpoints failed")
}

// clientAt returns the client at offset i from the current endpoint,
// redialing endpoints that were unreachable earlier.
func (b *EVMBroadcaster) clientAt(i int) (int, *ethclient.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := (b.current + i) % len(b.urls)
	if b.clients[idx] != nil {
		return idx, b.clients[idx], nil
	}

	client, err := ethclient.Dial(b.urls[idx])
	if err != nil {
		return idx, nil, errors.Wrapf(err, "failed to dial %s", b.urls[idx])
	}

	b.clients[idx] = client
	return idx, client, nil
}
