package kvstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/storage"
)

// DefaultLogCap bounds the campaign log when no cap is configured.
const DefaultLogCap = 1000

// LogRepo is the append-only, capped campaign log. Entries are kept oldest
// first; once the cap is reached each append evicts the oldest entry.
type LogRepo struct {
	kv    storage.KV
	limit int
	mu    sync.Mutex
}

// NewLogRepo creates a LogRepo. A non-positive limit falls back to DefaultLogCap.
func NewLogRepo(kv storage.KV, limit int) *LogRepo {
	if limit <= 0 {
		limit = DefaultLogCap
	}
	return &LogRepo{kv: kv, limit: limit}
}

// Append records one entry. A log stored under a larger cap is trimmed to
// the current cap, oldest first, so the bound holds after every append.
func (r *LogRepo) Append(ctx context.Context, entry domain.CampaignLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.All(ctx)
	if err != nil {
		return err
	}
	if over := len(entries) - r.limit + 1; over > 0 {
		entries = entries[over:]
	}
	entries = append(entries, entry)

	if err := r.kv.Put(ctx, storage.KeyLogs, entries); err != nil {
		return fmt.Errorf("saving campaign log: %w", err)
	}
	return nil
}

// All returns a snapshot of the log, oldest first.
func (r *LogRepo) All(ctx context.Context) ([]domain.CampaignLogEntry, error) {
	entries := []domain.CampaignLogEntry{}
	if _, err := r.kv.Get(ctx, storage.KeyLogs, &entries); err != nil {
		return nil, fmt.Errorf("loading campaign log: %w", err)
	}
	if entries == nil {
		entries = []domain.CampaignLogEntry{}
	}
	return entries, nil
}
