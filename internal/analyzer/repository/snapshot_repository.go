package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"macrodesk/internal/analyzer/config"
	"macrodesk/internal/analyzer/dto"
	"macrodesk/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

const snapshotKey = "analyzer.snapshot.current"

// snapshotRepository keeps only the latest cycle's snapshot in Redis so the
// rendering API survives restarts. Historical scores are never retained.
type snapshotRepository struct {
	cfg         *config.Config
	redisClient *redis.Client
}

// NewSnapshotRepository creates a new SnapshotRepository backed by Redis.
func NewSnapshotRepository(cfg *config.Config, redisClient *redis.Client) SnapshotRepository {
	return &snapshotRepository{cfg: cfg, redisClient: redisClient}
}

// Save overwrites the current snapshot with a TTL bound.
func (r *snapshotRepository) Save(ctx context.Context, snapshot *dto.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.redisClient.Set(ctx, snapshotKey, payload, r.cfg.Analyzer.SnapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	return nil
}

// Get returns the current snapshot, or nil when no cycle has completed yet.
func (r *snapshotRepository) Get(ctx context.Context) (*dto.Snapshot, error) {
	payload, err := r.redisClient.Get(ctx, snapshotKey).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot dto.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
