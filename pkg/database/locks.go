package database

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TeamLockKey derives the advisory lock key for a team. FNV-1a over the
// UUID bytes gives a stable 64-bit key that fits pg_advisory_xact_lock.
func TeamLockKey(teamID uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write(teamID[:])
	return int64(h.Sum64())
}

// AcquireTeamLocks takes transaction-scoped advisory locks for the given
// teams. Locks are acquired in ascending key order so concurrent merges
// touching the same teams serialize instead of deadlocking. The locks are
// released automatically when the transaction commits or rolls back.
func AcquireTeamLocks(ctx context.Context, tx pgx.Tx, teamIDs ...uuid.UUID) error {
	keys := make([]int64, 0, len(teamIDs))
	for _, id := range teamIDs {
		keys = append(keys, TeamLockKey(id))
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
			return fmt.Errorf("failed to acquire advisory lock %d: %w", key, err)
		}
	}
	return nil
}
