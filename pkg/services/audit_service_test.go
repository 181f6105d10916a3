package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// mockAuditRepoForHistory serves canned ledger entries and records the limit
// each query was issued with.
type mockAuditRepoForHistory struct {
	entries   []*models.MergeAuditEntry
	lastLimit int
	listErr   error
}

func (m *mockAuditRepoForHistory) Create(ctx context.Context, entry *models.MergeAuditEntry) error {
	m.entries = append([]*models.MergeAuditEntry{entry}, m.entries...)
	return nil
}

func (m *mockAuditRepoForHistory) GetMergeEntry(ctx context.Context, mergeID uuid.UUID) (*models.MergeAuditEntry, error) {
	for _, entry := range m.entries {
		if entry.MergeID == mergeID && entry.Action == models.AuditActionMerge {
			return entry, nil
		}
	}
	return nil, nil
}

func (m *mockAuditRepoForHistory) ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]*models.MergeAuditEntry, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	var matched []*models.MergeAuditEntry
	for _, entry := range m.entries {
		if entry.DeprecatedTeamID == teamID || entry.CanonicalTeamID == teamID {
			matched = append(matched, entry)
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *mockAuditRepoForHistory) ListRecent(ctx context.Context, limit int) ([]*models.MergeAuditEntry, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.entries) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

func (m *mockAuditRepoForHistory) MarkReverted(ctx context.Context, entryID uuid.UUID, revertedAt time.Time, revertedBy string, revertReason *string) error {
	return nil
}

func historyEntry(action models.AuditAction, deprecated, canonical uuid.UUID, createdAt time.Time) *models.MergeAuditEntry {
	return &models.MergeAuditEntry{
		ID:               uuid.New(),
		Action:           action,
		MergeID:          uuid.New(),
		DeprecatedTeamID: deprecated,
		CanonicalTeamID:  canonical,
		Operator:         "ops@pitchrank.io",
		CreatedAt:        createdAt,
	}
}

func TestAuditService_GetTeamHistory(t *testing.T) {
	teamID := uuid.New()
	otherID := uuid.New()
	base := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

	repo := &mockAuditRepoForHistory{
		entries: []*models.MergeAuditEntry{
			historyEntry(models.AuditActionRevert, teamID, otherID, base.Add(time.Hour)),
			historyEntry(models.AuditActionMerge, teamID, otherID, base),
			historyEntry(models.AuditActionMerge, uuid.New(), uuid.New(), base),
		},
	}
	svc := NewAuditService(repo, zap.NewNop())

	entries, err := svc.GetTeamHistory(context.Background(), teamID, 20)
	require.NoError(t, err)
	require.Len(t, entries, 2, "only entries touching the team belong in its history")
	assert.Equal(t, models.AuditActionRevert, entries[0].Action)
	assert.Equal(t, models.AuditActionMerge, entries[1].Action)
	assert.Equal(t, 20, repo.lastLimit)
}

func TestAuditService_GetTeamHistory_UnknownTeamIsEmpty(t *testing.T) {
	repo := &mockAuditRepoForHistory{}
	svc := NewAuditService(repo, zap.NewNop())

	// The ledger never 404s; a team with no merge history has an empty one.
	entries, err := svc.GetTeamHistory(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAuditService_LimitClamped(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{name: "zero falls back to default", requested: 0, want: defaultAuditLimit},
		{name: "negative falls back to default", requested: -5, want: defaultAuditLimit},
		{name: "oversized is capped", requested: 9999, want: maxAuditLimit},
		{name: "in range passes through", requested: 25, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAuditRepoForHistory{}
			svc := NewAuditService(repo, zap.NewNop())

			_, err := svc.GetTeamHistory(context.Background(), uuid.New(), tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.lastLimit)

			_, err = svc.GetRecent(context.Background(), tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.lastLimit)
		})
	}
}

func TestAuditService_GetRecent(t *testing.T) {
	base := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockAuditRepoForHistory{
		entries: []*models.MergeAuditEntry{
			historyEntry(models.AuditActionMerge, uuid.New(), uuid.New(), base.Add(time.Hour)),
			historyEntry(models.AuditActionMerge, uuid.New(), uuid.New(), base),
		},
	}
	svc := NewAuditService(repo, zap.NewNop())

	entries, err := svc.GetRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAuditService_RepositoryErrorsWrapped(t *testing.T) {
	repo := &mockAuditRepoForHistory{listErr: assert.AnError}
	svc := NewAuditService(repo, zap.NewNop())

	_, err := svc.GetTeamHistory(context.Background(), uuid.New(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to get team history")

	_, err = svc.GetRecent(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to get recent audit entries")
}
