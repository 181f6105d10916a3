//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/pitchrank/pitchrank-engine/pkg/models"
)

// createTestAlias binds a provider ref to a team.
func (tc *registryTestContext) createTestAlias(ctx context.Context, team *models.Team, provider, providerTeamID string) *models.TeamAlias {
	tc.t.Helper()
	alias := &models.TeamAlias{
		Provider:       provider,
		ProviderTeamID: providerTeamID,
		TeamID:         team.ID,
		MatchMethod:    models.MatchMethodExact,
	}
	if err := tc.aliases.Create(ctx, alias); err != nil {
		tc.t.Fatalf("failed to create test alias: %v", err)
	}
	return alias
}

func TestTeamAliasRepository_CreateAndList(t *testing.T) {
	tc := setupRegistryTest(t)
	defer tc.cleanup()
	ctx, done := tc.createTestContext()
	defer done()

	a := tc.createTestTeam(ctx, "Rush SC 2014 Boys", "Rush SC", "2014", models.GenderBoys, "CO")
	b := tc.createTestTeam(ctx, "Solar SC 2014 Boys", "Solar SC", "2014", models.GenderBoys, "TX")

	tc.createTestAlias(ctx, a, "gotsport", "g-100")
	tc.createTestAlias(ctx, a, "heartland", "h-77")
	tc.createTestAlias(ctx, b, "gotsport", "g-200")

	aliases, err := tc.aliases.ListByTeam(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(aliases))
	}
	// Ordered by provider.
	if aliases[0].Provider != "gotsport" || aliases[1].Provider != "heartland" {
		t.Errorf("unexpected alias order: %s, %s", aliases[0].Provider, aliases[1].Provider)
	}
	if aliases[0].TeamID != a.ID {
		t.Errorf("alias bound to wrong team: %v", aliases[0].TeamID)
	}
	if aliases[0].MatchMethod != models.MatchMethodExact {
		t.Errorf("unexpected match method: %s", aliases[0].MatchMethod)
	}

	// The provider key is unique across teams.
	dup := &models.TeamAlias{
		Provider:       "gotsport",
		ProviderTeamID: "g-100",
		TeamID:         b.ID,
		MatchMethod:    models.MatchMethodManual,
	}
	if err := tc.aliases.Create(ctx, dup); err == nil {
		t.Error("expected duplicate provider ref to be rejected")
	}
}

func TestTeamAliasRepository_RepointTeam(t *testing.T) {
	tc := setupRegistryTest(t)
	defer tc.cleanup()
	ctx, done := tc.createTestContext()
	defer done()

	a := tc.createTestTeam(ctx, "Rush SC 2014 Boys", "Rush SC", "2014", models.GenderBoys, "CO")
	b := tc.createTestTeam(ctx, "Rush SC 2014B", "Rush SC", "2014", models.GenderBoys, "CO")

	tc.createTestAlias(ctx, a, "gotsport", "g-100")
	tc.createTestAlias(ctx, a, "heartland", "h-77")
	tc.createTestAlias(ctx, b, "gotsport", "g-200")

	moved, err := tc.aliases.RepointTeam(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("RepointTeam failed: %v", err)
	}
	if moved != 2 {
		t.Errorf("expected 2 aliases moved, got %d", moved)
	}

	left, err := tc.aliases.ListByTeam(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected no aliases left on source, got %d", len(left))
	}

	gained, err := tc.aliases.ListByTeam(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if len(gained) != 3 {
		t.Errorf("expected 3 aliases on target, got %d", len(gained))
	}

	moved, err = tc.aliases.RepointTeam(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("RepointTeam of empty team failed: %v", err)
	}
	if moved != 0 {
		t.Errorf("expected 0 aliases moved from empty team, got %d", moved)
	}
}

func TestTeamAliasRepository_RepointByProviderRefs(t *testing.T) {
	tc := setupRegistryTest(t)
	defer tc.cleanup()
	ctx, done := tc.createTestContext()
	defer done()

	deprecated := tc.createTestTeam(ctx, "Rush SC 2014 Boys", "Rush SC", "2014", models.GenderBoys, "CO")
	canonical := tc.createTestTeam(ctx, "Rush SC 2014B", "Rush SC", "2014", models.GenderBoys, "CO")

	// The canonical team holds the deprecated team's former aliases plus one
	// it acquired on its own.
	tc.createTestAlias(ctx, canonical, "gotsport", "g-100")
	tc.createTestAlias(ctx, canonical, "heartland", "h-77")
	tc.createTestAlias(ctx, canonical, "gotsport", "g-999")

	footprint := []models.ProviderRef{
		{Provider: "gotsport", ProviderTeamID: "g-100"},
		{Provider: "heartland", ProviderTeamID: "h-77"},
		{Provider: "gotsport", ProviderTeamID: "g-404"}, // no alias row for this ref
	}

	restored, err := tc.aliases.RepointByProviderRefs(ctx, canonical.ID, deprecated.ID, footprint)
	if err != nil {
		t.Fatalf("RepointByProviderRefs failed: %v", err)
	}
	if restored != 2 {
		t.Errorf("expected 2 aliases restored, got %d", restored)
	}

	back, err := tc.aliases.ListByTeam(ctx, deprecated.ID)
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if len(back) != 2 {
		t.Errorf("expected 2 aliases back on the deprecated team, got %d", len(back))
	}

	kept, err := tc.aliases.ListByTeam(ctx, canonical.ID)
	if err != nil {
		t.Fatalf("ListByTeam failed: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("expected the unrelated alias to stay, got %d", len(kept))
	}
	if kept[0].ProviderTeamID != "g-999" {
		t.Errorf("wrong alias kept on canonical team: %s", kept[0].ProviderTeamID)
	}

	restored, err = tc.aliases.RepointByProviderRefs(ctx, canonical.ID, deprecated.ID, nil)
	if err != nil {
		t.Fatalf("RepointByProviderRefs with empty footprint failed: %v", err)
	}
	if restored != 0 {
		t.Errorf("expected empty footprint to move nothing, got %d", restored)
	}
}
