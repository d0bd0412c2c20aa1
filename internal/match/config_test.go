package match

import "testing"

func TestForTierKnown(t *testing.T) {
	cfg := ForTier(TierPremium)
	if cfg.MaxMatches != 15 || cfg.FreshnessDays != 7 {
		t.Fatalf("unexpected premium config: %+v", cfg)
	}
}

func TestForTierUnknownFallsBackToFree(t *testing.T) {
	cfg := ForTier("enterprise")
	if cfg.Tier != TierFree {
		t.Fatalf("expected free config for unknown tier, got %s", cfg.Tier)
	}
	if cfg.MaxMatches != 5 {
		t.Fatalf("expected free max matches 5, got %d", cfg.MaxMatches)
	}
}

func TestValidateShippedConfigs(t *testing.T) {
	for tier, cfg := range tierConfigs {
		if err := cfg.Validate(); err != nil {
			t.Fatalf("shipped config for %s invalid: %v", tier, err)
		}
	}
}

func TestValidateFreeTierMatchCeiling(t *testing.T) {
	cfg := ForTier(TierFree)
	cfg.MaxMatches = 6
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for free tier with 6 matches")
	}
}

func TestValidatePremiumFreshnessWindow(t *testing.T) {
	cfg := ForTier(TierPremium)
	cfg.FreshnessDays = 14

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for premium freshness of 14 days")
	}

	cfg.FreshnessOverride = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("override should permit the wider window: %v", err)
	}
}

func TestValidateUnknownTier(t *testing.T) {
	cfg := Config{Tier: "trial", MaxMatches: 3, FreshnessDays: 7, MaxJobsToFetch: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}
