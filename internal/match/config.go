// Package match implements the matching orchestrator: tier policy,
// idempotency, candidate selection, scoring dispatch and ranked result
// assembly.
package match

import (
	"fmt"
)

// Subscription tiers.
const (
	TierFree    = "free"
	TierPremium = "premium_pending"
)

// Config is the per-tier matching policy. Instances are immutable constants;
// Validate guards the tier invariants against accidental edits.
type Config struct {
	Tier              string
	MaxMatches        int
	FreshnessDays     int
	UseAI             bool
	MaxJobsToAI       int
	FallbackThreshold float64
	MaxJobsToFetch    int
	// FreshnessOverride permits a premium freshness window beyond 7 days.
	// Deliberate loosening only; never set in the shipped configs.
	FreshnessOverride bool
}

var tierConfigs = map[string]Config{
	TierFree: {
		Tier:              TierFree,
		MaxMatches:        5,
		FreshnessDays:     30,
		UseAI:             true,
		MaxJobsToAI:       20,
		FallbackThreshold: 0.5,
		MaxJobsToFetch:    200,
	},
	TierPremium: {
		Tier:              TierPremium,
		MaxMatches:        15,
		FreshnessDays:     7,
		UseAI:             true,
		MaxJobsToAI:       50,
		FallbackThreshold: 0.5,
		MaxJobsToFetch:    500,
	},
}

// ForTier returns the config for a tier. Unknown tiers fall back to free,
// the conservative policy.
func ForTier(tier string) Config {
	if cfg, ok := tierConfigs[tier]; ok {
		return cfg
	}
	return tierConfigs[TierFree]
}

// Validate enforces the tier invariants: the free tier never returns more
// than 5 matches, and premium freshness must not materially exceed 7 days
// without an explicit override.
func (c Config) Validate() error {
	if c.MaxMatches <= 0 {
		return fmt.Errorf("max matches must be positive, got %d", c.MaxMatches)
	}
	if c.FreshnessDays <= 0 {
		return fmt.Errorf("freshness window must be positive, got %d", c.FreshnessDays)
	}
	if c.MaxJobsToFetch <= 0 {
		return fmt.Errorf("fetch ceiling must be positive, got %d", c.MaxJobsToFetch)
	}

	switch c.Tier {
	case TierFree:
		if c.MaxMatches > 5 {
			return fmt.Errorf("free tier max matches must not exceed 5, got %d", c.MaxMatches)
		}
	case TierPremium:
		if c.FreshnessDays > 7 && !c.FreshnessOverride {
			return fmt.Errorf("premium freshness window must not exceed 7 days, got %d", c.FreshnessDays)
		}
	default:
		return fmt.Errorf("unknown tier: %s", c.Tier)
	}

	return nil
}
