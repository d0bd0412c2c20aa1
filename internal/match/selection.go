package match

import (
	"sort"
	"strings"

	"github.com/rhysr01/jobping/internal/job"
)

const (
	// HotThreshold is the score at or above which a match counts as "hot".
	HotThreshold = 0.92
	// MaxHotMatches caps how many hot matches a result set may expose.
	MaxHotMatches = 2
	// hotAdjusted is the score assigned to marginal matches once the hot
	// cap is reached: just under the threshold so grade inflation stays
	// invisible to the user.
	hotAdjusted = 0.91

	premiumCompanyMinScore = 0.60
)

// premiumCompanies is the brand-recognition list used by the first selection
// pass. Substring match on the lower-cased company name.
var premiumCompanies = []string{
	"google", "microsoft", "amazon", "apple", "meta", "netflix", "spotify",
	"mckinsey", "bain", "boston consulting", "bcg", "deloitte", "kpmg",
	"pwc", "ey", "goldman sachs", "jp morgan", "j.p. morgan", "morgan stanley",
	"unilever", "l'oréal", "loreal", "procter & gamble", "nestlé", "nestle",
	"siemens", "sap", "bmw", "mercedes", "volkswagen", "airbus", "philips",
	"asml", "adidas", "zalando", "booking.com", "revolut", "klarna", "adyen",
}

// IsPremiumCompany reports whether the company name hits the brand list.
func IsPremiumCompany(name string) bool {
	lowered := strings.ToLower(name)
	for _, brand := range premiumCompanies {
		if strings.Contains(lowered, brand) {
			return true
		}
	}
	return false
}

// Candidate pairs a scored job for selection.
type Candidate struct {
	Job    *job.Job
	Score  float64
	Reason string
}

// pass selects indexes from the immutable candidate arena. Implementations
// must only read candidates and the used set.
type pass func(candidates []Candidate, prefs *job.UserPreferences, used map[int]bool, budget int) []int

// Select builds the final bounded result set via multi-pass greedy selection.
// Passes run in strict priority order over an immutable candidate list; each
// pass skips already selected jobs and stops once the target size is reached.
func Select(candidates []Candidate, prefs *job.UserPreferences, target int) []Candidate {
	if target <= 0 || len(candidates) == 0 {
		return nil
	}

	// Arena is sorted by score once; passes rely on that order for their
	// internal "best first" behavior.
	arena := make([]Candidate, len(candidates))
	copy(arena, candidates)
	sort.SliceStable(arena, func(i, j int) bool { return arena[i].Score > arena[j].Score })

	passes := []pass{
		premiumCompanyPass,
		perfectMatchPass,
		cityMatchPass,
		bestRemainingPass,
	}

	used := make(map[int]bool, target)
	var selectedIdx []int
	for _, p := range passes {
		if len(selectedIdx) >= target {
			break
		}
		for _, idx := range p(arena, prefs, used, target-len(selectedIdx)) {
			used[idx] = true
			selectedIdx = append(selectedIdx, idx)
			if len(selectedIdx) >= target {
				break
			}
		}
	}

	selected := make([]Candidate, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		selected = append(selected, arena[idx])
	}

	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Score > selected[j].Score })
	return capHotMatches(selected)
}

// premiumCompanyPass showcases recognizable employers above a minimum score,
// even without a perfect location or career match.
func premiumCompanyPass(candidates []Candidate, _ *job.UserPreferences, used map[int]bool, budget int) []int {
	var picked []int
	for idx, c := range candidates {
		if len(picked) >= budget {
			break
		}
		if used[idx] || c.Score < premiumCompanyMinScore {
			continue
		}
		if IsPremiumCompany(c.Job.Company) {
			picked = append(picked, idx)
		}
	}
	return picked
}

// perfectMatchPass picks career-and-city matches, at most one per distinct
// city to keep the set geographically diverse.
func perfectMatchPass(candidates []Candidate, prefs *job.UserPreferences, used map[int]bool, budget int) []int {
	return cityDiversePass(candidates, prefs, used, budget, true)
}

// cityMatchPass picks city-only matches, again one per distinct city.
func cityMatchPass(candidates []Candidate, prefs *job.UserPreferences, used map[int]bool, budget int) []int {
	return cityDiversePass(candidates, prefs, used, budget, false)
}

func cityDiversePass(candidates []Candidate, prefs *job.UserPreferences, used map[int]bool, budget int, requireCareer bool) []int {
	var picked []int
	seenCities := make(map[string]bool)
	for idx, c := range candidates {
		if len(picked) >= budget {
			break
		}
		if used[idx] {
			continue
		}
		matched, city := cityOverlap(prefs.TargetCities, c.Job)
		if !matched || seenCities[strings.ToLower(city)] {
			continue
		}
		if requireCareer && !careerOverlap(prefs.CareerPaths, c.Job) {
			continue
		}
		seenCities[strings.ToLower(city)] = true
		picked = append(picked, idx)
	}
	return picked
}

// bestRemainingPass fills whatever budget is left with the highest-scoring
// unused candidates, unconstrained.
func bestRemainingPass(candidates []Candidate, _ *job.UserPreferences, used map[int]bool, budget int) []int {
	var picked []int
	for idx := range candidates {
		if len(picked) >= budget {
			break
		}
		if !used[idx] {
			picked = append(picked, idx)
		}
	}
	return picked
}

// capHotMatches down-adjusts marginal scores to just under the hot threshold
// once the cap is reached.
func capHotMatches(selected []Candidate) []Candidate {
	hot := 0
	for i := range selected {
		if selected[i].Score >= HotThreshold {
			hot++
			if hot > MaxHotMatches {
				selected[i].Score = hotAdjusted
			}
		}
	}
	return selected
}
