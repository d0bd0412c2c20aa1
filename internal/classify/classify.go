// Package classify decides, for every normalized posting, whether it is an
// early-career role, whether its location is inside the EU, and which
// career path it belongs to. Both core decisions are total: a posting is
// either early-career or not, either EU-located or not, never "unknown".
package classify

import (
	"regexp"
	"strings"

	"github.com/rhysr01/jobping/internal/job"
)

// CategoryEarlyCareer and CategoryInternship are lifecycle tags added on top
// of the career-path category.
const (
	CategoryEarlyCareer = "early-career"
	CategoryInternship  = "internship"
)

// Result carries the full classification outcome for one posting.
type Result struct {
	EarlyCareer    bool
	IsGraduate     bool
	IsInternship   bool
	EULocated      bool
	RejectedReason string
	CareerPath     string
	Languages      []string
	Ambiguous      bool
}

// Classify runs every decision against the posting and mutates its flags,
// categories and language requirements in place. The returned Result is the
// same information in explicit form for funnel accounting.
func Classify(j *job.Job) Result {
	text := strings.ToLower(j.Title + " " + j.Description)
	titleText := strings.ToLower(j.Title)

	res := Result{
		CareerPath: CareerPath(titleText),
		Languages:  Languages(j.Description),
	}

	res.EarlyCareer = IsEarlyCareer(text)
	if res.EarlyCareer {
		// Graduate classification runs first: graduate programmes routinely
		// mention internships in their descriptions, and graduate wins.
		res.IsGraduate = matchesAny(graduatePatterns, text)
		if res.IsGraduate {
			// Remember when the losing internship signal was also present.
			res.Ambiguous = matchesAny(internshipPatterns, text)
		} else {
			res.IsInternship = matchesAny(internshipPatterns, text)
		}
	}

	res.EULocated, res.RejectedReason = EULocation(j.Location)

	j.IsGraduate = res.IsGraduate
	j.IsInternship = res.IsInternship
	if res.EarlyCareer {
		j.AddCategory(CategoryEarlyCareer)
	}
	if res.IsInternship {
		j.AddCategory(CategoryInternship)
	}
	j.AddCategory(res.CareerPath)
	if len(j.Languages) == 0 {
		j.Languages = res.Languages
	}
	if j.WorkEnvironment == "" {
		j.WorkEnvironment = WorkEnvironment(text, j.Location)
	}

	if !res.EULocated {
		j.IsActive = false
		j.Status = job.StatusFiltered
		j.FilteredReason = res.RejectedReason
	} else {
		j.IsActive = true
		j.Status = job.StatusActive
	}

	return res
}

// IsEarlyCareer reports whether the combined text matches an inclusion
// pattern and neither the seniority nor the experience-threshold exclusions.
func IsEarlyCareer(text string) bool {
	if !matchesAny(earlyCareerPatterns, text) {
		return false
	}
	if matchesAny(seniorityPatterns, text) {
		return false
	}
	if matchesAny(experiencePatterns, text) {
		return false
	}
	return true
}

// EULocation accepts a combined location string when it names an EU capital,
// an EU country, a major EU business city, or an explicit Europe/EU region
// phrase. Pure remote/anywhere locations are rejected first. Matching is
// substring-based on lower-cased text, which is deliberately permissive.
func EULocation(location string) (bool, string) {
	loc := strings.ToLower(location)
	if strings.TrimSpace(loc) == "" {
		return false, "no location signal"
	}

	for _, term := range remoteLocationTerms {
		if strings.Contains(loc, term) {
			return false, "remote-only location"
		}
	}

	for _, group := range [][]string{euCapitals, euCountries, euBusinessCities, euRegionPhrases} {
		for _, term := range group {
			if strings.Contains(loc, term) {
				return true, ""
			}
		}
	}

	return false, "outside EU"
}

// CareerPath returns the first matching career-path category for the text,
// or CategoryUnknown.
func CareerPath(text string) string {
	text = strings.ToLower(text)
	for _, rule := range careerPathRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Category
			}
		}
	}
	return CategoryUnknown
}

// Languages extracts non-English language demands from free description text.
func Languages(description string) []string {
	text := strings.ToLower(description)
	var langs []string
	seen := make(map[string]bool)
	for _, m := range languageMarkers {
		if strings.Contains(text, m.Marker) && !seen[m.Language] {
			seen[m.Language] = true
			langs = append(langs, m.Language)
		}
	}
	return langs
}

var hybridPattern = regexp.MustCompile(`(?i)\bhybrid\b`)

// WorkEnvironment derives the work-environment value from text and location.
func WorkEnvironment(text, location string) string {
	combined := strings.ToLower(text + " " + location)
	if hybridPattern.MatchString(combined) {
		return job.EnvHybrid
	}
	for _, term := range remoteLocationTerms {
		if strings.Contains(combined, term) {
			return job.EnvRemote
		}
	}
	if strings.Contains(combined, "on-site") || strings.Contains(combined, "onsite") {
		return job.EnvOnSite
	}
	return job.EnvOffice
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
