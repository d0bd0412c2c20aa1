package job

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// Work environment values stored on a posting.
const (
	EnvRemote = "remote"
	EnvHybrid = "hybrid"
	EnvOffice = "office"
	EnvOnSite = "on-site"
)

// Lifecycle status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusFiltered = "filtered"
)

// Job is the canonical posting record persisted by the ingestion pipeline
// and read back by the matching orchestrator.
type Job struct {
	Hash    string `json:"job_hash"`
	Title   string `json:"title"`
	Company string `json:"company"`

	// Location is the union of every location hint the source exposed,
	// lower-cased. City and Country are kept separately when the source
	// provides them structured.
	Location string `json:"location"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`

	Description string `json:"description,omitempty"`
	ApplyURL    string `json:"apply_url,omitempty"`

	Categories      []string `json:"categories"`
	IsInternship    bool     `json:"is_internship"`
	IsGraduate      bool     `json:"is_graduate"`
	WorkEnvironment string   `json:"work_environment,omitempty"`
	Languages       []string `json:"language_requirements,omitempty"`

	Source          string     `json:"source"`
	PostedAt        *time.Time `json:"posted_at,omitempty"`
	ScrapeTimestamp time.Time  `json:"scrape_timestamp"`
	LastSeenAt      time.Time  `json:"last_seen_at"`
	CreatedAt       time.Time  `json:"created_at"`

	IsActive       bool   `json:"is_active"`
	Status         string `json:"status"`
	FilteredReason string `json:"filtered_reason,omitempty"`
}

// HasCategory reports whether the posting carries the given category tag.
func (j *Job) HasCategory(cat string) bool {
	for _, c := range j.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// AddCategory appends a category tag if not already present.
func (j *Job) AddCategory(cat string) {
	if cat == "" || j.HasCategory(cat) {
		return
	}
	j.Categories = append(j.Categories, cat)
}

// CompositeKey returns the lower-cased trimmed title|company|location key
// used for in-memory pre-deduplication and as a hash fallback.
func (j *Job) CompositeKey() string {
	return CompositeKey(j.Title, j.Company, j.Location)
}

// CompositeKey builds the composite identity key from its parts.
func CompositeKey(title, company, location string) string {
	parts := []string{title, company, location}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// Jobs is a mutable list of postings with the collection helpers the
// pipeline and selection passes operate on.
type Jobs struct {
	Items []*Job
}

func (js *Jobs) Len() int {
	return len(js.Items)
}

func (js *Jobs) FindByHash(hash string) *Job {
	for _, j := range js.Items {
		if j.Hash == hash {
			return j
		}
	}
	return nil
}

// Exclude removes postings whose hash is in targets, returning the removed
// hashes. Order of remaining items is not preserved.
func (js *Jobs) Exclude(targets []string) []string {
	var excluded []string
	for _, target := range targets {
		for idx, j := range js.Items {
			if j.Hash == target {
				js.RemoveByIndex(idx)
				excluded = append(excluded, j.Hash)
				break
			}
		}
	}
	return excluded
}

// RemoveByIndex removes a posting from the list by index. Do not preserve order.
func (js *Jobs) RemoveByIndex(idx int) {
	js.Items[idx] = js.Items[len(js.Items)-1]
	js.Items = js.Items[:len(js.Items)-1]
}

// Hashes returns the identity hashes of every posting in the list.
func (js *Jobs) Hashes() []string {
	hashes := make([]string, 0, len(js.Items))
	for _, j := range js.Items {
		hashes = append(hashes, j.Hash)
	}
	return hashes
}

// DumpToTmpFile writes the list as indented JSON to a temp file and returns
// its name.
func (js *Jobs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(js); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportBySource groups postings by source name for operator reports.
func (js *Jobs) ReportBySource() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, j := range js.Items {
		report[j.Source] = append(report[j.Source], map[string]string{
			"title":    j.Title,
			"company":  j.Company,
			"location": j.Location,
			"url":      j.ApplyURL,
		})
	}
	return report
}

// Match is the persisted outcome of a matching run for one user and job.
type Match struct {
	UserEmail string    `json:"user_email"`
	JobHash   string    `json:"job_hash"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	Method    string    `json:"method"`
	MatchedAt time.Time `json:"matched_at"`
}

// UserPreferences is the matching input contract. Email doubles as the
// idempotency key.
type UserPreferences struct {
	Email           string   `json:"email"`
	TargetCities    []string `json:"target_cities"`
	CareerPaths     []string `json:"career_paths"`
	Languages       []string `json:"languages_spoken"`
	VisaStatus      string   `json:"visa_status,omitempty"`
	WorkEnvironment string   `json:"work_environment,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Industries      []string `json:"industries,omitempty"`
	CompanySize     string   `json:"company_size,omitempty"`
	Tier            string   `json:"subscription_tier"`
}
