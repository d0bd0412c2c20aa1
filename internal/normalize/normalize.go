// Package normalize maps source-shaped raw postings into the canonical Job
// record and computes the stable identity hash used for deduplication.
package normalize

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rhysr01/jobping/internal/job"
	"github.com/rhysr01/jobping/internal/source"
)

var errEmptyPosting = errors.New("posting has no title or company")

// Normalize converts a raw posting into a canonical Job. The location field
// becomes the union of every hint the source exposed; downstream filters
// rely on that union rather than any single field.
func Normalize(raw *source.RawPosting) (*job.Job, error) {
	title := strings.TrimSpace(raw.Title)
	company := strings.TrimSpace(raw.Company)
	if title == "" && company == "" {
		return nil, errEmptyPosting
	}

	now := time.Now().UTC()
	j := &job.Job{
		Title:           title,
		Company:         company,
		Location:        locationUnion(raw),
		City:            strings.TrimSpace(raw.City),
		Country:         strings.TrimSpace(raw.Country),
		Description:     raw.Description,
		ApplyURL:        raw.URL,
		Source:          raw.Source,
		PostedAt:        raw.PostedAt,
		ScrapeTimestamp: now,
		LastSeenAt:      now,
		CreatedAt:       now,
	}

	j.Hash = IdentityHash(raw)
	return j, nil
}

// IdentityHash derives the stable key for a raw posting. Sources that expose
// a native external id hash source+id+canonical URL; the rest fall back to
// the lower-cased trimmed title|company|location composite. The dual
// strategy exists because not every source has stable ids.
func IdentityHash(raw *source.RawPosting) string {
	if strings.TrimSpace(raw.ExternalID) != "" {
		return hash(fmt.Sprintf("%s:%s:%s", raw.Source, raw.ExternalID, CanonicalURL(raw.URL)))
	}
	return hash(job.CompositeKey(raw.Title, raw.Company, locationUnion(raw)))
}

// CanonicalURL strips query and fragment so tracking parameters do not split
// one job into many identities.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.ToLower(u.String())
}

func locationUnion(raw *source.RawPosting) string {
	parts := make([]string, 0, 4)
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		for _, existing := range parts {
			if existing == s {
				return
			}
		}
		parts = append(parts, s)
	}

	add(raw.Location)
	add(raw.City)
	add(raw.Country)
	for _, office := range raw.Offices {
		add(office)
	}

	return strings.Join(parts, ", ")
}

func hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", sum[:16])
}
