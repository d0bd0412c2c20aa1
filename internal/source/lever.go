package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	leverAPIURL   = "https://api.lever.co/v0/postings"
	leverPageSize = 50
)

// Lever fetches postings from a company's public Lever feed, paginated via
// skip/limit.
type Lever struct {
	client  *Client
	site    string
	company string
	APIURL  string
}

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	ApplyURL   string `json:"applyUrl"`
	Country    string `json:"country"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Commitment string `json:"commitment"`
		Department string `json:"department"`
		Location   string `json:"location"`
		Team       string `json:"team"`
	} `json:"categories"`
	WorkplaceType    string `json:"workplaceType"`
	DescriptionPlain string `json:"descriptionPlain"`
}

// NewLever creates a Lever adapter for one site token.
func NewLever(logger *zap.Logger, site, company string) *Lever {
	return &Lever{
		client:  NewClient(logger.With(zap.String("source", "lever"), zap.String("site", site))),
		site:    site,
		company: company,
		APIURL:  leverAPIURL,
	}
}

func (l *Lever) Name() string { return "lever:" + l.site }

// SetUserAgent overrides the default request user agent.
func (l *Lever) SetUserAgent(ua string) { l.client.UserAgent = ua }

func (l *Lever) FetchPage(ctx context.Context, page int) ([]*RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s", l.APIURL, l.site)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("mode", "json")
	q.Set("limit", strconv.Itoa(leverPageSize))
	q.Set("skip", strconv.Itoa(page*leverPageSize))

	var items []map[string]any
	if err := l.client.GetJSON(req, q, &items); err != nil {
		return nil, fmt.Errorf("lever page %d: %w", page, err)
	}

	var posts []leverPosting
	cfg := &mapstructure.DecoderConfig{
		Result:  &posts,
		TagName: "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	postings := make([]*RawPosting, 0, len(posts))
	for _, p := range posts {
		raw := &RawPosting{
			Source:      l.Name(),
			ExternalID:  p.ID,
			URL:         firstNonEmpty(p.HostedURL, p.ApplyURL),
			Title:       p.Text,
			Company:     l.company,
			Location:    p.Categories.Location,
			Country:     p.Country,
			Description: p.DescriptionPlain,
		}
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			raw.PostedAt = &t
		}
		postings = append(postings, raw)
	}

	return postings, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
