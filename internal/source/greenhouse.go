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

const greenhouseAPIURL = "https://boards-api.greenhouse.io/v1/boards"

// Greenhouse fetches postings from a company's public Greenhouse board.
type Greenhouse struct {
	client  *Client
	board   string
	company string
	APIURL  string
}

// greenhouseJob mirrors the board API job shape. Decoded via mapstructure so
// number-typed ids survive the generic JSON decode.
type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Offices []struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	} `json:"offices"`
	Content string `json:"content"`
}

type greenhousePage struct {
	Jobs []map[string]any `json:"jobs"`
	Meta struct {
		TotalCount int `json:"total_count"`
	} `json:"meta"`
}

// NewGreenhouse creates a Greenhouse adapter for one board token.
func NewGreenhouse(logger *zap.Logger, board, company string) *Greenhouse {
	return &Greenhouse{
		client:  NewClient(logger.With(zap.String("source", "greenhouse"), zap.String("board", board))),
		board:   board,
		company: company,
		APIURL:  greenhouseAPIURL,
	}
}

func (g *Greenhouse) Name() string { return "greenhouse:" + g.board }

// SetUserAgent overrides the default request user agent.
func (g *Greenhouse) SetUserAgent(ua string) { g.client.UserAgent = ua }

func (g *Greenhouse) FetchPage(ctx context.Context, page int) ([]*RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s/jobs", g.APIURL, g.board)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("content", "true")
	q.Set("page", strconv.Itoa(page+1))

	var body greenhousePage
	if err := g.client.GetJSON(req, q, &body); err != nil {
		return nil, fmt.Errorf("greenhouse page %d: %w", page, err)
	}

	var jobs []greenhouseJob
	cfg := &mapstructure.DecoderConfig{
		Result:  &jobs,
		TagName: "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(body.Jobs); err != nil {
		return nil, fmt.Errorf("greenhouse decode: %w", err)
	}

	postings := make([]*RawPosting, 0, len(jobs))
	for _, j := range jobs {
		raw := &RawPosting{
			Source:      g.Name(),
			ExternalID:  strconv.FormatInt(j.ID, 10),
			URL:         j.AbsoluteURL,
			Title:       j.Title,
			Company:     g.company,
			Location:    j.Location.Name,
			Description: j.Content,
			PostedAt:    parseTime(j.UpdatedAt),
		}
		for _, office := range j.Offices {
			raw.Offices = append(raw.Offices, office.Name)
			if office.Location != "" {
				raw.Offices = append(raw.Offices, office.Location)
			}
		}
		postings = append(postings, raw)
	}

	return postings, nil
}

func parseTime(s string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
