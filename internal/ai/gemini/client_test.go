package gemini

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestCollectTextJoinsParts(t *testing.T) {
	resp := textResponse("first", "  ", "second")
	if got := collectText(resp); got != "first\nsecond" {
		t.Fatalf("unexpected collected text: %q", got)
	}
}

func TestCollectTextSkipsNilCandidates(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{nil, {Content: nil}},
	}
	if got := collectText(resp); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestIsTemporary(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", genai.APIError{Code: http.StatusTooManyRequests}, true},
		{"server error", genai.APIError{Code: http.StatusInternalServerError}, true},
		{"bad request", genai.APIError{Code: http.StatusBadRequest}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTemporary(tc.err); got != tc.want {
				t.Fatalf("isTemporary(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
