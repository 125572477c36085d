package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/match-responder/internal/matching"
)

type stubGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func testMatch() *matching.Result {
	return &matching.Result{
		ID:             "42",
		JobTitle:       "Go Developer",
		JobCompany:     "Acme",
		JobDescription: "Build payment services in Go.",
		MatchScore:     72,
		MatchedSkills:  []string{"go", "postgresql"},
		MissingSkills:  []string{"kubernetes"},
	}
}

func TestExplainerExplain(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"summary\": \"Strong Go overlap.\", \"advice\": \"Learn Kubernetes.\"}\n```"}
	explainer := NewExplainer(stub, zap.NewNop(), 0)

	explanation, err := explainer.Explain(context.Background(), testMatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if explanation.Summary != "Strong Go overlap." {
		t.Fatalf("unexpected summary: %q", explanation.Summary)
	}
	if explanation.Advice != "Learn Kubernetes." {
		t.Fatalf("unexpected advice: %q", explanation.Advice)
	}
	if explanation.Raw == "" {
		t.Fatalf("expected raw response to be kept")
	}

	for _, want := range []string{"Go Developer", "kubernetes", "\"match_score\": 72"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
	if strings.Contains(stub.lastPrompt, "{{MATCH_JSON}}") {
		t.Fatalf("placeholder was not replaced")
	}
}

func TestExplainerCachesByContent(t *testing.T) {
	stub := &stubGenerator{response: `{"summary": "Fits.", "advice": "none"}`}
	explainer := NewExplainer(stub, zap.NewNop(), 0)

	match := testMatch()
	first, err := explainer.Explain(context.Background(), match)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Advice != "" {
		t.Fatalf("expected advice none to be dropped, got %q", first.Advice)
	}

	if _, err := explainer.Explain(context.Background(), match); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected cached explanation, got %d calls", stub.calls)
	}

	match.MatchScore = 40
	if _, err := explainer.Explain(context.Background(), match); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected a new call after the match changed, got %d calls", stub.calls)
	}
}

func TestExplainerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		err      error
		match    *matching.Result
	}{
		{name: "nil match", match: nil},
		{name: "generator error", err: errors.New("quota exceeded"), match: testMatch()},
		{name: "not json", response: "I think it fits", match: testMatch()},
		{name: "empty summary", response: `{"summary": "  "}`, match: testMatch()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			explainer := NewExplainer(&stubGenerator{response: tt.response, err: tt.err}, nil, 0)
			if _, err := explainer.Explain(context.Background(), tt.match); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
