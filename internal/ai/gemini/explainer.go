package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/match-responder/internal/ai"
	"github.com/spigell/match-responder/internal/logger"
	"github.com/spigell/match-responder/internal/matching"
	"github.com/spigell/match-responder/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Explainer asks Gemini to summarize matches. Explanations are kept in memory for the
// life of the process, keyed by match id and content.
type Explainer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int

	mu    sync.Mutex
	cache map[string]cachedExplanation
}

type cachedExplanation struct {
	hash        string
	explanation ai.Explanation
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewExplainer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Explainer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Explainer{
		generator: generator,
		logger:    logger.WithAI(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
		cache:     make(map[string]cachedExplanation),
	}
}

func (e *Explainer) Explain(ctx context.Context, match *matching.Result) (*ai.Explanation, error) {
	if match == nil {
		return nil, fmt.Errorf("match is required")
	}

	payload, err := json.MarshalIndent(matchPayload(match), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal match payload: %w", err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(payload))

	e.mu.Lock()
	if cached, ok := e.cache[match.ID]; ok && cached.hash == hash {
		e.mu.Unlock()
		explanation := cached.explanation
		return &explanation, nil
	}
	e.mu.Unlock()

	prompt := buildPrompt(string(payload))

	e.logger.Debug("gemini generate content request",
		zap.String(logger.FieldMatchID, match.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.Truncate(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.String(logger.FieldMatchID, match.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.Truncate(raw, e.maxLogLen)),
	)

	explanation, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	explanation.Raw = raw

	e.mu.Lock()
	e.cache[match.ID] = cachedExplanation{hash: hash, explanation: *explanation}
	e.mu.Unlock()

	return explanation, nil
}

// matchPayload is what the model sees; ids and timestamps are left out.
func matchPayload(match *matching.Result) map[string]any {
	return map[string]any{
		"job_title":       match.JobTitle,
		"job_company":     match.JobCompany,
		"job_description": match.JobDescription,
		"match_score":     match.MatchScore,
		"matched_skills":  match.MatchedSkills,
		"missing_skills":  match.MissingSkills,
	}
}

func buildPrompt(matchJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Match:\n{{MATCH_JSON}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{MATCH_JSON}}", matchJSON)
}

func parseResponse(raw string) (*ai.Explanation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	summary := coerceString(data["summary"])
	if summary == "" {
		return nil, fmt.Errorf("parse gemini response: summary is empty")
	}

	advice := coerceString(data["advice"])
	if strings.EqualFold(advice, "none") {
		advice = ""
	}

	return &ai.Explanation{
		Summary: summary,
		Advice:  advice,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

var _ ai.Explainer = (*Explainer)(nil)
