package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// PayloadError is implemented by transport errors that carry the decoded body of a
// rejected request.
type PayloadError interface {
	error
	HTTPStatus() int
	Payload() map[string]any
}

const (
	errorField  = "error"
	detailField = "detail"
)

type wireResult struct {
	ID             string   `json:"id"`
	Job            string   `json:"job"`
	JobTitle       string   `json:"job_title"`
	JobCompany     string   `json:"job_company"`
	JobDescription string   `json:"job_description"`
	MatchScore     float64  `json:"match_score"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Summary        string   `json:"summary"`
	CreatedAt      string   `json:"created_at"`
}

// The list endpoint sends "results" and the run endpoint sends "matches".
// Pointers tell a missing key apart from an empty list.
type wireEnvelope struct {
	Results      *[]wireResult `json:"results"`
	Matches      *[]wireResult `json:"matches"`
	Page         int           `json:"page"`
	TotalMatches int           `json:"total_matches"`
	TotalPages   int           `json:"total_pages"`
	HasNext      bool          `json:"has_next"`
	HasPrevious  bool          `json:"has_previous"`
	Message      string        `json:"message"`
}

// NormalizePage converts a successful response body into a Page. Missing fields are
// tolerated: no list means no results, no counts mean zero, no total_pages means one
// page and no page number means requestedPage.
func NormalizePage(payload map[string]any, requestedPage int) (Page, error) {
	var envelope wireEnvelope

	cfg := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           &envelope,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return Page{}, err
	}

	if err := decoder.Decode(payload); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var wire []wireResult
	switch {
	case envelope.Results != nil:
		wire = *envelope.Results
	case envelope.Matches != nil:
		wire = *envelope.Matches
	}

	results := make([]Result, 0, len(wire))
	for _, w := range wire {
		results = append(results, w.toResult())
	}

	page := envelope.Page
	if page <= 0 {
		page = requestedPage
	}
	if page <= 0 {
		page = DefaultPage
	}

	totalPages := envelope.TotalPages
	if totalPages <= 0 {
		totalPages = 1
	}

	totalMatches := envelope.TotalMatches
	if totalMatches < 0 {
		totalMatches = 0
	}

	return Page{
		Results:      results,
		Page:         page,
		TotalMatches: totalMatches,
		TotalPages:   totalPages,
		HasNext:      envelope.HasNext,
		HasPrevious:  envelope.HasPrevious,
		Message:      strings.TrimSpace(envelope.Message),
	}, nil
}

func (w wireResult) toResult() Result {
	matched := w.MatchedSkills
	if matched == nil {
		matched = []string{}
	}
	missing := w.MissingSkills
	if missing == nil {
		missing = []string{}
	}

	return Result{
		ID:             w.ID,
		Job:            w.Job,
		JobTitle:       w.JobTitle,
		JobCompany:     w.JobCompany,
		JobDescription: w.JobDescription,
		MatchScore:     clampScore(w.MatchScore),
		MatchedSkills:  matched,
		MissingSkills:  missing,
		Summary:        w.Summary,
		CreatedAt:      w.CreatedAt,
	}
}

func clampScore(score float64) int {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	if score >= 100 {
		return 100
	}

	return int(math.Round(score))
}

// NormalizeError maps any failure of op to an *OpError. The message is picked from,
// in order: the "error" field of the response body, its "detail" field, the error
// text, and the fallback of the operation.
func NormalizeError(op Op, err error) *OpError {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr
	}

	normalized := &OpError{
		Op:   op,
		Kind: KindTransport,
		Err:  err,
	}

	if err == nil {
		normalized.Message = FallbackMessage(op)
		return normalized
	}

	if errors.Is(err, ErrMalformedResponse) {
		normalized.Kind = KindMalformed
		normalized.Message = FallbackMessage(op)
		return normalized
	}

	var payloadErr PayloadError
	if errors.As(err, &payloadErr) {
		normalized.Kind = KindServer
		normalized.Status = payloadErr.HTTPStatus()

		payload := payloadErr.Payload()
		for _, field := range []string{errorField, detailField} {
			if msg := messageFrom(payload[field]); msg != "" {
				normalized.Message = msg
				return normalized
			}
		}
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		normalized.Message = msg
		return normalized
	}

	normalized.Message = FallbackMessage(op)
	return normalized
}

// messageFrom flattens the shapes an error field may take into a single line.
func messageFrom(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			if msg := messageFrom(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, "; ")
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return strings.TrimSpace(fmt.Sprintf("%v", typed))
		}
		return string(data)
	}
}
