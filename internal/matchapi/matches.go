package matchapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spigell/match-responder/internal/matching"
)

const (
	MatchesPath     = "/matches/"
	RunMatchingPath = "/matches/run_matching/"
)

type runMatchingRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	SortBy   string `json:"sort_by"`
	MinScore int    `json:"min_score"`
}

// GetMatches returns a page of already computed matches.
func (c *Client) GetMatches(ctx context.Context, page, pageSize int) (map[string]any, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	payload, err := c.getJSON(ctx, MatchesPath, q)
	if err != nil {
		return nil, fmt.Errorf("get matches: %w", err)
	}

	return payload, nil
}

// RunMatching asks the service to recompute matches for the current user.
func (c *Client) RunMatching(ctx context.Context, q matching.Query) (map[string]any, error) {
	body := runMatchingRequest{
		Page:     q.Page,
		PageSize: q.PageSize,
		SortBy:   string(q.SortBy),
		MinScore: q.MinScore,
	}

	payload, err := c.postJSON(ctx, RunMatchingPath, body)
	if err != nil {
		return nil, fmt.Errorf("run matching: %w", err)
	}

	return payload, nil
}

var _ matching.Service = (*Client)(nil)
