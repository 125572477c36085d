package matching

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// SortBy is the ordering hint sent to the matching service.
type SortBy string

const (
	SortByScore  SortBy = "score"
	SortByRandom SortBy = "random"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// AllowedPageSizes lists the page sizes the service accepts from this client.
var AllowedPageSizes = []int{5, 10, 15, 20}

// ErrInvalidQuery is returned when a mutation would leave the query outside its allowed values.
var ErrInvalidQuery = errors.New("invalid query")

// Query is the request shape for both match endpoints.
type Query struct {
	Page     int    `json:"page" yaml:"page" validate:"min=1"`
	PageSize int    `json:"page_size" yaml:"page_size" validate:"oneof=5 10 15 20"`
	SortBy   SortBy `json:"sort_by" yaml:"sort_by" validate:"oneof=score random"`
	MinScore int    `json:"min_score" yaml:"min_score" validate:"min=0,max=100"`
}

// DefaultQuery returns the query a fresh view starts with.
func DefaultQuery() Query {
	return Query{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		SortBy:   SortByScore,
		MinScore: 0,
	}
}

var validate = validator.New()

// Validate checks every field of the query.
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	return nil
}

// IsAllowedPageSize reports whether n is one of AllowedPageSizes.
func IsAllowedPageSize(n int) bool {
	return slices.Contains(AllowedPageSizes, n)
}

// Refinement is the client-only state of the progressive relaxation.
type Refinement struct {
	RefreshCount int `json:"refresh_count" yaml:"refresh_count"`
}

// State holds the query, the current page and the refinement counter of a single view.
// It performs no I/O and is not synchronized; Controller guards it.
type State struct {
	query      Query
	page       *Page
	refinement Refinement
}

// NewState returns a state seeded with the provided query.
func NewState(initial Query) (*State, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}

	return &State{query: initial}, nil
}

func (s *State) Query() Query {
	return s.query
}

// Page returns the held page and false when nothing has been loaded yet.
func (s *State) Page() (Page, bool) {
	if s.page == nil {
		return Page{}, false
	}

	return s.page.clone(), true
}

func (s *State) RefreshCount() int {
	return s.refinement.RefreshCount
}

// HasResults reports whether the held page reports at least one match.
func (s *State) HasResults() bool {
	return s.page != nil && s.page.TotalMatches > 0
}

func (s *State) SetPage(n int) error {
	if err := validate.Var(n, "min=1"); err != nil {
		return fmt.Errorf("%w: page %d: %w", ErrInvalidQuery, n, err)
	}

	s.query.Page = n
	return nil
}

// SetPageSize changes the page size and resets the page to 1 in the same step.
func (s *State) SetPageSize(n int) error {
	if !IsAllowedPageSize(n) {
		return fmt.Errorf("%w: page size %d is not one of %v", ErrInvalidQuery, n, AllowedPageSizes)
	}

	s.query.PageSize = n
	s.query.Page = DefaultPage
	return nil
}

func (s *State) SetSortBy(sortBy SortBy) error {
	if err := validate.Var(string(sortBy), "oneof=score random"); err != nil {
		return fmt.Errorf("%w: sort by %q: %w", ErrInvalidQuery, sortBy, err)
	}

	s.query.SortBy = sortBy
	return nil
}

// ReplacePage swaps the held page wholesale.
func (s *State) ReplacePage(p Page) {
	held := p.clone()
	s.page = &held
}

func (s *State) setMinScore(n int) {
	s.query.MinScore = n
}

func (s *State) setRefreshCount(n int) {
	s.refinement.RefreshCount = n
}

func (s *State) discardPage() {
	s.page = nil
}
