package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spigell/match-responder/internal/logger"
	"go.uber.org/zap"
)

// Service is the remote matching API as seen by the controller.
type Service interface {
	// GetMatches returns an already computed page.
	GetMatches(ctx context.Context, page, pageSize int) (map[string]any, error)
	// RunMatching asks the service to recompute matches and returns the requested page.
	RunMatching(ctx context.Context, q Query) (map[string]any, error)
}

// Snapshot is a read-only copy of the controller state for presentation code.
type Snapshot struct {
	Query        Query `json:"query" yaml:"query"`
	Page         Page  `json:"page" yaml:"page"`
	Loaded       bool  `json:"loaded" yaml:"loaded"`
	RefreshCount int   `json:"refresh_count" yaml:"refresh_count"`
	Busy         bool  `json:"-" yaml:"-"`
	// Notice is the success message of the last operation.
	Notice string `json:"notice,omitempty" yaml:"notice,omitempty"`
	// LastError is the normalized failure of the last operation, nil after a success.
	LastError error `json:"-" yaml:"-"`
}

// Controller drives loading, run matching and refresh against a Service for one view.
// At most one operation is in flight; others are rejected with ErrBusy. The lock is not
// held during network calls, so Snapshot never waits on I/O.
type Controller struct {
	service Service
	logger  *zap.Logger

	mu         sync.Mutex
	state      *State
	busy       bool
	generation uint64
	notice     string
	lastErr    error
}

// NewController returns a controller whose view starts with the initial query.
func NewController(service Service, initial Query, log *zap.Logger) (*Controller, error) {
	if service == nil {
		return nil, errors.New("matching service is required")
	}

	state, err := NewState(initial)
	if err != nil {
		return nil, err
	}

	return &Controller{
		service: service,
		logger:  logger.WithFields(log, zap.String(logger.FieldComponent, "matches")),
		state:   state,
	}, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	page, loaded := c.state.Page()
	return Snapshot{
		Query:        c.state.Query(),
		Page:         page,
		Loaded:       loaded,
		RefreshCount: c.state.RefreshCount(),
		Busy:         c.busy,
		Notice:       c.notice,
		LastError:    c.lastErr,
	}
}

// LoadPage fetches an existing page without recomputing matches. A page below 1 means 1.
func (c *Controller) LoadPage(ctx context.Context, page int) (Page, error) {
	if page < DefaultPage {
		page = DefaultPage
	}

	var q Query
	gen, err := c.begin(OpLoad, func(s *State) error {
		q = s.Query()
		q.Page = page
		return q.Validate()
	})
	if err != nil {
		return Page{}, err
	}

	return c.execute(ctx, OpLoad, gen, q, func(ctx context.Context) (map[string]any, error) {
		return c.service.GetMatches(ctx, q.Page, q.PageSize)
	}, func(s *State, p Page) string {
		s.query.Page = p.Page
		// navigation starts the relaxation over
		s.setRefreshCount(0)
		return ""
	})
}

// RunMatching recomputes matches from scratch: page 1, the held page size and sort,
// and no score floor. The refresh counter goes back to 0.
func (c *Controller) RunMatching(ctx context.Context) (Page, error) {
	var q Query
	gen, err := c.begin(OpRun, func(s *State) error {
		q = s.Query()
		q.Page = DefaultPage
		q.MinScore = 0
		return q.Validate()
	})
	if err != nil {
		return Page{}, err
	}

	return c.execute(ctx, OpRun, gen, q, func(ctx context.Context) (map[string]any, error) {
		return c.service.RunMatching(ctx, q)
	}, func(s *State, p Page) string {
		s.query.Page = p.Page
		s.setMinScore(0)
		s.setRefreshCount(0)

		if p.Message != "" {
			return p.Message
		}
		return "Matching completed successfully!"
	})
}

// Refresh recomputes matches in random order with a lower score floor, see MinScore.
// It is rejected while the held page reports no matches.
func (c *Controller) Refresh(ctx context.Context) (Page, error) {
	var (
		q    Query
		next int
	)
	gen, err := c.begin(OpRefresh, func(s *State) error {
		if !s.HasResults() {
			return ErrNothingToRefresh
		}

		next = s.RefreshCount() + 1
		q = s.Query()
		q.Page = DefaultPage
		q.SortBy = SortByRandom
		q.MinScore = MinScore(next)
		return q.Validate()
	})
	if err != nil {
		return Page{}, err
	}

	return c.execute(ctx, OpRefresh, gen, q, func(ctx context.Context) (map[string]any, error) {
		return c.service.RunMatching(ctx, q)
	}, func(s *State, p Page) string {
		s.query.Page = p.Page
		s.setMinScore(q.MinScore)
		s.setRefreshCount(next)

		if p.Message != "" {
			return p.Message
		}
		return fmt.Sprintf("Showing %d jobs with lower requirements!", p.TotalMatches)
	})
}

// ChangePageSize sets the page size, which also resets the page to 1, and reloads
// page 1 when results are already held. With nothing loaded only local state changes.
func (c *Controller) ChangePageSize(ctx context.Context, size int) (Page, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Page{}, rejected(OpLoad, ErrBusy)
	}

	if err := c.state.SetPageSize(size); err != nil {
		c.mu.Unlock()
		return Page{}, rejected(OpLoad, err)
	}

	reload := c.state.HasResults()
	current, _ := c.state.Page()
	c.mu.Unlock()

	c.logger.Debug("page size changed", zap.Int(logger.FieldPageSize, size), zap.Bool("reload", reload))

	if !reload {
		return current, nil
	}

	return c.LoadPage(ctx, DefaultPage)
}

// NextPage loads the page after the held one when the service reported one.
func (c *Controller) NextPage(ctx context.Context) (Page, error) {
	c.mu.Lock()
	page, ok := c.state.Page()
	c.mu.Unlock()

	if !ok || !page.HasNext {
		return Page{}, rejected(OpLoad, ErrNoNextPage)
	}

	return c.LoadPage(ctx, page.Page+1)
}

// PreviousPage loads the page before the held one when the service reported one.
func (c *Controller) PreviousPage(ctx context.Context) (Page, error) {
	c.mu.Lock()
	page, ok := c.state.Page()
	c.mu.Unlock()

	if !ok || !page.HasPrevious {
		return Page{}, rejected(OpLoad, ErrNoPreviousPage)
	}

	return c.LoadPage(ctx, page.Page-1)
}

// Discard drops the held page, as when the view is left. A call still in flight
// completes but its response is ignored.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state.discardPage()
	c.notice = ""
	c.lastErr = nil
}

// begin checks the guards and marks the controller busy. check runs under the lock.
func (c *Controller) begin(op Op, check func(s *State) error) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		c.logger.Debug("operation rejected", zap.String(logger.FieldOperation, string(op)), zap.Error(ErrBusy))
		return 0, rejected(op, ErrBusy)
	}

	if err := check(c.state); err != nil {
		c.logger.Debug("operation rejected", zap.String(logger.FieldOperation, string(op)), zap.Error(err))
		return 0, rejected(op, err)
	}

	c.busy = true
	return c.generation, nil
}

// execute performs the call outside the lock and applies the outcome under it.
// apply returns the notice to record.
func (c *Controller) execute(
	ctx context.Context,
	op Op,
	gen uint64,
	q Query,
	call func(ctx context.Context) (map[string]any, error),
	apply func(s *State, p Page) string,
) (Page, error) {
	log := c.logger.With(queryFields(op, q)...)
	log.Debug("operation started")

	payload, err := call(ctx)

	var page Page
	if err == nil {
		page, err = NormalizePage(payload, q.Page)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.busy = false

	if gen != c.generation {
		log.Debug("dropping response of a discarded view")
		return Page{}, rejected(op, ErrSuperseded)
	}

	if err != nil {
		opErr := NormalizeError(op, err)
		c.lastErr = opErr
		log.Warn("operation failed",
			zap.String("kind", string(opErr.Kind)),
			zap.Int("status", opErr.Status),
			zap.String("message", opErr.Message),
			zap.NamedError("cause", opErr.Err),
		)
		return Page{}, opErr
	}

	c.state.ReplacePage(page)
	c.notice = apply(c.state, page)
	c.lastErr = nil

	log.Info("operation completed",
		zap.Int("results", page.Len()),
		zap.Int("total_matches", page.TotalMatches),
		zap.Int("total_pages", page.TotalPages),
		zap.Int(logger.FieldRefreshCount, c.state.RefreshCount()),
	)

	return page.clone(), nil
}

func queryFields(op Op, q Query) []zap.Field {
	return []zap.Field{
		zap.String(logger.FieldOperation, string(op)),
		zap.Int(logger.FieldPage, q.Page),
		zap.Int(logger.FieldPageSize, q.PageSize),
		zap.String(logger.FieldSortBy, string(q.SortBy)),
		zap.Int(logger.FieldMinScore, q.MinScore),
	}
}
