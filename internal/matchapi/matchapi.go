package matchapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL    = "http://localhost:8000/api/ai"
	DefaultUserAgent = "spigell/match-responder"
	DefaultTimeout   = 10 * time.Second
)

// Client talks to the matching service on behalf of the current user.
type Client struct {
	token      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: DefaultAPIURL,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:    logger,
		UserAgent: DefaultUserAgent,
	}
}

// SetRateLimit limits outgoing requests to perSecond. Zero or less removes the limit.
func (c *Client) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		c.limiter = nil
		return
	}

	c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
}
