package matchapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/match-responder/internal/logger"
	"github.com/spigell/match-responder/internal/matching"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	requestIDHeader = "X-Request-ID"
)

// APIError is a non-2xx response. Body holds the decoded JSON object when the
// service sent one.
type APIError struct {
	StatusCode int
	Status     string
	Body       map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

func (e *APIError) Payload() map[string]any {
	return e.Body
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, err
	}

	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (map[string]any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       decodeObject(data),
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", matching.ErrMalformedResponse, err)
	}

	return payload, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String(logger.FieldRequestID, req.Header.Get(requestIDHeader)),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response",
		zap.String(logger.FieldRequestID, req.Header.Get(requestIDHeader)),
		zap.Int("status", resp.StatusCode),
	)

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set(requestIDHeader, uuid.NewString())

	return req
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.APIURL, "/") + path
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			// an empty gzip body is not an error for our purposes
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}

// decodeObject returns the JSON object in data, or nil for anything else.
func decodeObject(data []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}

	return body
}
