package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/match-responder/internal/matchapi"
	"github.com/spigell/match-responder/internal/matching"
	"github.com/spigell/match-responder/internal/render"
)

func TestInitialQuery(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		expect matching.Query
	}{
		{
			name:   "no query section",
			config: &Config{},
			expect: matching.DefaultQuery(),
		},
		{
			name:   "page size and sort",
			config: &Config{Query: &QueryConfig{PageSize: 20, SortBy: " Random "}},
			expect: matching.Query{Page: 1, PageSize: 20, SortBy: matching.SortByRandom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, initialQuery(tt.config))
		})
	}
}

func TestResolveToken(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0o600))

	token, err := resolveToken(&Config{})
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = resolveToken(&Config{Token: "inline"})
	require.NoError(t, err)
	assert.Equal(t, "inline", token)

	token, err = resolveToken(&Config{Token: "inline", TokenFile: file})
	require.NoError(t, err)
	assert.Equal(t, "from-file", token)

	_, err = resolveToken(&Config{TokenFile: filepath.Join(dir, "missing")})
	require.Error(t, err)

	_, err = resolveToken(nil)
	require.Error(t, err)
}

func newTestSession(t *testing.T, handler http.HandlerFunc) (*session, *bytes.Buffer) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := matchapi.New(zap.NewNop(), "")
	client.APIURL = server.URL

	controller, err := matching.NewController(client, matching.DefaultQuery(), zap.NewNop())
	require.NoError(t, err)

	out := &bytes.Buffer{}
	previous := stdout
	stdout = out
	t.Cleanup(func() { stdout = previous })

	return &session{
		logger:     zap.NewNop(),
		config:     &Config{},
		controller: controller,
		format:     render.FormatText,
	}, out
}

func TestActionsFollowState(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{"id": 1, "job_title": "Go Developer", "match_score": 70}], "page": 1, "total_matches": 11, "total_pages": 2, "has_next": true, "has_previous": false}`))
	})

	assert.Equal(t, []string{PromptRun, PromptPageSize, PromptReload, PromptQuit}, s.actions())

	_, err := s.controller.LoadPage(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{PromptNext, PromptRun, PromptRefresh, PromptPageSize, PromptReload, PromptQuit}, s.actions())
}

func TestHandleActionRefreshPrintsNotice(t *testing.T) {
	s, out := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"matches": [{"id": 2, "job_title": "SRE", "match_score": 41}], "total_matches": 1}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": [{"id": 1, "job_title": "Go Developer", "match_score": 70}], "total_matches": 1}`))
	})

	ctx := context.Background()
	_, err := s.controller.LoadPage(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, s.handleAction(ctx, PromptRefresh))

	assert.Contains(t, out.String(), "Showing 1 jobs with lower requirements!")
	assert.Contains(t, out.String(), "SRE")
	assert.Equal(t, 40, s.controller.Snapshot().Query.MinScore)
}

func TestHandleActionQuitAndUnknown(t *testing.T) {
	s, _ := newTestSession(t, func(http.ResponseWriter, *http.Request) {})

	require.ErrorIs(t, s.handleAction(context.Background(), PromptQuit), errExit)
	require.Error(t, s.handleAction(context.Background(), "dance"))
}

func TestReportKeepsHeldPage(t *testing.T) {
	s, out := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "matching engine unavailable"}`))
	})

	_, err := s.controller.RunMatching(context.Background())
	require.Error(t, err)

	s.report(err)
	assert.Contains(t, out.String(), "Error: matching engine unavailable")

	out.Reset()
	_, err = s.controller.NextPage(context.Background())
	require.Error(t, err)

	s.report(err)
	assert.Empty(t, out.String())
}
