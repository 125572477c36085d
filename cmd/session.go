package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/match-responder/internal/ai"
	"github.com/spigell/match-responder/internal/ai/gemini"
	"github.com/spigell/match-responder/internal/logger"
	"github.com/spigell/match-responder/internal/matchapi"
	"github.com/spigell/match-responder/internal/matching"
	"github.com/spigell/match-responder/internal/render"
	"github.com/spigell/match-responder/internal/secrets"
)

// session is everything a command needs to drive one matches view.
type session struct {
	logger     *zap.Logger
	config     *Config
	controller *matching.Controller
	format     render.Format
	explainer  ai.Explainer
}

func newSession(ctx context.Context) *session {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Debug("starting the match-responder",
		zap.String("version", version),
		zap.String("api_url", config.APIURL),
	)

	format, err := render.ParseFormat(config.Output)
	if err != nil {
		logger.Fatal("parsing output format", zap.Error(err))
	}

	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal(
			"loading matching service token",
			zap.Error(err),
			zap.String("hint", "set MATCH_TOKEN or MATCH_TOKEN_FILE environment variable or the 'token-file' key in the configuration file"),
		)
	}
	if token == "" {
		logger.Warn("no token configured, requests are sent without authorization")
	}

	client := matchapi.New(logger, token)
	client.APIURL = config.APIURL
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}
	client.SetRateLimit(config.RateLimit)

	controller, err := matching.NewController(client, initialQuery(config), logger)
	if err != nil {
		logger.Fatal("creating the matches controller", zap.Error(err))
	}

	s := &session{
		logger:     logger,
		config:     config,
		controller: controller,
		format:     format,
	}

	if config.AI != nil && config.AI.Enabled {
		explainer, err := newExplainer(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("skipping AI explanations", zap.Error(err))
		} else {
			s.explainer = explainer
		}
	}

	return s
}

func initialQuery(config *Config) matching.Query {
	q := matching.DefaultQuery()
	if config.Query == nil {
		return q
	}

	if config.Query.PageSize != 0 {
		q.PageSize = config.Query.PageSize
	}
	if sortBy := strings.TrimSpace(config.Query.SortBy); sortBy != "" {
		q.SortBy = matching.SortBy(strings.ToLower(sortBy))
	}

	return q
}

// resolveToken returns an empty token when no source is configured.
func resolveToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	if strings.TrimSpace(config.TokenFile) == "" && strings.TrimSpace(config.Token) == "" {
		return "", nil
	}

	return secrets.Load(secrets.Source{
		Name:  "matching service token",
		File:  config.TokenFile,
		Value: config.Token,
	})
}

func newExplainer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Explainer, error) {
	if cfg.Gemini == nil {
		return nil, errors.New("ai.gemini section is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewExplainer(generator, logger, cfg.Gemini.MaxLogLength), nil
}

// print renders the controller state to stdout in the configured format.
func (s *session) print() {
	if err := render.Write(stdout, s.format, s.controller.Snapshot()); err != nil {
		s.logger.Fatal("rendering matches", zap.Error(err))
	}
}

// fail reports a failed operation with the message meant for the user.
func (s *session) fail(step string, err error) {
	fields := []zap.Field{zap.Error(err)}

	var opErr *matching.OpError
	if errors.As(err, &opErr) && opErr.Status != 0 {
		fields = append(fields, zap.Int("status", opErr.Status))
	}

	s.logger.Fatal(step, fields...)
}
