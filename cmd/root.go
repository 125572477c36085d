package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/match-responder/internal/ai/gemini"
	"github.com/spigell/match-responder/internal/matchapi"
	"github.com/spigell/match-responder/internal/matching"
)

const (
	app = "match-responder"
)

type Config struct {
	APIURL    string        `mapstructure:"api-url"`
	UserAgent string        `mapstructure:"user-agent"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate-limit"`
	Output    string        `mapstructure:"output"`
	Query     *QueryConfig  `mapstructure:"query"`
	AI        *AIConfig     `mapstructure:"ai"`
}

type QueryConfig struct {
	PageSize int    `mapstructure:"page-size"`
	SortBy   string `mapstructure:"sort-by"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "match-responder is a cli for browsing and refining job matches computed by the matching service",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindings := map[string]string{
		"token":             "MATCH_TOKEN",
		"token-file":        "MATCH_TOKEN_FILE",
		"api-url":           "MATCH_API_URL",
		"ai.gemini.api-key": "GEMINI_API_KEY",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("api-url", matchapi.DefaultAPIURL)
	viper.SetDefault("user-agent", matchapi.DefaultUserAgent)
	viper.SetDefault("timeout", matchapi.DefaultTimeout)
	viper.SetDefault("rate-limit", 2)
	viper.SetDefault("output", "text")
	viper.SetDefault("query.page-size", matching.DefaultPageSize)
	viper.SetDefault("query.sort-by", string(matching.SortByScore))
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.gemini.model", gemini.DefaultModel)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is match-responder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: text, json or yaml")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

func initConfig() {
	// .env is optional, values already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// Without a config file the defaults and the environment are enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
