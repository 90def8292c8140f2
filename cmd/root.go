package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "civicsource"
)

type Config struct {
	APIURL    string          `mapstructure:"api-url"`
	UserAgent string          `mapstructure:"user-agent"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
}

type MatchingConfig struct {
	MinLatency      time.Duration `mapstructure:"min-latency"`
	SourceLimit     int           `mapstructure:"source-limit"`
	Keep            int           `mapstructure:"keep"`
	DisableDedupe   bool          `mapstructure:"disable-dedupe"`
	ExcludeFile     string        `mapstructure:"exclude-file"`
	ExcludedVendors []string      `mapstructure:"excluded-vendors"`
}

type AssistantConfig struct {
	Cadence        time.Duration `mapstructure:"cadence"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
}

type ServerConfig struct {
	Addr           string       `mapstructure:"addr"`
	DatabaseURL    string       `mapstructure:"database-url"`
	PerSourceLimit int          `mapstructure:"per-source-limit"`
	Yelp           SourceConfig `mapstructure:"yelp"`
	GooglePlaces   SourceConfig `mapstructure:"google-places"`
	RapidAPI       SourceConfig `mapstructure:"rapidapi"`
}

type SourceConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
}

type AIConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
	City         string `mapstructure:"city"`
	Notes        string `mapstructure:"notes"`
}

var envBindings = map[string]string{
	"api-url":                      "CIVICSOURCE_API_URL",
	"server.database-url":          "DATABASE_URL",
	"server.yelp.api-key":          "YELP_API_KEY",
	"server.google-places.api-key": "GOOGLE_PLACES_API_KEY",
	"server.rapidapi.api-key":      "RAPID_API_KEY",
	"ai.gemini.api-key":            "GEMINI_API_KEY",
	"ai.gemini.api-key-file":       "GEMINI_API_KEY_FILE",
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "civicsource connects city buyers with local businesses and shows the public where the money goes",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is civicsource.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so only an explicit or broken config is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
