package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/civicsource/civicsource/internal/ai"
	"github.com/civicsource/civicsource/internal/ai/gemini"
	"github.com/civicsource/civicsource/internal/logger"
	"github.com/civicsource/civicsource/internal/search"
	"github.com/civicsource/civicsource/internal/secrets"
	"github.com/civicsource/civicsource/internal/server"
	"github.com/civicsource/civicsource/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the collaborator API: procurement storage, business search and chat",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", server.DefaultAddr, "address to listen on")
	serveCmd.Flags().String("database-url", "", "PostgreSQL connection string. In-memory storage is used when unset.")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.database-url", serveCmd.Flags().Lookup("database-url"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the civicsource api", zap.String("version", version))

	st, err := newStore(ctx, config.Server, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	defer st.Close()

	sources, err := newSearchSources(config.Server, logger)
	if err != nil {
		logger.Fatal("configuring search", zap.Error(err))
	}

	replier, err := newReplier(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("assistant falls back to static guidance", zap.Error(err))
		replier = ai.Static{}
	}

	srv := server.New(st, search.NewAggregator(sources, config.Server.PerSourceLimit, logger), replier, logger)
	if err := srv.Run(ctx, config.Server.Addr); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}

func newStore(ctx context.Context, cfg ServerConfig, logger *zap.Logger) (store.Store, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Info("using in-memory storage")
		return store.NewMemory(), nil
	}

	db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("using postgres storage")
	return db, nil
}

func newSearchSources(cfg ServerConfig, logger *zap.Logger) ([]search.Source, error) {
	var sources []search.Source

	configured := []struct {
		name  string
		src   SourceConfig
		build func(key, baseURL string) search.Source
	}{
		{"yelp", cfg.Yelp, func(key, baseURL string) search.Source { return search.NewYelp(key, baseURL) }},
		{"google places", cfg.GooglePlaces, func(key, baseURL string) search.Source { return search.NewGooglePlaces(key, baseURL) }},
		{"rapidapi", cfg.RapidAPI, func(key, baseURL string) search.Source { return search.NewRapidAPI(key, baseURL) }},
	}

	for _, c := range configured {
		key, err := secrets.Optional(secrets.Source{
			Name:  c.name + " api key",
			Value: c.src.APIKey,
			File:  c.src.APIKeyFile,
		})
		if err != nil {
			return nil, err
		}
		if key == "" {
			logger.Debug("search source disabled", zap.String("source", c.name), zap.String("reason", "no api key"))
			continue
		}
		sources = append(sources, c.build(key, c.src.BaseURL))
	}

	if len(sources) == 0 {
		logger.Info("no search api keys configured, serving the sample directory")
	}
	return sources, nil
}

func newReplier(ctx context.Context, cfg AIConfig, base *zap.Logger) (ai.Replier, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Optional(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		if cfg.Enabled {
			return nil, fmt.Errorf("gemini api key is not configured (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)")
		}
		return ai.Static{}, nil
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, logger.WithAI(base, "gemini", cfg.Gemini.Model))
	if err != nil {
		return nil, err
	}

	assistant := gemini.NewAssistant(generator, cfg.Gemini.MaxLogLength, logger.WithAI(base, "gemini", generator.Model()))
	assistant.SetPromptOverrides(gemini.PromptOverrides{
		City:  cfg.Gemini.City,
		Notes: cfg.Gemini.Notes,
	})
	return assistant, nil
}
