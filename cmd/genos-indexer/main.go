// Package main is the genos-indexer CLI: it indexes brands and content into
// the RAG store and runs ad hoc similarity searches against it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/upb/genos-ai/app"
	"github.com/upb/genos-ai/config"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "genos-indexer",
	Short: "Index brand and content data for retrieval-augmented generation",
	Long: `genos-indexer maintains the content_embeddings table used by the generation
API. It reads the same environment as genos-api; a genos.yaml file and GENOS_*
variables override it.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./genos.yaml or ~/.config/genos/genos.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configureViper(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureViper sets the config file lookup and the GENOS_* environment
// mapping, where nested keys use underscores (GENOS_WATSONX_API_KEY).
func configureViper(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("genos")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "genos"))
		}
	}

	v.SetEnvPrefix("GENOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// applyOverrides layers viper values over the environment configuration
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if s := v.GetString("database_url"); s != "" {
		cfg.Database.ConnectionString = s
	}
	if s := v.GetString("watsonx.api_key"); s != "" {
		cfg.Providers.Watsonx.APIKey = s
	}
	if s := v.GetString("watsonx.project_id"); s != "" {
		cfg.Providers.Watsonx.ProjectID = s
	}
	if s := v.GetString("watsonx.url"); s != "" {
		cfg.Providers.Watsonx.BaseURL = s
	}
	if n := v.GetInt("rag.index_concurrency"); n > 0 {
		cfg.RAG.IndexConcurrency = n
	}
	if n := v.GetInt("rag.content_item_limit"); n > 0 {
		cfg.RAG.ContentItemLimit = n
	}
	if s := v.GetString("log_level"); s != "" {
		cfg.Observability.LogLevel = s
	}

	// the CLI never serves generations
	cfg.RateLimit.Enabled = false
	cfg.Redis.URL = ""
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// withDependencies loads configuration, wires the application and runs fn.
// Audit workers run for the duration so index runs are recorded.
func withDependencies(ctx context.Context, fn func(ctx context.Context, deps *app.Dependencies) error) error {
	cfg, err := config.New(ctx)
	if err != nil {
		return err
	}
	applyOverrides(cfg, viper.GetViper())

	logger, err := newLogger(cfg.Observability.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(context.Background()); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	if err := deps.Start(ctx); err != nil {
		return err
	}

	return fn(ctx, deps)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
