package app

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/genos-ai/config"
	"github.com/upb/genos-ai/handlers"
	"github.com/upb/genos-ai/middleware"
	"github.com/upb/genos-ai/repositories"
	"github.com/upb/genos-ai/repositories/postgres"
	"github.com/upb/genos-ai/services/audit"
	"github.com/upb/genos-ai/services/billing"
	"github.com/upb/genos-ai/services/brand"
	"github.com/upb/genos-ai/services/embedding"
	"github.com/upb/genos-ai/services/feedback"
	"github.com/upb/genos-ai/services/generation"
	"github.com/upb/genos-ai/services/providers"
	"github.com/upb/genos-ai/services/providers/anthropic"
	"github.com/upb/genos-ai/services/providers/gemini"
	"github.com/upb/genos-ai/services/providers/watsonx"
	"github.com/upb/genos-ai/services/rag"
	"github.com/upb/genos-ai/services/ratelimit"
	"github.com/upb/genos-ai/services/routing"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies. This is the central
// wiring point shared by the API server and the indexer CLI.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories

	// Generation backends
	Providers *providers.Registry
	Watsonx   *watsonx.Client

	// Services
	Routing    *routing.RoutingService
	Audit      *audit.AuditService
	Billing    *billing.BillingService
	Brands     *brand.Loader
	Indexer    *rag.Indexer
	Retriever  *rag.Retriever // nil when RAG is disabled or watsonx is not configured
	RateLimit  *ratelimit.RateLimitService
	Redis      *ratelimit.RedisCounter // nil without REDIS_URL
	Generation *generation.GenerationService
	Index      *generation.IndexService
	Feedback   *feedback.FeedbackService

	AuthMiddleware *middleware.AuthMiddleware

	started bool
}

// NewDependencies opens the database and wires every component
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromDB(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesFromDB wires every component over an open repository factory
func NewDependenciesFromDB(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		Repos:       factory.NewRepositories(),
	}

	if cfg.Database.InitSchema {
		if err := deps.DB.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	if err := deps.initProviders(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	if err := deps.initRateLimit(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	deps.initServices(cfg)
	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initProviders registers the three generation backends. Missing credentials
// do not prevent registration; the first call reports them.
func (d *Dependencies) initProviders(cfg *config.Config) error {
	registry := providers.NewRegistry()
	p := cfg.Providers

	d.Watsonx = watsonx.NewClient(watsonx.Config{
		APIKey:         p.Watsonx.APIKey,
		ProjectID:      p.Watsonx.ProjectID,
		BaseURL:        p.Watsonx.BaseURL,
		IAMURL:         p.Watsonx.IAMURL,
		EmbeddingModel: p.Watsonx.EmbeddingModel,
		Timeout:        p.Watsonx.Timeout,
	})

	all := []providers.Provider{
		anthropic.NewAdapter(providers.ProviderConfig{
			APIKey:  p.Anthropic.APIKey,
			BaseURL: p.Anthropic.BaseURL,
			Model:   p.Anthropic.Model,
			Timeout: p.Anthropic.Timeout,
		}),
		gemini.NewAdapter(providers.ProviderConfig{
			APIKey:  p.Gemini.APIKey,
			BaseURL: p.Gemini.BaseURL,
			Model:   p.Gemini.Model,
			Timeout: p.Gemini.Timeout,
		}),
		watsonx.NewGraniteProvider(d.Watsonx),
	}

	for _, provider := range all {
		if err := registry.Register(provider); err != nil {
			return err
		}
		if !provider.Configured() {
			d.Logger.Warn("provider registered without credentials", zap.String("provider", string(provider.Name())))
			continue
		}
		d.Logger.Info("provider registered", zap.String("provider", string(provider.Name())))
	}

	d.Providers = registry
	return nil
}

func (d *Dependencies) initRateLimit(cfg *config.Config) error {
	if !cfg.RateLimit.Enabled {
		d.Logger.Info("generation rate limit disabled")
		return nil
	}

	var counter ratelimit.Counter
	if cfg.Redis.Enabled() {
		redisCounter, err := ratelimit.NewRedisCounter(cfg.Redis.URL, d.Logger)
		if err != nil {
			return err
		}
		d.Redis = redisCounter
		counter = redisCounter
	} else {
		d.Logger.Info("REDIS_URL not set, rate limiting per instance")
	}

	d.RateLimit = ratelimit.NewRateLimitService(counter, ratelimit.Config{
		GenerationsPerHour: cfg.RateLimit.GenerationsPerHour,
		LocalBurst:         cfg.RateLimit.LocalBurst,
	}, d.Logger)
	return nil
}

func (d *Dependencies) initServices(cfg *config.Config) {
	repos := d.Repos

	d.Routing = routing.NewRoutingService(d.Providers, routing.DefaultBreakerConfig(), d.Logger)
	d.Audit = audit.NewAuditService(repos.Audit, d.Logger, audit.DefaultConfig())
	d.Billing = billing.NewBillingService(repos.TokenLedger, repos.TxManager, d.Logger)
	d.Brands = brand.NewLoader(repos.Brands, d.Logger)

	embedder := embedding.NewService(d.Watsonx, cfg.RAG.IndexConcurrency, d.Logger)
	d.Indexer = rag.NewIndexer(embedder, repos.Embeddings, d.Logger)

	// an untyped nil keeps RAG off inside the generation service
	var retriever generation.Retriever
	if cfg.RAG.Enabled && d.Watsonx.Configured() {
		d.Retriever = rag.NewRetriever(embedder, repos.Embeddings, d.Logger)
		retriever = d.Retriever
	} else {
		d.Logger.Info("RAG disabled for generation",
			zap.Bool("rag_enabled", cfg.RAG.Enabled),
			zap.Bool("watsonx_configured", d.Watsonx.Configured()))
	}

	d.Generation = generation.NewGenerationService(
		d.Brands,
		retriever,
		rag.Options{TopK: cfg.RAG.TopK, SimilarityThreshold: rag.Threshold(cfg.RAG.SimilarityThreshold)},
		d.Routing,
		d.Audit,
		d.Billing,
		d.Logger,
	)
	d.Index = generation.NewIndexService(repos.Brands, repos.ContentItems, d.Indexer, d.Audit, cfg.RAG.ContentItemLimit, d.Logger)
	d.Feedback = feedback.NewFeedbackService(repos.Feedback, d.Logger)
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	if cfg.Auth.JWTSecret == "" {
		d.Logger.Warn("JWT_SECRET not set, protected routes reject every token")
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(middleware.NewHS256Validator(cfg.Auth.JWTSecret, cfg.Auth.Issuer), d.Logger)
}

// HealthChecks returns the readiness dependencies
func (d *Dependencies) HealthChecks() map[string]handlers.Checker {
	checks := map[string]handlers.Checker{"database": d.DB}
	if d.Redis != nil {
		checks["redis"] = handlers.CheckFunc(d.Redis.Ping)
	}
	return checks
}

// Start launches background workers
func (d *Dependencies) Start(ctx context.Context) error {
	if err := d.Audit.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}
	d.started = true
	if d.RateLimit != nil {
		d.RateLimit.StartCleanup(ctx, 5*time.Minute)
	}
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.started {
		d.started = false
		timeout := 5 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := d.Audit.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain audit events: %w", err))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
