package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/legendmotors/skywell-leads/internal/api/router"
	appconfig "github.com/legendmotors/skywell-leads/internal/config"
	"github.com/legendmotors/skywell-leads/internal/content"
	"github.com/legendmotors/skywell-leads/internal/crm"
	"github.com/legendmotors/skywell-leads/internal/forms"
	"github.com/legendmotors/skywell-leads/internal/http/handlers"
	httpmiddleware "github.com/legendmotors/skywell-leads/internal/http/middleware"
	"github.com/legendmotors/skywell-leads/internal/leads"
	"github.com/legendmotors/skywell-leads/internal/newsletter"
	"github.com/legendmotors/skywell-leads/internal/observability/metrics"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

// Deps are optional collaborators built by the binaries.
type Deps struct {
	DeadLetter leads.FailureSink
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
}

// App is the wired HTTP application plus the connections it owns.
type App struct {
	Handler http.Handler

	pool    *pgxpool.Pool
	sqlDB   *sql.DB
	mongo   *mongo.Client
	redis   *redis.Client
	limiter *httpmiddleware.RateLimiter
}

// Build connects the configured backends and wires every handler.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{}
	fail := func(err error) (*App, error) {
		app.Close(context.Background())
		return nil, err
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	leadMetrics := metrics.NewLeadMetrics(reg)

	var err error
	if cfg.DatabaseURL != "" {
		if app.pool, err = OpenPostgresPool(ctx, cfg.DatabaseURL); err != nil {
			return fail(err)
		}
		if app.sqlDB, err = OpenSQL(ctx, cfg.DatabaseURL); err != nil {
			return fail(err)
		}
	}
	var mongoDB *mongo.Database
	if cfg.MongoURI != "" {
		if app.mongo, err = OpenMongo(ctx, cfg.MongoURI); err != nil {
			return fail(err)
		}
		mongoDB = app.mongo.Database(cfg.MongoDatabase)
	}
	app.redis = BuildRedisClient(ctx, cfg, logger, true)

	leadStore, err := BuildLeadStore(cfg, app.pool, mongoDB)
	if err != nil {
		return fail(err)
	}
	blogStore, offerStore := BuildContentStores(mongoDB)

	gateway := crm.NewClient(cfg.CRMEndpoint, logger.With("component", "crm"),
		crm.WithTimeout(cfg.CRMTimeout),
		crm.WithMetrics(leadMetrics),
	)
	opts := []leads.PipelineOption{leads.WithMetrics(leadMetrics)}
	if deps.DeadLetter != nil {
		opts = append(opts, leads.WithFailureSink(deps.DeadLetter))
	}
	pipeline := leads.NewPipeline(leadStore, gateway, logger.With("component", "leads"), opts...)

	limiter := BuildSubmitLimiter(cfg, app.redis)
	if memLimiter, ok := limiter.(*httpmiddleware.RateLimiter); ok {
		app.limiter = memLimiter
	}

	app.Handler = router.New(&router.Config{
		Logger:       logger,
		LeadsHandler: leads.NewHandler(pipeline, leadStore, logger),
		FormsHandler: forms.NewHandler(pipeline, forms.Dealer{
			CompanyCode:        cfg.CRMCompanyCode,
			CompanyID:          cfg.CRMCompanyID,
			DealershipID:       cfg.CRMDealershipID,
			LeadSourceID:       cfg.CRMLeadSourceID,
			DefaultCountryCode: "+971",
			DefaultModel:       cfg.CRMDefaultModel,
		}, logger),
		BlogHandler:       content.NewBlogHandler(blogStore, logger),
		OfferHandler:      content.NewOfferHandler(offerStore, logger),
		NewsletterHandler: newsletter.NewHandler(BuildNewsletterStore(app.sqlDB), logger),
		AdminSession: handlers.NewAdminSessionHandler(
			handlers.AdminCredentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
			httpmiddleware.SessionConfig{Secret: cfg.AdminJWTSecret, TTL: cfg.AdminTokenTTL, CookieSecure: cfg.AdminCookieSecure},
			logger,
		),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		SubmitLimiter:      limiter,
		Metrics:            leadMetrics,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	logger.Info("application wired",
		"lead_store", cfg.LeadStore,
		"postgres", app.pool != nil,
		"mongo", app.mongo != nil,
		"redis", app.redis != nil,
		"dead_letter", deps.DeadLetter != nil,
	)
	return app, nil
}

// Close releases every connection the app opened.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
