package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/legendmotors/skywell-leads/internal/content"
	"github.com/legendmotors/skywell-leads/internal/forms"
	"github.com/legendmotors/skywell-leads/internal/http/handlers"
	httpmiddleware "github.com/legendmotors/skywell-leads/internal/http/middleware"
	"github.com/legendmotors/skywell-leads/internal/http/respond"
	"github.com/legendmotors/skywell-leads/internal/leads"
	"github.com/legendmotors/skywell-leads/internal/newsletter"
	"github.com/legendmotors/skywell-leads/internal/observability/metrics"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

// SubmitRoutes maps each lead submission path to its form kind.
var SubmitRoutes = []struct {
	Path string
	Kind leads.Kind
}{
	{"/api/submit-test-drive", leads.KindTestDrive},
	{"/api/submit-quote", leads.KindQuote},
	{"/api/submit-contact", leads.KindContact},
	{"/api/submit-service", leads.KindService},
}

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	FormsHandler       *forms.Handler
	BlogHandler        *content.Handler[content.Blog, *content.Blog]
	OfferHandler       *content.Handler[content.Offer, *content.Offer]
	NewsletterHandler  *newsletter.Handler
	AdminSession       *handlers.AdminSessionHandler
	AdminAuthSecret    string
	SubmitLimiter      httpmiddleware.Limiter
	Metrics            *metrics.LeadMetrics
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	submitPaths := make([]string, 0, len(SubmitRoutes))
	for _, route := range SubmitRoutes {
		submitPaths = append(submitPaths, route.Path)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	// Submit routes answer their own preflight before the allowlist applies.
	r.Use(httpmiddleware.SubmitCORS(submitPaths...))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	limit := func(route string) func(http.Handler) http.Handler {
		if cfg.SubmitLimiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return httpmiddleware.RateLimit(cfg.SubmitLimiter, route, cfg.Metrics, cfg.Logger)
	}
	admin := httpmiddleware.AdminJWT(cfg.AdminAuthSecret)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Lead submission
	if cfg.LeadsHandler != nil {
		for _, route := range SubmitRoutes {
			r.With(limit("submit")).Post(route.Path, cfg.LeadsHandler.Submit(route.Kind))
			// Answered by SubmitCORS; registered so the method is routable.
			r.Options(route.Path, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		}
	}
	if cfg.FormsHandler != nil {
		r.With(limit("forms")).Post("/api/forms/{kind}", cfg.FormsHandler.Submit)
	}

	r.Route("/api/admin", func(ar chi.Router) {
		if cfg.AdminSession != nil {
			ar.With(limit("login")).Post("/login", cfg.AdminSession.Login)
			ar.Post("/logout", cfg.AdminSession.Logout)
		}

		ar.Group(func(pr chi.Router) {
			pr.Use(admin)
			if cfg.AdminSession != nil {
				pr.Get("/me", cfg.AdminSession.Me)
			}
			if cfg.LeadsHandler != nil {
				pr.Get("/leads", cfg.LeadsHandler.ListLeads(""))
				pr.Get("/leads/{id}", cfg.LeadsHandler.GetLead)
				pr.Delete("/leads/{id}", cfg.LeadsHandler.DeleteLead)
				pr.Get("/contacts", cfg.LeadsHandler.ListLeads(leads.KindContact))
				pr.Get("/quotes", cfg.LeadsHandler.ListLeads(leads.KindQuote))
				pr.Get("/test-drive", cfg.LeadsHandler.ListLeads(leads.KindTestDrive))
				pr.Get("/service", cfg.LeadsHandler.ListLeads(leads.KindService))
			}
			if cfg.BlogHandler != nil {
				pr.Get("/blogs", cfg.BlogHandler.List(false))
				pr.Get("/blogs/{id}", cfg.BlogHandler.Get(false))
			}
			if cfg.OfferHandler != nil {
				pr.Get("/offers", cfg.OfferHandler.List(false))
				pr.Post("/offers", cfg.OfferHandler.Create)
				pr.Get("/offers/{id}", cfg.OfferHandler.Get(false))
				pr.Put("/offers/{id}", cfg.OfferHandler.Update)
				pr.Delete("/offers/{id}", cfg.OfferHandler.Delete)
			}
		})
	})

	if cfg.BlogHandler != nil {
		r.Route("/api/blogs", func(br chi.Router) {
			br.Get("/", cfg.BlogHandler.List(true))
			br.Get("/{id}", cfg.BlogHandler.Get(true))
			br.With(admin).Post("/", cfg.BlogHandler.Create)
			br.With(admin).Put("/{id}", cfg.BlogHandler.Update)
			br.With(admin).Delete("/{id}", cfg.BlogHandler.Delete)
		})
	}

	if cfg.OfferHandler != nil {
		r.Get("/api/offers", cfg.OfferHandler.List(true))
	}

	if cfg.NewsletterHandler != nil {
		r.Route("/api/newsletter", func(nr chi.Router) {
			nr.With(limit("newsletter")).Post("/", cfg.NewsletterHandler.Subscribe)
			nr.With(admin).Get("/", cfg.NewsletterHandler.List)
			nr.With(admin).Delete("/{id}", cfg.NewsletterHandler.Delete)
		})
	}

	return r
}
