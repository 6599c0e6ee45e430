package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/healthmate-api/internal/auth"
	"github.com/redmonkez12/healthmate-api/internal/chatbot"
	"github.com/redmonkez12/healthmate-api/internal/config"
	"github.com/redmonkez12/healthmate-api/internal/httputil"
	"github.com/redmonkez12/healthmate-api/internal/logging"
	"github.com/redmonkez12/healthmate-api/internal/report"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth    *auth.Handler
	Report  *report.Handler
	Chatbot *chatbot.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders(cfg.Server.IsProduction()))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		logger.Info("swagger UI disabled", "env", cfg.Server.Env)
	}

	// the web client calls the same endpoints under /api
	mountAPI(r, h, authMiddleware)
	r.Route("/api", func(r chi.Router) {
		mountAPI(r, h, authMiddleware)
	})

	return r
}

func mountAPI(r chi.Router, h Handlers, authMiddleware *auth.Middleware) {
	r.Get("/auth", h.Auth.Me)
	r.Post("/auth", h.Auth.Post)

	// identity is attached when present but never required
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.WithIdentity)
		r.Post("/parse-pdf", h.Report.ParsePDF)
		r.Post("/summary", h.Report.Summary)
		r.Post("/chatbot", h.Chatbot.Chat)
	})
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
