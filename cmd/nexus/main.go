package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pysugar/social-nexus/internal/api"
	"github.com/pysugar/social-nexus/internal/auth"
	"github.com/pysugar/social-nexus/internal/config"
	"github.com/pysugar/social-nexus/internal/connect"
	linkedinconnect "github.com/pysugar/social-nexus/internal/connect/linkedin"
	twitterconnect "github.com/pysugar/social-nexus/internal/connect/twitter"
	"github.com/pysugar/social-nexus/internal/content"
	"github.com/pysugar/social-nexus/internal/db"
	"github.com/pysugar/social-nexus/internal/db/models"
	"github.com/pysugar/social-nexus/internal/logging"
	linkedinpublish "github.com/pysugar/social-nexus/internal/publish/linkedin"
	twitterpublish "github.com/pysugar/social-nexus/internal/publish/twitter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret)
	handshakes := connect.NewMemoryHandshakeStore(connect.DefaultHandshakeTTL)

	linkedIn := linkedinconnect.NewConnector(database, issuer, cfg.LinkedIn, cfg.FrontendURL)
	twitter := twitterconnect.NewConnector(database, handshakes, cfg.Twitter, cfg.FrontendURL)

	linkedInPoster := linkedinpublish.NewPublisher()
	twitterPoster := twitterpublish.NewPublisher(cfg.Twitter)

	gemini := content.NewClient(cfg.Gemini, "")

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// ============================================
	// Public Routes (No Auth Required)
	// ============================================

	r.Get("/", api.HealthHandler())

	r.Post("/auth/signup", auth.SignupHandler(database, issuer))
	r.Post("/auth/login", auth.LoginHandler(database, issuer))

	// OAuth callbacks are hit by provider redirects, so they carry no bearer
	// token. Each flow recovers the user from its own handshake.
	r.Get("/linkedin/callback", linkedIn.CallbackHandler())
	r.Get("/twitter/callback", twitter.CallbackHandler())

	// ============================================
	// Protected Routes (Bearer JWT Required)
	// ============================================

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(issuer))

		r.Route("/linkedin", func(r chi.Router) {
			r.Get("/login", linkedIn.LoginHandler())
			r.Get("/status", api.StatusHandler(database, models.ProviderLinkedIn))
			r.Delete("/disconnect", api.DisconnectHandler(database, models.ProviderLinkedIn))
			r.Post("/post", api.PostHandler(database, linkedInPoster))
		})

		r.Route("/twitter", func(r chi.Router) {
			r.Get("/login", twitter.LoginHandler())
			r.Get("/status", api.StatusHandler(database, models.ProviderTwitter))
			r.Delete("/disconnect", api.DisconnectHandler(database, models.ProviderTwitter))
			r.Post("/post", api.PostHandler(database, twitterPoster))
		})

		r.Route("/content", func(r chi.Router) {
			r.Post("/generate", content.GenerateHandler(gemini))
			r.Post("/generate-image", content.GenerateImageHandler(gemini))
		})
	})

	addr := cfg.Addr()
	log.Printf("🚀 Social-Nexus starting on http://%s", addr)
	log.Printf("🔗 Frontend origin: %s", cfg.FrontendURL)
	if !gemini.Configured() {
		log.Printf("⚠️ GEMINI_API_KEY not set, content generation disabled")
	}

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
