package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"quizhub/internal/config"
	"quizhub/internal/database"
	"quizhub/internal/generator"
	"quizhub/internal/handlers"
	"quizhub/internal/repository"
	"quizhub/internal/security"
	"quizhub/internal/service"
	"quizhub/internal/tokenstore"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	contentRepo := repository.NewContentRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	// Question generator: AI-backed when credentials are present, with
	// placeholder questions as the fallback either way.
	var inner generator.Generator
	if cfg.OpenAIAPIKey != "" {
		inner = generator.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Printf("Question generator using model %s", cfg.OpenAIModel)
	} else {
		log.Println("OPENAI_API_KEY not set, using placeholder questions")
	}
	gen := generator.WithFallback(inner)

	// Password reset token store (disabled without Redis)
	tokens := tokenstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.SecretKey, cfg.ResetTokenTTL)
	if !tokens.Enabled() {
		log.Println("REDIS_ADDR not set, password reset disabled")
	}

	emailService, err := service.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, profileRepo, tokens, emailService, cfg.SessionDuration, cfg.RememberDuration)
	contentService := service.NewContentService(contentRepo)
	profileService := service.NewProfileService(profileRepo, attemptRepo, contentRepo)
	attemptService := service.NewAttemptService(db, gen, contentRepo, quizRepo, attemptRepo, profileRepo)
	adminService := service.NewAdminService(userRepo, profileRepo, contentRepo, quizRepo, attemptRepo)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.SecretKey)
	middleware := handlers.NewMiddleware(authService, profileService, csrf)
	authHandler := handlers.NewAuthHandler(authService, templates, oauthProviders, cfg.OAuthRedirectBaseURL)
	quizHandler := handlers.NewQuizHandler(contentService, profileService, middleware, templates)
	attemptHandler := handlers.NewAttemptHandler(attemptService, middleware, templates)
	profileHandler := handlers.NewProfileHandler(profileService, contentService, middleware, templates)
	adminHandler := handlers.NewAdminHandler(adminService, contentService, middleware, templates)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", quizHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /forgot-password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /reset-password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Authenticated routes
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(quizHandler.Dashboard))
	mux.HandleFunc("GET /browse", middleware.RequireAuth(quizHandler.Browse))
	mux.HandleFunc("GET /category/{id}", middleware.RequireAuth(quizHandler.CategoryDetail))
	mux.HandleFunc("GET /subcategories/{id}/start", middleware.RequireAuth(quizHandler.ShowStartForm))
	mux.HandleFunc("GET /profile", middleware.RequireAuth(profileHandler.ShowProfile))
	mux.HandleFunc("POST /profile", middleware.RequireAuth(middleware.CSRFProtect(profileHandler.UpdateProfile)))

	// Quiz attempt routes
	mux.HandleFunc("POST /start", middleware.RequireAuth(middleware.CSRFProtect(attemptHandler.Start)))
	mux.HandleFunc("GET /take/{id}", middleware.RequireAuth(attemptHandler.Take))
	mux.HandleFunc("POST /answer/{id}", middleware.RequireAuth(middleware.CSRFProtect(attemptHandler.Answer)))
	mux.HandleFunc("POST /submit/{id}", middleware.RequireAuth(middleware.CSRFProtect(attemptHandler.Submit)))
	mux.HandleFunc("GET /results/{id}", middleware.RequireAuth(attemptHandler.Results))
	mux.HandleFunc("GET /history", middleware.RequireAuth(attemptHandler.History))

	// Admin panel routes
	mux.HandleFunc("GET /admin-panel", middleware.RequireAdmin(adminHandler.Dashboard))
	mux.HandleFunc("GET /admin-panel/users", middleware.RequireAdmin(adminHandler.ListUsers))
	mux.HandleFunc("GET /admin-panel/users/{id}", middleware.RequireAdmin(adminHandler.ShowEditUser))
	mux.HandleFunc("POST /admin-panel/users/{id}", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.UpdateUser)))
	mux.HandleFunc("POST /admin-panel/users/{id}/toggle-admin", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.ToggleQuizAdmin)))
	mux.HandleFunc("GET /admin-panel/categories", middleware.RequireAdmin(adminHandler.ListCategories))
	mux.HandleFunc("POST /admin-panel/categories", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CreateCategory)))
	mux.HandleFunc("POST /admin-panel/categories/{id}", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.UpdateCategory)))
	mux.HandleFunc("POST /admin-panel/categories/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteCategory)))
	mux.HandleFunc("GET /admin-panel/subcategories", middleware.RequireAdmin(adminHandler.ListSubcategories))
	mux.HandleFunc("POST /admin-panel/subcategories", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.CreateSubcategory)))
	mux.HandleFunc("POST /admin-panel/subcategories/{id}", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.UpdateSubcategory)))
	mux.HandleFunc("POST /admin-panel/subcategories/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteSubcategory)))
	mux.HandleFunc("GET /admin-panel/quizzes", middleware.RequireAdmin(adminHandler.ListQuizzes))
	mux.HandleFunc("POST /admin-panel/quizzes/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteQuiz)))
	mux.HandleFunc("GET /admin-panel/attempts", middleware.RequireAdmin(adminHandler.ListAttempts))
	mux.HandleFunc("POST /admin-panel/attempts/{id}/delete", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.DeleteAttempt)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	pattern := filepath.Join(templatesPath, "*.tmpl")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}

	// Define template functions
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"mul": func(a, b int) int {
			return a * b
		},
		"div": func(a, b int) int {
			if b == 0 {
				return 0
			}
			return a / b
		},
		"pct": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return int(float64(part) / float64(total) * 100)
		},
		"derefInt": func(v *int) int {
			if v == nil {
				return 0
			}
			return *v
		},
		"deref64": func(v *int64) int64 {
			if v == nil {
				return 0
			}
			return *v
		},
		"derefStr": func(v *string) string {
			if v == nil {
				return ""
			}
			return *v
		},
	}

	// Parse all templates with functions
	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
