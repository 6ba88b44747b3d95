package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/dompetku/backend/src/config"
	"github.com/username/dompetku/backend/src/database"
	"github.com/username/dompetku/backend/src/handlers"
	"github.com/username/dompetku/backend/src/logger"
	"github.com/username/dompetku/backend/src/processors"
	"github.com/username/dompetku/backend/src/security"
	"github.com/username/dompetku/backend/src/services"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(config.Cfg.AllowedOrigins))
	for _, origin := range config.Cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// spaHandler serves the built frontend: real files when they exist, otherwise
// index.html so client-side routing works on a hard refresh.
func spaHandler(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Dompetku backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath, config.Cfg.MigrationsPath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	handlers.InitializeGoogleOAuthConfig()

	authService := security.NewAuthService(config.Cfg.JWTSecret)
	mfaService := services.NewMFAService()

	avatarStore, err := services.NewDiskBlobStore(config.Cfg.AvatarStoragePath)
	if err != nil {
		logger.L.Error("Failed to initialize avatar storage", "error", err)
		os.Exit(1)
	}

	aggregator := processors.NewTransactionAggregator()
	budgetProcessor := processors.NewBudgetProcessor(aggregator)
	goalProcessor := processors.NewGoalProcessor()
	debtProcessor := processors.NewDebtProcessor()
	reportProcessor := processors.NewReportProcessor()

	debtService := services.NewDebtService(database.DB, debtProcessor)
	reportService := services.NewReportService(
		database.DB,
		reportCache,
		aggregator,
		budgetProcessor,
		goalProcessor,
		debtProcessor,
		reportProcessor,
	)

	userHandler := handlers.NewUserHandler(authService, mfaService, reportService, avatarStore)
	txHandler := handlers.NewTransactionHandler(reportService)
	budgetHandler := handlers.NewBudgetHandler(reportService)
	goalHandler := handlers.NewGoalHandler(reportService)
	debtHandler := handlers.NewDebtHandler(debtService, reportService)
	dashboardHandler := handlers.NewDashboardHandler(reportService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": "dompetku-backend"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Get("/auth/csrf", handlers.GetCSRFToken)
			r.Get("/auth/google/login", userHandler.HandleGoogleLogin)
			r.Get("/auth/google/callback", userHandler.HandleGoogleCallback)
		})

		// Authentication routes (CSRF protected)
		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey))
			r.Post("/auth/login", userHandler.LoginUserHandler)
			r.Post("/auth/register", userHandler.RegisterUserHandler)
			r.Post("/auth/refresh", userHandler.RefreshTokenHandler)
			r.With(userHandler.AuthMiddleware).Post("/auth/logout", userHandler.LogoutUserHandler)
		})

		// Protected routes (authentication and CSRF required)
		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey))
			r.Use(userHandler.AuthMiddleware)

			r.Get("/user/profile", userHandler.GetProfileHandler)
			r.Put("/user/profile", userHandler.UpdateProfileHandler)
			r.Get("/user/has-data", userHandler.HandleCheckUserData)
			r.Post("/user/change-password", userHandler.ChangePasswordHandler)
			r.Post("/user/delete-account", userHandler.DeleteAccountHandler)
			r.Get("/user/avatar", userHandler.HandleGetAvatar)
			r.Post("/user/avatar", userHandler.HandleUploadAvatar)
			r.Get("/user/mfa/setup", userHandler.HandleSetupMFA)
			r.Post("/user/mfa/activate", userHandler.HandleActivateMFA)
			r.Post("/user/mfa/disable", userHandler.HandleDisableMFA)

			r.Get("/transactions", txHandler.HandleListTransactions)
			r.Post("/transactions", txHandler.HandleCreateTransaction)
			r.Get("/transactions/export", txHandler.HandleExportTransactions)
			r.Get("/transactions/{id}", txHandler.HandleGetTransaction)
			r.Put("/transactions/{id}", txHandler.HandleUpdateTransaction)
			r.Delete("/transactions/{id}", txHandler.HandleDeleteTransaction)

			r.Get("/budgets", budgetHandler.HandleListBudgets)
			r.Post("/budgets", budgetHandler.HandleCreateBudget)
			r.Put("/budgets/{id}", budgetHandler.HandleUpdateBudget)
			r.Delete("/budgets/{id}", budgetHandler.HandleDeleteBudget)

			r.Get("/goals", goalHandler.HandleListGoals)
			r.Post("/goals", goalHandler.HandleCreateGoal)
			r.Put("/goals/{id}", goalHandler.HandleUpdateGoal)
			r.Delete("/goals/{id}", goalHandler.HandleDeleteGoal)

			r.Get("/debts", debtHandler.HandleListDebts)
			r.Post("/debts", debtHandler.HandleCreateDebt)
			r.Get("/debts/summary", debtHandler.HandleDebtSummary)
			r.Get("/debts/{id}", debtHandler.HandleGetDebt)
			r.Put("/debts/{id}", debtHandler.HandleUpdateDebt)
			r.Delete("/debts/{id}", debtHandler.HandleDeleteDebt)
			r.Get("/debts/{id}/payments", debtHandler.HandleListDebtPayments)
			r.Post("/debts/{id}/payments", debtHandler.HandleApplyPayment)

			r.Get("/dashboard", dashboardHandler.HandleGetDashboard)
			r.Get("/reports/monthly", dashboardHandler.HandleMonthlyReport)
			r.Get("/reports/categories", dashboardHandler.HandleCategoryReport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		spaHandler(config.Cfg.StaticFilesDir)(w, r)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
