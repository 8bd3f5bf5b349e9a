package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"habbitgold/internal/crypto"
	"habbitgold/internal/handlers"
	"habbitgold/internal/ledger"
	mw "habbitgold/internal/middleware"
	"habbitgold/internal/reminder"
	"habbitgold/internal/services"
	"habbitgold/internal/store"
)

// Salt for deriving the at-rest key from the shared secret. Fixed per data
// format version; changing it invalidates stored payment labels.
const keySalt = "habbitgold-at-rest-v1"

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using fallback", slog.String("key", key), slog.String("value", v))
		return fallback
	}
	return d
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	secret := os.Getenv("HG_SECRET")
	if secret == "" {
		slog.Error("HG_SECRET is required")
		os.Exit(1)
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		slog.Warn("GEMINI_API_KEY not set; verification and scans will run on fallbacks")
	}

	port := mustGetenv("PORT", "8080")
	settleDelay := getenvDuration("HG_SETTLE_DELAY", 2*time.Second)
	scanDelay := getenvDuration("HG_SCAN_DELAY", 3*time.Second)

	// On-device sqlite file by default; Postgres when DATABASE_URL is set.
	driver, dsn := "sqlite", mustGetenv("HG_DATA_FILE", "habbitgold.db")
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		driver, dsn = "pgx", databaseURL
	}
	sqlStore, err := store.Open(driver, dsn)
	if err != nil {
		slog.Error("failed to open store", slog.String("driver", driver), slog.Any("err", err))
		os.Exit(1)
	}
	defer sqlStore.Close()

	encSvc, err := services.NewEncryptionService(crypto.DeriveKey(secret, []byte(keySalt)))
	if err != nil {
		slog.Error("failed to init encryption", slog.Any("err", err))
		os.Exit(1)
	}
	st := store.NewEncrypted(sqlStore, encSvc)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		slog.Error("failed to init request logger", slog.Any("err", err))
		os.Exit(1)
	}
	defer zapLogger.Sync()

	l := ledger.New()
	gemini := services.NewGeminiService(geminiKey)

	var notifier reminder.Notifier = &reminder.LogNotifier{Logger: logger}
	fallback := &reminder.LogNotifier{Logger: logger}
	if webhook := os.Getenv("HG_NOTIFY_WEBHOOK"); webhook != "" {
		notifier = reminder.NewWebhookNotifier(webhook)
	}
	scheduler := reminder.NewScheduler(st, notifier, fallback, logger)
	scheduler.Start()
	defer scheduler.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(zapLogger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(st, l, []byte(secret))
	profileHandler := handlers.NewProfileHandler(st, l)
	habitsHandler := handlers.NewHabitsHandler(st, l, gemini, scanDelay)
	rewardsHandler := handlers.NewRewardsHandler(st, l, settleDelay)
	historyHandler := handlers.NewHistoryHandler(st)
	dashboardHandler := handlers.NewDashboardHandler(st)
	scanHandler := handlers.NewScanHandler(st, gemini, scanDelay)
	migrateHandler := handlers.NewMigrateHandler(st)
	authMW := mw.NewAuthMiddleware([]byte(secret))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/auth/logout", authHandler.Logout)
			pr.Get("/me", profileHandler.GetMe)
			pr.Post("/me/theme", profileHandler.ToggleTheme)
			pr.Get("/habits", habitsHandler.List)
			pr.Post("/habits", habitsHandler.Add)
			pr.Put("/habits/{id}/reminder", habitsHandler.SetReminder)
			pr.Post("/habits/{id}/complete", habitsHandler.Complete)
			pr.Get("/history", historyHandler.List)
			pr.Get("/dashboard", dashboardHandler.Get)
			pr.Post("/rewards/cashout", rewardsHandler.Cashout)
			pr.Get("/payment-methods", rewardsHandler.ListPaymentMethods)
			pr.Post("/payment-methods", rewardsHandler.AddPaymentMethod)
			pr.Post("/scan", scanHandler.Run)
			pr.Get("/export", migrateHandler.Export)
			pr.Post("/import", migrateHandler.Import)
		})
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+port), slog.String("store", driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	slog.Info("server stopped")
}
