// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"go_5_srs_engine/internal/clock"
	"go_5_srs_engine/internal/config"
	"go_5_srs_engine/internal/handlers"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"
	"go_5_srs_engine/internal/repository"
	"go_5_srs_engine/internal/scheduler"
	"go_5_srs_engine/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	// Configを読み込み
	if err := config.LoadConfig("../configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...")

	// 2. Initialize Database Connection (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// スキーマ反映
	err = db.AutoMigrate(
		&model.UserConfig{},
		&model.Card{},
		&model.ReviewSession{},
		&model.ReviewResponse{},
		&model.ActiveSession{},
		&model.NotificationStrategy{},
		&model.ScheduledNotification{},
	)
	if err != nil {
		slog.Error("Error migrating database schema", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Dependency Injection
	cardRepo := repository.NewGormCardRepository()
	sessionRepo := repository.NewGormSessionRepository()
	configRepo := repository.NewGormConfigRepository()
	strategyRepo := repository.NewGormStrategyRepository()
	notificationRepo := repository.NewGormNotificationRepository()

	locker := service.NewLearnerLocker()
	clk := clock.Real()
	events := service.NewLogSink()

	// 通知の宛先解決 (SES利用時のみ実際に参照される)
	emailResolver := func(ctx context.Context, learnerID uuid.UUID) (string, error) {
		cfg, err := configRepo.FindByLearner(ctx, db, learnerID)
		if err != nil {
			return "", err
		}
		return cfg.Email, nil
	}
	sender := service.NewSender(&config.Cfg, emailResolver)
	dispatcher := service.NewTimerDispatcher(sender, clk)

	cardService := service.NewCardService(db, cardRepo, clk, config.Cfg.App.ReviewLimit)
	sessionService := service.NewSessionService(db, sessionRepo, cardRepo, configRepo, locker, clk, events, &config.Cfg)
	analyzerService := service.NewAnalyzerService(db, sessionRepo, configRepo, strategyRepo, locker, clk, &config.Cfg)
	notificationService := service.NewNotificationService(db, cardRepo, configRepo, strategyRepo, notificationRepo, dispatcher, locker, clk, events)
	learnerService := service.NewLearnerService(db, configRepo, notificationService, locker, clk, events)

	// セッション完了後は行動分析と通知再計画を行う (ロック解放後に呼ばれる)
	sessionService.SetCompletionHook(func(learnerID uuid.UUID) {
		ctx := context.Background()
		if err := analyzerService.AnalyzeLearner(ctx, learnerID); err != nil {
			logger.Warn("Post-session analysis failed", "learner_id", learnerID, "error", err)
		}
		if _, err := notificationService.ScheduleReminders(ctx, learnerID); err != nil {
			logger.Warn("Post-session reminder scheduling failed", "learner_id", learnerID, "error", err)
		}
	})

	cardHandler := handlers.NewCardHandler(cardService, logger)
	sessionHandler := handlers.NewSessionHandler(sessionService, logger)
	configHandler := handlers.NewConfigHandler(learnerService, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger)

	// 4. Setup Router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	// CORS 設定と適用 (設定ファイルから読み込んだ値を使用)
	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
		Debug:            false,
	}
	corsHandler := cors.New(corsOptions)
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/learners", configHandler.RegisterLearner) // 学習者登録 (認証不要)

		// --- Protected routes (require Learner ID) ---
		r.Group(func(r chi.Router) {
			slog.Info("Applying learner authentication middleware")
			r.Use(middleware.LearnerAuthMiddleware(learnerService))

			// Config routes
			r.Route("/config", func(r chi.Router) {
				r.Get("/", configHandler.GetConfig)
				r.Patch("/", configHandler.PatchConfig)
			})

			// Card routes
			r.Route("/cards", func(r chi.Router) {
				r.Post("/", cardHandler.PostCard)
				r.Get("/", cardHandler.GetCards)
				r.Get("/due", cardHandler.GetDueCards)
				r.Get("/due/count", cardHandler.GetDueCount)
				r.Get("/{card_id}", cardHandler.GetCard)
				r.Delete("/{card_id}", cardHandler.DeleteCard)
			})

			// Session routes
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.StartSession)
				r.Get("/{session_id}", sessionHandler.GetSessionState)
				r.Post("/{session_id}/responses", sessionHandler.SubmitResponse)
				r.Post("/{session_id}/complete", sessionHandler.CompleteSession)
			})

			// Notification routes
			r.Route("/notifications", func(r chi.Router) {
				r.Post("/schedule", notificationHandler.ScheduleReminders)
				r.Post("/{notification_id}/delivery", notificationHandler.RecordDelivery)
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sqlDB, err := db.DB()
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not get DB object", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		err = sqlDB.PingContext(r.Context())
		if err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// 5. Start Scheduler (定期分析・最適化ジョブ)
	sched := scheduler.New(&config.Cfg, analyzerService, notificationService, logger)
	sched.Start()
	defer sched.Stop()

	// 6. Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
