package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bookmarket.backend/internal/config"
	"bookmarket.backend/internal/domain/authz"
	"bookmarket.backend/internal/infrastructure/datasources/postgres"
	"bookmarket.backend/internal/infrastructure/jobs"
	"bookmarket.backend/internal/infrastructure/repositories"
	"bookmarket.backend/internal/interfaces/http/handlers"
	"bookmarket.backend/internal/interfaces/http/middleware"
	"bookmarket.backend/internal/ratelimit"
	"bookmarket.backend/internal/usecases"
	"bookmarket.backend/pkg/jwt"
	"bookmarket.backend/pkg/logger"
	"bookmarket.backend/pkg/mail"
	"bookmarket.backend/pkg/redis"
	"bookmarket.backend/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.OpenGorm
	newSessionStore = redis.NewSessionStore
	newObjectStore  = func(cfg config.StorageConfig) (storage.ObjectStore, error) {
		s, err := storage.NewMinioStore(storage.Options{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	newMailer = func(cfg config.RabbitMQConfig) (mail.Mailer, func() error, error) {
		m, err := mail.NewAMQPMailer(cfg.URL, cfg.MailQueue)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	}
	runServer = serveUntilDone
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	if cfg.Server.LogLevel != "" {
		logger.SetLevel(cfg.Server.LogLevel)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database, cfg.Server.LogLevel == "debug")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Warn(ctx, "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(ctx, "Connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	gate := authz.NewGate(cfg.Admin.SupremeAdminEmail)
	if cfg.Admin.SupremeAdminEmail == "" {
		logger.Warn(ctx, "SUPREME_ADMIN_EMAIL is not set, no admin can manage other admins")
	}

	userRepo := repositories.NewUserRepository(db)
	sellerRepo := repositories.NewSellerRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	wishlistRepo := repositories.NewWishlistRepository(db)
	tokenRepo := repositories.NewVerificationTokenRepository(db)
	uow := repositories.NewUnitOfWork(db)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// images are optional: without a store uploads answer 400 and no URLs are signed
	var objectStore storage.ObjectStore
	if cfg.Storage.Endpoint != "" {
		objectStore, err = newObjectStore(cfg.Storage)
		if err != nil {
			logger.Warn(ctx, "Object storage unavailable, image uploads disabled", zap.Error(err))
			objectStore = nil
		}
	}

	var mailer mail.Mailer
	if cfg.RabbitMQ.URL != "" {
		m, closeMailer, err := newMailer(cfg.RabbitMQ)
		if err != nil {
			logger.Warn(ctx, "RabbitMQ unavailable, mail will only be logged", zap.Error(err))
		} else {
			mailer = m
			defer closeMailer()
		}
	}

	resetLimiter, err := ratelimit.NewFixedWindowLimiter(redis.GetClient(), redis.Key("ratelimit", "password-reset"),
		cfg.RateLimit.PasswordResetLimit, cfg.RateLimit.PasswordResetWindow)
	if err != nil {
		return fmt.Errorf("failed to initialize password reset limiter: %w", err)
	}
	authLimiter, err := ratelimit.NewFixedWindowLimiter(redis.GetClient(), redis.Key("ratelimit", "auth"),
		cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow)
	if err != nil {
		return fmt.Errorf("failed to initialize auth limiter: %w", err)
	}

	authUsecase := usecases.NewAuthUsecase(uow, userRepo, sellerRepo, tokenRepo, jwtService, mailer, cfg.Server.PublicURL)
	authUsecase.SetSessionStore(sessionStore)
	authUsecase.SetResetLimiter(resetLimiter)
	bookUsecase := usecases.NewBookUsecase(bookRepo, gate, objectStore, cfg.Storage.PresignExpiry)
	bookUsecase.SetMaxImageSize(cfg.Storage.MaxUploadSize)
	reservationUsecase := usecases.NewReservationUsecase(uow, reservationRepo, bookRepo, gate)
	ratingUsecase := usecases.NewRatingUsecase(uow, ratingRepo, sellerRepo, gate)
	sellerUsecase := usecases.NewSellerUsecase(sellerRepo, gate)
	wishlistUsecase := usecases.NewWishlistUsecase(wishlistRepo, bookRepo, gate)
	adminUsecase := usecases.NewAdminUsecase(uow, userRepo, sellerRepo, ratingRepo, bookRepo, reservationRepo, gate, objectStore)
	resolver := usecases.NewPrincipalResolver(userRepo, sellerRepo)

	authn := middleware.NewAuthenticator(jwtService, sessionStore, resolver)

	cleanupJob := jobs.NewVerificationTokenCleanupJob(tokenRepo, cfg.Jobs.TokenCleanupInterval)
	go cleanupJob.Start(ctx)

	registerJSONTagNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r, map[string]handlers.HealthCheck{
		"database": sqlDB.PingContext,
		"redis":    redis.Ping,
	})
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:        handlers.NewAuthHandler(authUsecase, cfg.Server.Env == "production"),
		bookHandler:        handlers.NewBookHandler(bookUsecase),
		sellerHandler:      handlers.NewSellerHandler(sellerUsecase, ratingUsecase),
		reservationHandler: handlers.NewReservationHandler(reservationUsecase),
		wishlistHandler:    handlers.NewWishlistHandler(wishlistUsecase),
		adminHandler:       handlers.NewAdminHandler(adminUsecase),
		authn:              authn,
		gate:               gate,
		authLimiter:        authLimiter,
		idempotency:        middleware.IdempotencyMiddleware(),
	})

	logger.Info(ctx, "Bookmarket backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(r.Routes())),
	)

	err = runServer(ctx, r, cfg.Server.Port)
	cleanupJob.Stop()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(context.Background(), "Server stopped")
	return nil
}

// serveUntilDone serves r until ctx is cancelled, then drains in-flight
// requests.
func serveUntilDone(ctx context.Context, r *gin.Engine, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
