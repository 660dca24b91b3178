// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Command api is the entry point for the Vitalink HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Connect to object storage, Firestore, Stripe, and SMTP.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/vitalink/vitalink/internal/admin"
	"github.com/vitalink/vitalink/internal/api"
	"github.com/vitalink/vitalink/internal/auth"
	"github.com/vitalink/vitalink/internal/billing"
	"github.com/vitalink/vitalink/internal/care"
	"github.com/vitalink/vitalink/internal/chat"
	"github.com/vitalink/vitalink/internal/cms"
	"github.com/vitalink/vitalink/internal/health"
	"github.com/vitalink/vitalink/internal/platform/config"
	"github.com/vitalink/vitalink/internal/platform/constants"
	"github.com/vitalink/vitalink/internal/platform/mail"
	"github.com/vitalink/vitalink/internal/platform/migration"
	pgstore "github.com/vitalink/vitalink/internal/platform/postgres"
	redisstore "github.com/vitalink/vitalink/internal/platform/redis"
	"github.com/vitalink/vitalink/internal/platform/sec"
	"github.com/vitalink/vitalink/internal/platform/storage"
	"github.com/vitalink/vitalink/internal/social"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "vitalink"))
	slog.SetDefault(log)

	log.Info("[Vitalink] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "vitalink"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. External Providers ─────────────────────────────────────────────
	fileStore, err := storage.NewClient(startupCtx, storage.Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, log)
	must(log, err, "connect to object storage")

	fsClient, err := newFirestoreClient(startupCtx, cfg)
	must(log, err, "connect to firestore")
	defer func() {
		log.Info("closing firestore client")
		if cerr := fsClient.Close(); cerr != nil {
			log.Error("firestore close error", slog.Any("error", cerr))
		}
	}()

	stripeGateway := billing.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, log)

	notifier := newNotifier(cfg, log)

	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	activationRepository := auth.NewActivationRepository(pool)
	authService := auth.NewService(
		userRepository,
		sessionRepository,
		activationRepository,
		jwtSvc,
		notifier,
		auth.NewSocialVerifier(),
		auth.Options{
			AccessTTL:  time.Duration(cfg.TokenExpirySec) * time.Second,
			RefreshTTL: time.Duration(cfg.RefreshExpirySec) * time.Second,
			CodeTTL:    time.Duration(cfg.CodeExpirySec) * time.Second,
			CodeDigits: cfg.CodeDigits,
			SiteURL:    cfg.SiteURL,
		},
	)

	healthService := health.NewService(
		health.NewScalarRepository(pool),
		health.NewBloodPressureRepository(pool),
		health.NewSleepRepository(pool),
		health.NewECGRepository(pool),
		health.NewEKGRepository(pool),
		fileStore,
	)

	reactionRepository := social.NewReactionRepository(pool)
	cmsService := cms.NewService(
		cms.NewArticleRepository(pool),
		cms.NewGoodRepository(pool),
		cms.NewLogoRepository(pool),
		cms.NewCategoryRepository(pool),
		reactionRepository,
		cms.NewRedisCache(rdb, log),
	)
	socialService := social.NewService(
		social.NewPostRepository(pool),
		social.NewCommentRepository(pool),
		reactionRepository,
		cmsService,
	)

	careService := care.NewService(
		care.NewDirectoryRepository(pool),
		care.NewFeedbackRepository(pool),
		userRepository,
		care.Options{DefaultPhoto: cfg.DefaultPhotoURL},
	)

	billingService := billing.NewService(
		billing.NewPaymentRepository(pool),
		userRepository,
		stripeGateway,
		notifier,
		log,
	)

	chatService := chat.NewService(
		chat.NewFirestoreRoomStore(fsClient),
		billingService,
		userRepository,
	)

	adminService := admin.NewService(
		admin.NewAdminRepository(pool),
		admin.NewSessionRepository(pool),
		userRepository,
		jwtSvc,
		billingGateway{billingService},
		map[string]admin.Purger{
			"health":  healthService,
			"social":  socialService,
			"care":    careService,
			"billing": billingService,
			"chat":    chatService,
		},
		admin.Options{
			AccessTTL:  time.Duration(cfg.AdminTokenExpiry) * time.Second,
			RefreshTTL: time.Duration(cfg.AdminRefreshExpiry) * time.Second,
		},
		log,
	)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Admin:     admin.NewHandler(adminService),
		Health:    health.NewHandler(healthService),
		Social:    social.NewHandler(socialService),
		Care:      care.NewHandler(careService),
		CMS:       cms.NewHandler(cmsService),
		Billing:   billing.NewHandler(billingService, stripeGateway, log),
		Chat:      chat.NewHandler(chatService),
	}

	server := api.NewServer(startupCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newFirestoreClient connects to the project holding the chat room
// collection.
func newFirestoreClient(ctx context.Context, cfg *config.Config) (*firestore.Client, error) {
	if cfg.FirestoreProjectID == "" {
		return nil, fmt.Errorf("firestore: FIRESTORE_PROJECT_ID must be configured")
	}

	var opts []option.ClientOption
	if cfg.FirestoreCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredentials))
	}

	return firestore.NewClient(ctx, cfg.FirestoreProjectID, opts...)
}

// notifier is the union of the mail surfaces the domains need.
type notifier interface {
	auth.Notifier
	billing.Notifier
}

// newNotifier wires SMTP when configured and a logging no-op otherwise, so
// local environments run without a mail relay.
func newNotifier(cfg *config.Config, log *slog.Logger) notifier {
	if cfg.SMTPHost == "" {
		log.Warn("smtp not configured, mail delivery disabled")
		return mail.NewDiscard(log)
	}

	mailer, err := mail.NewMailer(mail.Config{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		User:       cfg.SMTPUser,
		Password:   cfg.SMTPPassword,
		From:       cfg.MailFrom,
		AdminEmail: cfg.AdminEmail,
		SiteURL:    cfg.SiteURL,
	}, log)
	must(log, err, "initialize mailer")
	return mailer
}

// billingGateway adapts the billing service to the console's transaction
// listing contract.
type billingGateway struct {
	billing *billing.Service
}

func (g billingGateway) Transactions(ctx context.Context, stripeCustomerID string) ([]admin.Transaction, error) {
	charges, err := g.billing.Transactions(ctx, stripeCustomerID)
	if err != nil {
		return nil, err
	}

	transactions := make([]admin.Transaction, 0, len(charges))
	for _, charge := range charges {
		transactions = append(transactions, admin.Transaction{
			ID:          charge.ID,
			Amount:      charge.Amount,
			Currency:    charge.Currency,
			Status:      charge.Status,
			Description: charge.Description,
			CreateDate:  charge.CreateDate,
		})
	}

	return transactions, nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
