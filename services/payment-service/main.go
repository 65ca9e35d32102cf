package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	aws_pkg "github.com/scholarpress/journal-backend/pkg/aws"
	"github.com/scholarpress/journal-backend/services/common/logger"
	"github.com/scholarpress/journal-backend/services/common/middleware"
	"github.com/scholarpress/journal-backend/services/payment-service/config"
	"github.com/scholarpress/journal-backend/services/payment-service/controllers"
	"github.com/scholarpress/journal-backend/services/payment-service/database"
	"github.com/scholarpress/journal-backend/services/payment-service/providers"
	"github.com/scholarpress/journal-backend/services/payment-service/repository"
	"github.com/scholarpress/journal-backend/services/payment-service/routes"
	servicepkg "github.com/scholarpress/journal-backend/services/payment-service/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	serviceName      = "payment-service"
	metricsNamespace = "ScholarPress/PaymentService"
	logGroupName     = "/scholarpress/payment-service"
	receiptTTL       = 24 * time.Hour
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	ctx := context.Background()

	// AWS is optional locally; every AWS-backed feature degrades to off.
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	awsAvailable := awsErr == nil

	var secrets aws_pkg.SecretGetter
	if awsAvailable && os.Getenv("AWS_USE_SECRETS") == "true" {
		secrets = aws_pkg.NewSecretsClient(awsCfg)
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatalf("[PaymentService] Failed to load config: %v", err)
	}

	appLogger := buildLogger(ctx, cfg, awsCfg, awsAvailable)
	defer appLogger.Sync() //nolint:errcheck

	if !awsAvailable {
		appLogger.Warn("AWS config unavailable, SNS and CloudWatch disabled", zap.Error(awsErr))
	}
	if cfg.Razorpay.KeySecret == "" || cfg.Razorpay.WebhookSecret == "" {
		appLogger.Warn("Razorpay secrets incomplete; verification endpoints will return 500",
			zap.Bool("key_secret_set", cfg.Razorpay.KeySecret != ""),
			zap.Bool("webhook_secret_set", cfg.Razorpay.WebhookSecret != ""),
		)
	}

	// Record store (optional)
	var db *gorm.DB
	var paperRepo repository.PaperRepository
	if cfg.Database != nil {
		db, err = database.ConnectPostgres(appLogger, cfg.Database.DSN(), 5)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		paperRepo = repository.NewGormPaperRepo(db)
	} else {
		appLogger.Warn("Database not configured; payment status will not be recorded")
	}
	defer database.Close(db) //nolint:errcheck

	// Webhook receipt cache (optional)
	var receipts repository.WebhookReceiptStore
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Warn("Redis unavailable, webhook receipt cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			receipts = repository.NewRedisWebhookReceiptStore(redisClient, receiptTTL)
			appLogger.Info("Connected to Redis")
		}
	}

	var snsClient aws_pkg.SNSPublisher
	var metrics middleware.MetricsRecorder
	if awsAvailable {
		if cfg.PaymentSNSTopicARN != "" {
			snsClient = aws_pkg.NewSNSClient(awsCfg)
		}
		metrics = aws_pkg.NewMetricsClient(awsCfg, metricsNamespace, cfg.CloudWatchEnabled)
	}

	// Provider and DI chain
	razorpay := providers.NewRazorpayProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL, cfg.Razorpay.Timeout)
	paymentService := servicepkg.NewPaymentService(
		razorpay,
		paperRepo,
		receipts,
		snsClient,
		servicepkg.Options{
			KeySecret:       cfg.Razorpay.KeySecret,
			WebhookSecret:   cfg.Razorpay.WebhookSecret,
			DefaultAmount:   cfg.Payment.DefaultAmount,
			Currency:        cfg.Payment.Currency,
			ProviderTimeout: cfg.Razorpay.Timeout,
			StoreTimeout:    cfg.Payment.StoreTimeout,
			SNSTopicARN:     cfg.PaymentSNSTopicARN,
		},
		appLogger,
	)
	paymentController := controllers.NewPaymentController(paymentService, appLogger)
	healthController := controllers.NewHealthController(paymentService.StoreConfigured)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(appLogger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware(metrics, serviceName))
	r.Use(middleware.RequestTimeout(30 * time.Second))

	routes.RegisterPaymentRoutes(r, paymentController, healthController,
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	appLogger.Info("Payment service started",
		zap.String("port", cfg.Port),
		zap.Bool("database_configured", paperRepo != nil),
		zap.Bool("receipt_cache", receipts != nil),
	)
	<-quit
	appLogger.Info("Shutting down payment service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server exited cleanly")
}

// buildLogger tees logs to CloudWatch Logs when enabled and reachable.
func buildLogger(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, awsAvailable bool) *zap.Logger {
	var cwWriter io.Writer
	var cwErr error
	if cfg.CloudWatchEnabled && awsAvailable {
		var cw *aws_pkg.CloudWatchLogsClient
		cw, cwErr = aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, logGroupName, serviceName)
		if cwErr == nil {
			cwWriter = cw
		}
	}

	appLogger, err := logger.New(cfg.Env, cwWriter)
	if err != nil {
		log.Fatalf("[PaymentService] Failed to initialize logger: %v", err)
	}
	if cwErr != nil {
		appLogger.Warn("CloudWatch Logs init failed (non-fatal)", zap.Error(cwErr))
	}
	return appLogger.With(zap.String("service", serviceName))
}
