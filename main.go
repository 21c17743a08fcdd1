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

	"github.com/Company-KERL/Kerl-backend/common/auth"
	apperrors "github.com/Company-KERL/Kerl-backend/common/errors"
	"github.com/Company-KERL/Kerl-backend/common/logger"
	"github.com/Company-KERL/Kerl-backend/common/middleware"
	"github.com/Company-KERL/Kerl-backend/config"
	"github.com/Company-KERL/Kerl-backend/controllers"
	"github.com/Company-KERL/Kerl-backend/database"
	aws_pkg "github.com/Company-KERL/Kerl-backend/pkg/aws"
	"github.com/Company-KERL/Kerl-backend/repository"
	"github.com/Company-KERL/Kerl-backend/routes"
	"github.com/Company-KERL/Kerl-backend/services"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "kerl-backend"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	awsCfg, err := aws_pkg.LoadAWSConfig(context.Background(), cfg.AWSRegion)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}

	// Tee logs into CloudWatch when enabled
	var logSink io.Writer
	if cfg.CloudWatchEnabled {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(context.Background(), awsCfg, cfg.CloudWatchLogGroup, serviceName, true)
		if err != nil {
			log.Printf("CloudWatch Logs disabled: %v", err)
		} else {
			logSink = cwLogs
		}
	}
	if err := logger.InitializeWithWriter(cfg.Env, logSink); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	// --- Storage ---
	mongoDB, err := database.ConnectMongo(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, mongoDB.DB); err != nil {
		logger.Log.Fatal("Failed to ensure indexes", zap.Error(err))
	}
	cancelIndexes()

	var redisClient *redis.Client
	var idempotency repository.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Log.Warn("Redis unavailable, running without cache and idempotency", zap.Error(err))
			redisClient = nil
		} else {
			idempotency = repository.NewIdempotencyStore(redisClient, "orders")
		}
	}

	users := repository.NewUserRepository(mongoDB.DB)
	products := repository.NewProductRepository(mongoDB.DB)
	carts := repository.NewCartRepository(mongoDB.DB)
	orders := repository.NewOrderRepository(mongoDB.DB)
	payments := repository.NewPaymentRepository(mongoDB.DB)

	// --- Integrations ---
	metrics := aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNS, cfg.CloudWatchEnabled)
	events := newEventPublisher(cfg, awsCfg)
	cache := services.NewCacheManager(redisClient, cfg.CacheTTL)

	var presigner services.ImagePresigner
	if cfg.S3BucketImages != "" {
		presigner = aws_pkg.NewImagePresigner(awsCfg, cfg.S3BucketImages)
	}

	paymentCfg := services.PaymentConfig{
		SignatureSecret: cfg.SignatureSecret(),
		Currency:        cfg.PaymentCurrency,
	}
	switch cfg.PaymentProvider {
	case services.ProviderStripe:
		stripeProcessor := services.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		paymentCfg.Processor = stripeProcessor
		if cfg.StripeWebhookSecret != "" {
			paymentCfg.Webhooks = stripeProcessor
		}
	default:
		paymentCfg.Processor = services.NewRazorpayProcessor(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	// --- Services and controllers ---
	authService := services.NewAuthService(users, tokens, cfg.BcryptCost, metrics, logger.Log)
	productService := services.NewProductService(products, cache, presigner, metrics, logger.Log)
	cartService := services.NewCartService(carts, products, metrics, logger.Log)
	orderService := services.NewOrderService(orders, products, idempotency, cache, events, metrics, logger.Log)
	paymentService := services.NewPaymentService(payments, orders, carts, paymentCfg, events, metrics, logger.Log)

	handlers := routes.Controllers{
		Auth: controllers.NewAuthController(authService, controllers.CookieConfig{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.JWTExpiry,
		}),
		Product: controllers.NewProductController(productService),
		Cart:    controllers.NewCartController(cartService),
		Order:   controllers.NewOrderController(orderService),
		Payment: controllers.NewPaymentController(paymentService),
	}

	// --- HTTP server ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute/4+1, 10*time.Minute)
	go limiter.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(middleware.MetricsMiddleware(metrics, serviceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(limiter))
	r.Use(middleware.RequestTimeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	routes.RegisterRoutes(r, handlers, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("payment_provider", paymentCfg.Processor.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := events.Close(); err != nil {
		logger.Log.Error("Failed to close event publisher", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	if err := mongoDB.Close(); err != nil {
		logger.Log.Error("Failed to close MongoDB", zap.Error(err))
	}

	logger.Log.Info("Server stopped gracefully")
}

func newEventPublisher(cfg *config.Config, awsCfg aws.Config) services.EventPublisher {
	switch cfg.EventsBackend {
	case "sns":
		return services.NewSNSEventPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.EventsSNSTopicARN)
	case "kafka":
		return services.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return services.NoopPublisher{}
	}
}
