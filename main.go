package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/config"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/controllers"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/database"
	apperrors "github.com/YoussefMohammed93/TheBrothers-Store-sub000/errors"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/logger"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/middleware"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	aws_pkg "github.com/YoussefMohammed93/TheBrothers-Store-sub000/pkg/aws"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/repository"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/routes"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "checkout-service"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.ConnectPostgres(cfg.DSN(), zapLogger, &models.ShippingSettings{}, &models.Order{})
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	// AWS clients
	var (
		snsClient     aws_pkg.SNSPublisher
		queue         aws_pkg.MessageSender
		metricsClient *aws_pkg.MetricsClient
	)
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	if awsErr != nil {
		zapLogger.Warn("AWS config unavailable, SNS, SQS and metrics disabled", zap.Error(awsErr))
	} else {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		metricsClient = aws_pkg.NewMetricsClient(awsCfg)
		if cfg.NotificationQueueURL != "" {
			queue = aws_pkg.NewSQSSender(awsCfg, cfg.NotificationQueueURL)
		}
	}

	var stripeService *services.StripeService
	if cfg.StripeSecretKey != "" {
		stripeService = services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey)
	}

	// Left nil when neither is configured, which turns card payment off.
	var intents services.PaymentIntentService
	switch {
	case cfg.PaymentIntentURL != "":
		intents = services.NewPaymentIntentClient(cfg.PaymentIntentURL, zapLogger)
	case stripeService != nil:
		intents = stripeService
	default:
		zapLogger.Warn("No payment intent service configured, card payments disabled")
	}

	var orders services.OrderService
	if cfg.OrderServiceURL != "" {
		orders = services.NewOrderClient(cfg.OrderServiceURL, zapLogger)
	} else {
		orders = services.NewLocalOrderService(repository.NewGormOrderRepository(db), zapLogger)
	}

	var coupons services.CouponValidator
	if cfg.PromotionServiceURL != "" {
		coupons = services.NewPromotionClient(cfg.PromotionServiceURL, zapLogger)
	} else {
		zapLogger.Warn("PROMOTION_SERVICE_URL not set, coupons disabled")
	}

	// DI chain
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.CartTTL)
	cartService := services.NewCartService(cartRepo, coupons, zapLogger)
	shippingService := services.NewShippingSettingsService(repository.NewGormShippingSettingsRepository(db), zapLogger)

	var recorder services.MetricsRecorder
	if metricsClient.IsEnabled() {
		recorder = metricsClient
	}
	events := services.NewCheckoutEvents(recorder, snsClient, cfg.CheckoutSNSTopicARN, queue, zapLogger)

	manager := services.NewCheckoutManager(services.CheckoutDeps{
		Rates:                shippingService,
		Intents:              intents,
		Orders:               orders,
		Observers:            []services.CheckoutObserver{events},
		Currency:             cfg.Currency,
		FallbackShippingCost: cfg.FallbackShippingCost,
		Logger:               zapLogger,
	}, cartRepo, cfg.SessionTTL, zapLogger)
	go manager.Run(ctx)

	var verifier controllers.PaymentVerifier
	if stripeService != nil && cfg.VerifyCardPayments {
		verifier = stripeService
	}

	ctrl := routes.Controllers{
		Checkout: controllers.NewCheckoutController(manager, verifier, zapLogger),
		Cart:     controllers.NewCartController(cartService, zapLogger),
		Shipping: controllers.NewShippingController(shippingService, cfg.FallbackShippingCost),
	}
	if stripeService != nil {
		ctrl.Payment = controllers.NewPaymentController(stripeService, stripeService, manager, events, zapLogger)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(zapLogger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":            "healthy",
			"service":           serviceName,
			"checkout_sessions": manager.Len(),
		})
	})

	intentLimiter := middleware.NewRateLimiter(rate.Limit(5), 10, 10*time.Minute)
	routes.Register(r, ctrl, middleware.AuthOptions{
		JWTSecret:           cfg.JWTSecret,
		TrustGatewayHeaders: cfg.TrustGatewayHeaders,
	}, intentLimiter)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	zapLogger.Info("Checkout service started", zap.String("port", cfg.Port))
	<-quit
	zapLogger.Info("Shutting down checkout service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited cleanly")
}
