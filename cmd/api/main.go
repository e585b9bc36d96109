package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/landing-checkout/internal/aws"
	"github.com/imrishuroy/landing-checkout/internal/config"
	"github.com/imrishuroy/landing-checkout/internal/handlers"
	"github.com/imrishuroy/landing-checkout/internal/logging"
	"github.com/imrishuroy/landing-checkout/internal/orders"
	"github.com/imrishuroy/landing-checkout/internal/server"
	"github.com/imrishuroy/landing-checkout/internal/storage"
	"github.com/imrishuroy/landing-checkout/internal/validation"
)

const drainTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var clients *aws.AWSClients
	if cfg.NeedsAWS() {
		var err error
		if clients, err = aws.NewAWSClients(ctx); err != nil {
			return err
		}
	}

	store, closeStore, err := storage.Open(ctx, cfg, clients, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []orders.Option
	opts = append(opts, orders.WithLogger(logger))
	if cfg.QueueURL != "" {
		opts = append(opts, orders.WithEvents(aws.NewPublisher(clients.SQS, cfg.QueueURL)))
	}
	if cfg.MetricsNamespace != "" {
		opts = append(opts, orders.WithMetrics(aws.NewMetricsRecorder(clients.CloudWatch, cfg.MetricsNamespace)))
	}

	rules := validation.Default()
	svc := orders.NewService(store, validation.New(rules), cfg.UnitPriceCents, opts...)

	r, err := server.NewRouter(server.Options{
		Handlers: handlers.HandlerConfig{
			Orders: svc,
			Rules:  rules,
			Logger: logger,
		},
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return err
	}

	if cfg.Lambda {
		logger.Info("starting lambda handler", zap.String("store", cfg.OrderStore))
		adapter := ginadapter.New(r)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return nil
	}

	return server.Run(ctx, cfg.Addr(), r, drainTimeout, logger)
}
