package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/imrishuroy/landing-checkout/internal/aws"
	"github.com/imrishuroy/landing-checkout/internal/config"
	"github.com/imrishuroy/landing-checkout/internal/logging"
	"github.com/imrishuroy/landing-checkout/internal/notify"
	"github.com/imrishuroy/landing-checkout/internal/storage"
)

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

	ctx := context.Background()

	var clients *aws.AWSClients
	if cfg.NeedsAWS() {
		if clients, err = aws.NewAWSClients(ctx); err != nil {
			logger.Fatal("failed to init aws clients", zap.Error(err))
		}
	}

	store, closeStore, err := storage.Open(ctx, cfg, clients, logger)
	if err != nil {
		logger.Fatal("failed to open order store", zap.Error(err))
	}
	defer closeStore()

	mailer, err := notify.New(cfg.SMTP, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}

	p := NewProcessor(store, mailer, logger)

	// RUN_LOCAL=true processes a single message from LOCAL_SQS_BODY and exits.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			logger.Fatal("LOCAL_SQS_BODY is required when RUN_LOCAL=true")
		}
		resp, _ := p.Handle(ctx, events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		})
		if len(resp.BatchItemFailures) > 0 {
			logger.Fatal("local message failed")
		}
		return
	}

	lambda.Start(p.Handle)
}
