package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/landing-checkout/internal/notify"
	"github.com/imrishuroy/landing-checkout/internal/orders"
)

var errOrderNotFound = errors.New("order not found")

// OrderReader is the part of orders.Store the worker needs.
type OrderReader interface {
	Get(ctx context.Context, id string) (*orders.Order, error)
}

// Processor turns order.created messages into confirmation mails.
type Processor struct {
	orders OrderReader
	mailer notify.Mailer
	logger *zap.Logger
}

// NewProcessor wires a processor to its store and mailer.
func NewProcessor(store OrderReader, mailer notify.Mailer, logger *zap.Logger) *Processor {
	return &Processor{orders: store, mailer: mailer, logger: logger}
}

// Handle processes an SQS batch. Failed messages are reported individually
// so that only they are redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	p.logger.Info("received batch", zap.Int("records", len(ev.Records)))

	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Error("message failed", zap.String("message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg orders.OrderCreatedEvent
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.OrderID == "" {
		return errors.New("message has no order_id")
	}

	order, err := p.orders.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order %s: %w", msg.OrderID, err)
	}
	if order == nil {
		return fmt.Errorf("%w: %s", errOrderNotFound, msg.OrderID)
	}

	if err := p.mailer.SendConfirmation(ctx, *order); err != nil {
		return err
	}
	p.logger.Info("confirmation sent", zap.String("order_id", order.ID))
	return nil
}
