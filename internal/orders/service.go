package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/imrishuroy/landing-checkout/internal/validation"
)

// Metric names recorded by the service.
const (
	MetricOrdersCreated     = "OrdersCreated"
	MetricValidationFailure = "OrderValidationFailures"
	MetricRevenueCents      = "OrderRevenueCents"
)

// MessageSender delivers order events; *aws.Publisher satisfies it.
type MessageSender interface {
	SendOrderMessage(ctx context.Context, body []byte, attributes map[string]string) error
}

// Metrics records counters; *aws.MetricsRecorder satisfies it.
type Metrics interface {
	Count(ctx context.Context, name string, value float64) error
}

// Service validates, prices and persists checkout submissions.
type Service struct {
	store          Store
	validator      *validation.Validator
	unitPriceCents int
	events         MessageSender
	metrics        Metrics
	logger         *zap.Logger
}

// Option configures optional collaborators of the Service.
type Option func(*Service)

// WithEvents publishes an OrderCreatedEvent after every insert.
func WithEvents(sender MessageSender) Option {
	return func(s *Service) { s.events = sender }
}

// WithMetrics records intake counters.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger used for post-insert failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service pricing every unit at unitPriceCents.
func NewService(store Store, v *validation.Validator, unitPriceCents int, opts ...Option) *Service {
	s := &Service{
		store:          store,
		validator:      v,
		unitPriceCents: unitPriceCents,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UnitPriceCents is the configured price of one unit.
func (s *Service) UnitPriceCents() int { return s.unitPriceCents }

// CreateOrder runs one submission. It returns validation.Errors when any
// field is rejected, in which case nothing is written. Any other error
// comes from the store.
func (s *Service) CreateOrder(ctx context.Context, raw validation.RawOrder, meta RequestMeta) (Receipt, error) {
	in := validation.Sanitize(raw)
	if errs := s.validator.Validate(in); len(errs) > 0 {
		s.count(ctx, MetricValidationFailure, 1)
		return Receipt{}, errs
	}

	order := newOrder(in, s.unitPriceCents, meta)
	if err := s.store.Create(ctx, order); err != nil {
		return Receipt{}, fmt.Errorf("create order: %w", err)
	}

	s.count(ctx, MetricOrdersCreated, 1)
	s.count(ctx, MetricRevenueCents, float64(order.TotalCents))
	s.publish(ctx, order)

	return order.receipt(), nil
}

// Get reads back a stored order. Returns (nil, nil) when it does not exist.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.Get(ctx, id)
}

// Health probes the store.
func (s *Service) Health(ctx context.Context) (HealthStatus, error) {
	return s.store.Health(ctx)
}

// publish is best effort: the order is already committed, so a failed send
// is logged and the buyer still gets a receipt.
func (s *Service) publish(ctx context.Context, o *Order) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(o.createdEvent())
	if err != nil {
		s.logger.Error("marshal order event", zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	attrs := map[string]string{
		"event_type": "order.created",
		"order_id":   o.ID,
		"country":    o.Country,
	}
	if err := s.events.SendOrderMessage(ctx, body, attrs); err != nil {
		s.logger.Warn("publish order event", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (s *Service) count(ctx context.Context, name string, value float64) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Count(ctx, name, value); err != nil {
		s.logger.Warn("record metric", zap.String("metric", name), zap.Error(err))
	}
}
