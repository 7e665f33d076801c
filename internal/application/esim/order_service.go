package esim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/infrastructure/logger"
	"github.com/globoesim/gateway/internal/infrastructure/telemetry"
)

// DefaultIdempotencyTTL is how long a completed order is replayed for its key
const DefaultIdempotencyTTL = 24 * time.Hour

// OrderService handles eSIM purchases
type OrderService struct {
	gateway        esim.Gateway
	idempotency    esim.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        *telemetry.GatewayMetrics
	logger         *zap.Logger
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithOrderMetrics records order outcomes on metrics
func WithOrderMetrics(metrics *telemetry.GatewayMetrics) OrderServiceOption {
	return func(s *OrderService) { s.metrics = metrics }
}

// WithOrderLogger sets the logger
func WithOrderLogger(log *zap.Logger) OrderServiceOption {
	return func(s *OrderService) { s.logger = log }
}

// WithIdempotencyStore enables replay of orders retried with the same key.
// A non-positive ttl selects DefaultIdempotencyTTL.
func WithIdempotencyStore(store esim.IdempotencyStore, ttl time.Duration) OrderServiceOption {
	return func(s *OrderService) {
		s.idempotency = store
		s.idempotencyTTL = ttl
		if ttl <= 0 {
			s.idempotencyTTL = DefaultIdempotencyTTL
		}
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(gateway esim.Gateway, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		gateway: gateway,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder purchases a single eSIM. An invalid request is rejected with an
// *esim.ValidationError before the gateway is called. When the request carries
// an idempotency key already used for a completed order, that order is
// returned without a new purchase; a key still in flight yields
// esim.ErrOrderInProgress. A failure is released for retry only when it
// proves no order was placed (see esim.OrderMayExist).
func (s *OrderService) CreateOrder(ctx context.Context, req esim.OrderRequest) (esim.Order, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return esim.Order{}, err
	}

	if s.idempotency == nil || req.IdempotencyKey == "" {
		return s.place(ctx, req)
	}

	key := req.IdempotencyKey
	log := logger.For(ctx, s.logger).With(zap.String("idempotency_key", key))

	reserved, err := s.idempotency.Reserve(ctx, key, s.idempotencyTTL)
	if err != nil {
		log.Warn("Idempotency store unavailable, placing order without deduplication", zap.Error(err))
		return s.place(ctx, req)
	}
	if !reserved {
		previous, err := s.idempotency.Lookup(ctx, key)
		if err != nil {
			log.Warn("Failed to read idempotent order", zap.Error(err))
			return esim.Order{}, esim.ErrOrderInProgress
		}
		if previous == nil {
			return esim.Order{}, esim.ErrOrderInProgress
		}
		telemetry.SetContextAttribute(ctx, telemetry.SpanAttrIdempotent, true)
		log.Info("Replaying idempotent order")
		return *previous, nil
	}

	order, err := s.place(ctx, req)
	if err != nil {
		if esim.OrderMayExist(err) {
			// The provider may have charged; retries get ErrOrderInProgress until the key expires
			log.Warn("Order outcome unknown, keeping idempotency key reserved", zap.Error(err))
			return esim.Order{}, err
		}
		if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
			log.Warn("Failed to release idempotency key", zap.Error(relErr))
		}
		return esim.Order{}, err
	}
	if err := s.idempotency.Complete(context.WithoutCancel(ctx), key, order, s.idempotencyTTL); err != nil {
		log.Error("Failed to record idempotent order", zap.Error(err))
	}
	return order, nil
}

func (s *OrderService) place(ctx context.Context, req esim.OrderRequest) (esim.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "esim_order", "create",
		telemetry.WithAttribute(telemetry.SpanAttrPackageID, req.PackageID),
		telemetry.WithAttribute(telemetry.SpanAttrHasEmail, req.HasEmail()),
	)
	defer span.End()

	log := logger.For(ctx, s.logger).With(
		zap.String("package_id", req.PackageID),
		logger.Email("email", req.Email),
	)

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordOrder(ctx, telemetry.ResultFailure)
		log.Error("eSIM order failed", zap.Error(err))
		return esim.Order{}, err
	}

	s.metrics.RecordOrder(ctx, telemetry.ResultSuccess)
	fields := []zap.Field{}
	if order.ID != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, *order.ID)
		fields = append(fields, zap.Int64("order_id", *order.ID))
	}
	if order.Code != nil {
		fields = append(fields, zap.String("order_code", *order.Code))
	}
	log.Info("eSIM order created", fields...)
	return order, nil
}
