package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/datamodels/order"
	"github.com/example/gostore/internal/notify"
)

// maxLifecycleAttempts CAS 冲突时的最大重试次数
const maxLifecycleAttempts = 3

const tracerName = "gostore/service"

func startSpan(ctx context.Context, name string, id int64) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	if id != 0 {
		span.SetAttributes(attribute.Int64("order.id", id))
	}
	return ctx, span
}

// endSpan 记录错误并结束 span
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.MessageOf(err))
	}
	span.End()
}

// PlaceOrder 下单请求，商品行为购物车快照
type PlaceOrder struct {
	Lines           []order.Line
	ShippingAddress order.ShippingAddress
	PaymentMethod   string
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
}

// OrderService 订单生命周期：Pending -> Paid -> Delivered
type OrderService struct {
	repo       order.Repository
	dispatcher notify.Dispatcher
	monitor    *Monitor
	now        func() time.Time
}

func NewOrderService(repo order.Repository, dispatcher notify.Dispatcher, monitor *Monitor) *OrderService {
	if dispatcher == nil {
		dispatcher = notify.Discard{}
	}
	return &OrderService{repo: repo, dispatcher: dispatcher, monitor: monitor, now: time.Now}
}

// Create 校验购物车并以 Pending 状态落库，商品金额由服务端重算
func (s *OrderService) Create(ctx context.Context, ownerID int64, req PlaceOrder) (o *order.Order, err error) {
	ctx, span := startSpan(ctx, "OrderService.Create", 0)
	defer func() { endSpan(span, err) }()

	if len(req.Lines) == 0 {
		return nil, apperr.Validation("Cart is empty")
	}
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, apperr.Validation("Quantity must be positive")
		}
		if l.Price.IsNegative() {
			return nil, apperr.Validation("Price must not be negative")
		}
	}
	if req.ShippingPrice.IsNegative() || req.TaxPrice.IsNegative() {
		return nil, apperr.Validation("Price must not be negative")
	}

	lines := make([]order.Line, len(req.Lines))
	for i, l := range req.Lines {
		l.ID, l.OrderID = 0, 0
		lines[i] = l
	}
	totals := order.Totals{
		Items:    order.ItemsTotal(lines),
		Shipping: req.ShippingPrice,
		Tax:      req.TaxPrice,
	}
	o = &order.Order{
		UserID:          ownerID,
		Lines:           lines,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      totals.Items,
		ShippingPrice:   totals.Shipping,
		TaxPrice:        totals.Tax,
		TotalPrice:      totals.Total(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.monitor.RecordStoreError("create_order")
		return nil, err
	}
	s.monitor.RecordOrderCreated()
	span.SetAttributes(attribute.Int64("order.id", o.ID))
	zap.L().Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", ownerID),
		zap.String("total", o.TotalPrice.StringFixed(2)))
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrderService) ListMine(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]*order.Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *OrderService) Summary(ctx context.Context) (*order.Summary, error) {
	return s.repo.Summary(ctx)
}

// MarkPaid 记录支付结果。重复调用会覆盖 paidAt 与支付结果，每次成功都会投递一封收据
func (s *OrderService) MarkPaid(ctx context.Context, id int64, result order.PaymentResult) (o *order.Order, err error) {
	ctx, span := startSpan(ctx, "OrderService.MarkPaid", id)
	defer func() { endSpan(span, err) }()

	o, err = s.transition(ctx, id, func(o *order.Order) {
		now := s.now()
		o.IsPaid = true
		o.PaidAt = &now
		o.PaymentResult = result
	})
	if err != nil {
		return nil, err
	}
	s.monitor.RecordOrderPaid()
	zap.L().Info("order paid", zap.Int64("order_id", o.ID), zap.String("payment_id", result.ID))

	r, rerr := notify.NewReceipt(o)
	if rerr != nil {
		s.monitor.RecordReceipt(notify.ResultDropped)
		zap.L().Warn("receipt skipped", zap.Int64("order_id", o.ID), zap.Error(rerr))
		return o, nil
	}
	s.dispatcher.Dispatch(r)
	span.AddEvent("receipt.dispatched", trace.WithAttributes(attribute.String("receipt.message_id", r.MessageID)))
	return o, nil
}

// MarkDelivered 不要求已支付，线下转账订单可直接发货
func (s *OrderService) MarkDelivered(ctx context.Context, id int64) (o *order.Order, err error) {
	ctx, span := startSpan(ctx, "OrderService.MarkDelivered", id)
	defer func() { endSpan(span, err) }()

	o, err = s.transition(ctx, id, func(o *order.Order) {
		now := s.now()
		o.IsDelivered = true
		o.DeliveredAt = &now
	})
	if err != nil {
		return nil, err
	}
	s.monitor.RecordOrderDelivered()
	zap.L().Info("order delivered", zap.Int64("order_id", o.ID))
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "OrderService.Delete", id)
	defer func() { endSpan(span, err) }()

	if err = s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.monitor.RecordOrderDeleted()
	zap.L().Info("order deleted", zap.Int64("order_id", id))
	return nil
}

// transition 读取最新订单、应用变更并按 version 写回，版本过期时重读重试
func (s *OrderService) transition(ctx context.Context, id int64, apply func(o *order.Order)) (*order.Order, error) {
	for attempt := 1; ; attempt++ {
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		apply(o)
		err = s.repo.UpdateLifecycle(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, order.ErrStaleOrder) {
			s.monitor.RecordStoreError("update_lifecycle")
			return nil, err
		}
		s.monitor.RecordOrderConflict()
		if attempt >= maxLifecycleAttempts {
			return nil, apperr.Wrap(apperr.KindConflict, "Order was modified concurrently, please retry", err)
		}
		zap.L().Debug("stale order version, retrying", zap.Int64("order_id", id), zap.Int("attempt", attempt))
	}
}
