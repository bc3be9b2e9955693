package controllers

import (
	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/example/gostore/internal/datamodels/order"
	"github.com/example/gostore/internal/middleware"
	"github.com/example/gostore/internal/payment"
	"github.com/example/gostore/internal/service"
)

// OrderController 下单、支付确认、发货与后台订单管理
type OrderController struct {
	orders *service.OrderService
}

func NewOrderController(orders *service.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// placeOrderRequest items_price/total_price 由服务端重算，请求中的值被忽略
type placeOrderRequest struct {
	OrderItems      []order.Line          `json:"order_items"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	ShippingPrice   decimal.Decimal       `json:"shipping_price"`
	TaxPrice        decimal.Decimal       `json:"tax_price"`
}

// Create POST /api/orders
func (c *OrderController) Create(ctx iris.Context) {
	var req placeOrderRequest
	if !readJSON(ctx, &req) {
		return
	}
	o, err := c.orders.Create(ctx.Request().Context(), middleware.IdentityFrom(ctx).ID, service.PlaceOrder{
		Lines:           req.OrderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingPrice:   req.ShippingPrice,
		TaxPrice:        req.TaxPrice,
	})
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	reply(ctx, iris.StatusCreated, iris.Map{"message": "New Order Created", "order": o})
}

// Mine GET /api/orders/mine
func (c *OrderController) Mine(ctx iris.Context) {
	list, err := c.orders.ListMine(ctx.Request().Context(), middleware.IdentityFrom(ctx).ID)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, list)
}

// ByID GET /api/orders/{id}
func (c *OrderController) ByID(ctx iris.Context) {
	o, err := c.orders.Get(ctx.Request().Context(), idParam(ctx))
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, o)
}

// Pay PUT /api/orders/{id}/pay，兼容 PayPal 与 Paystack/转账两种回执
func (c *OrderController) Pay(ctx iris.Context) {
	raw, err := ctx.GetBody()
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	result, err := payment.Parse(raw)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	o, err := c.orders.MarkPaid(ctx.Request().Context(), idParam(ctx), result)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "Order Paid", "order": o})
}

// Deliver PUT /api/orders/{id}/deliver
func (c *OrderController) Deliver(ctx iris.Context) {
	if _, err := c.orders.MarkDelivered(ctx.Request().Context(), idParam(ctx)); err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "Order Delivered"})
}

// List GET /api/orders
func (c *OrderController) List(ctx iris.Context) {
	list, err := c.orders.ListAll(ctx.Request().Context())
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, list)
}

// Summary GET /api/orders/summary
func (c *OrderController) Summary(ctx iris.Context) {
	s, err := c.orders.Summary(ctx.Request().Context())
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, s)
}

// Delete DELETE /api/orders/{id}
func (c *OrderController) Delete(ctx iris.Context) {
	if err := c.orders.Delete(ctx.Request().Context(), idParam(ctx)); err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "Order Deleted"})
}
