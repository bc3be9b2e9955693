package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/gostore/internal/datamodels/user"
)

// 支付方式
const (
	PaymentPayPal   = "PayPal"
	PaymentPaystack = "Paystack"
	PaymentTransfer = "Transfer"
)

// State 订单生命周期状态：Pending -> Paid -> Delivered
type State string

const (
	StatePending   State = "Pending"
	StatePaid      State = "Paid"
	StateDelivered State = "Delivered"
)

// ErrStaleOrder 乐观锁版本不一致，订单已被其他请求修改
var ErrStaleOrder = errors.New("order was modified concurrently")

// Line 下单时的商品快照，与商品后续修改解耦
type Line struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	OrderID   int64           `gorm:"index;not null" json:"-"`
	ProductID int64           `gorm:"index;not null" json:"product_id"`
	Name      string          `gorm:"size:128;not null" json:"name"`
	Image     string          `gorm:"size:255" json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

// Subtotal price × quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Location 地图选点结果
type Location struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `gorm:"size:255" json:"address,omitempty"`
	Name    string   `gorm:"size:128" json:"name,omitempty"`
}

// ShippingAddress 收货地址
type ShippingAddress struct {
	FullName   string   `gorm:"size:128" json:"full_name"`
	Address    string   `gorm:"size:255" json:"address"`
	City       string   `gorm:"size:64" json:"city"`
	PostalCode string   `gorm:"size:32" json:"postal_code"`
	Country    string   `gorm:"size:64" json:"country"`
	Location   Location `gorm:"embedded;embeddedPrefix:location_" json:"location"`
}

// PaymentResult 第三方支付确认结果（已归一化）
type PaymentResult struct {
	ID           string `gorm:"size:128" json:"id"`
	Status       string `gorm:"size:64" json:"status"`
	UpdateTime   string `gorm:"size:64" json:"update_time"`
	EmailAddress string `gorm:"size:128" json:"email_address"`
}

// Order 订单模型
type Order struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	UserID          int64           `gorm:"index;not null" json:"user_id"`
	User            *user.User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Lines           []Line          `gorm:"foreignKey:OrderID" json:"order_items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string          `gorm:"size:32;not null" json:"payment_method"`
	ItemsPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"items_price"`
	ShippingPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_price"`
	TaxPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	IsPaid          bool            `gorm:"index;not null;default:false" json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	PaymentResult   PaymentResult   `gorm:"embedded;embeddedPrefix:payment_" json:"payment_result"`
	IsDelivered     bool            `gorm:"not null;default:false" json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	Version         int64           `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// State 根据 isPaid/isDelivered 推导生命周期状态
func (o *Order) State() State {
	switch {
	case o.IsDelivered:
		return StateDelivered
	case o.IsPaid:
		return StatePaid
	default:
		return StatePending
	}
}

// ItemsTotal 订单行小计之和
func ItemsTotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// Totals 价格汇总：total = items + shipping + tax
type Totals struct {
	Items    decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
}

// Total 订单总价
func (t Totals) Total() decimal.Decimal {
	return t.Items.Add(t.Shipping).Add(t.Tax)
}

// DailySales 按天统计的订单数与销售额
type DailySales struct {
	Date   string          `json:"date"`
	Orders int64           `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

// CategoryCount 各分类商品数
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Summary 后台看板汇总
type Summary struct {
	NumOrders         int64           `json:"num_orders"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	NumUsers          int64           `json:"num_users"`
	DailyOrders       []DailySales    `json:"daily_orders"`
	ProductCategories []CategoryCount `json:"product_categories"`
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	UpdateLifecycle(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context) (*Summary, error)
}
