package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/datamodels/order"
	"github.com/example/gostore/internal/datamodels/product"
	"github.com/example/gostore/internal/datamodels/user"
)

const msgOrderNotFound = "Order Not Found"

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Omit("User").Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("User").
		First(&o, id).Error; err != nil {
		return nil, notFound(err, msgOrderNotFound)
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("User").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateLifecycle 以 version 做 CAS 写入支付/发货字段，成功后 o.Version 递增
func (r *orderRepo) UpdateLifecycle(ctx context.Context, o *order.Order) error {
	res := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]interface{}{
			"is_paid":               o.IsPaid,
			"paid_at":               o.PaidAt,
			"payment_id":            o.PaymentResult.ID,
			"payment_status":        o.PaymentResult.Status,
			"payment_update_time":   o.PaymentResult.UpdateTime,
			"payment_email_address": o.PaymentResult.EmailAddress,
			"is_delivered":          o.IsDelivered,
			"delivered_at":          o.DeliveredAt,
			"version":               o.Version + 1,
			"updated_at":            time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&order.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound(msgOrderNotFound)
		}
		return order.ErrStaleOrder
	}
	o.Version++
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&order.Line{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&order.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(msgOrderNotFound)
		}
		return nil
	})
}

// Summary 后台看板：订单总数与销售额、用户数、按天统计、分类商品数
func (r *orderRepo) Summary(ctx context.Context) (*order.Summary, error) {
	db := r.db.WithContext(ctx)
	out := &order.Summary{}

	var totals struct {
		NumOrders  int64
		TotalSales decimal.Decimal
	}
	if err := db.Model(&order.Order{}).
		Select("COUNT(*) AS num_orders, COALESCE(SUM(total_price), 0) AS total_sales").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	out.NumOrders = totals.NumOrders
	out.TotalSales = totals.TotalSales

	if err := db.Model(&user.User{}).Count(&out.NumUsers).Error; err != nil {
		return nil, err
	}

	var daily []struct {
		Day    string
		Orders int64
		Sales  decimal.Decimal
	}
	if err := db.Model(&order.Order{}).
		Select(r.dayExpr() + " AS day, COUNT(*) AS orders, COALESCE(SUM(total_price), 0) AS sales").
		Group("day").
		Order("day ASC").
		Scan(&daily).Error; err != nil {
		return nil, err
	}
	out.DailyOrders = make([]order.DailySales, 0, len(daily))
	for _, d := range daily {
		out.DailyOrders = append(out.DailyOrders, order.DailySales{Date: d.Day, Orders: d.Orders, Sales: d.Sales})
	}

	out.ProductCategories = make([]order.CategoryCount, 0)
	if err := db.Model(&product.Product{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&out.ProductCategories).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// dayExpr 按创建日期分桶，格式 YYYY-MM-DD
func (r *orderRepo) dayExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "substr(created_at, 1, 10)"
	}
	return "DATE_FORMAT(created_at, '%Y-%m-%d')"
}
