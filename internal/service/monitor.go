package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor 业务指标，nil 时所有记录方法为空操作
type Monitor struct {
	ordersCreated   prometheus.Counter
	ordersPaid      prometheus.Counter
	ordersDelivered prometheus.Counter
	ordersDeleted   prometheus.Counter
	orderConflicts  prometheus.Counter
	reviewsCreated  prometheus.Counter
	receipts        *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
}

// NewMonitor 创建并注册指标
func NewMonitor(reg prometheus.Registerer) *Monitor {
	m := &Monitor{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gostore", Name: "orders_created_total", Help: "Orders created.",
		}),
		ordersPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gostore", Name: "orders_paid_total", Help: "Payment confirmations applied to orders.",
		}),
		ordersDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gostore", Name: "orders_delivered_total", Help: "Orders marked delivered.",
		}),
		ordersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gostore", Name: "orders_deleted_total", Help: "Orders deleted by admins.",
		}),
		orderConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gostore", Name: "order_version_conflicts_total", Help: "Lifecycle writes retried after a stale version.",
		}),
		reviewsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gostore", Name: "reviews_created_total", Help: "Product reviews created.",
		}),
		receipts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gostore", Name: "receipts_total", Help: "Receipt notifications by result.",
		}, []string{"result"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gostore", Name: "store_errors_total", Help: "Unexpected store failures by operation.",
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ordersCreated, m.ordersPaid, m.ordersDelivered, m.ordersDeleted,
			m.orderConflicts, m.reviewsCreated, m.receipts, m.storeErrors,
		)
	}
	return m
}

func (m *Monitor) RecordOrderCreated() {
	if m != nil {
		m.ordersCreated.Inc()
	}
}

func (m *Monitor) RecordOrderPaid() {
	if m != nil {
		m.ordersPaid.Inc()
	}
}

func (m *Monitor) RecordOrderDelivered() {
	if m != nil {
		m.ordersDelivered.Inc()
	}
}

func (m *Monitor) RecordOrderDeleted() {
	if m != nil {
		m.ordersDeleted.Inc()
	}
}

func (m *Monitor) RecordOrderConflict() {
	if m != nil {
		m.orderConflicts.Inc()
	}
}

func (m *Monitor) RecordReviewCreated() {
	if m != nil {
		m.reviewsCreated.Inc()
	}
}

// RecordReceipt 记录收据投递结果，取值见 notify.Result*
func (m *Monitor) RecordReceipt(result string) {
	if m != nil {
		m.receipts.WithLabelValues(result).Inc()
	}
}

// RecordStoreError 记录存储层异常
func (m *Monitor) RecordStoreError(op string) {
	if m != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}
