package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// 收据投递结果
const (
	ResultEnqueued = "enqueued"
	ResultDropped  = "dropped"
	ResultFailed   = "failed"
	ResultSent     = "sent"
)

const (
	defaultBuffer         = 256
	defaultPublishTimeout = 5 * time.Second
)

// Dispatcher 收据投递，调用方不等待结果
type Dispatcher interface {
	Dispatch(r *Receipt)
}

// Publisher 消息发布
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Recorder 记录投递结果
type Recorder interface {
	RecordReceipt(result string)
}

// QueueDispatcher 先写入内存缓冲，由后台 goroutine 发布到队列
type QueueDispatcher struct {
	pub     Publisher
	rec     Recorder
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan *Receipt
	done   chan struct{}
}

// NewQueueDispatcher 创建并启动后台发布 goroutine
func NewQueueDispatcher(pub Publisher, buffer int, rec Recorder) *QueueDispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &QueueDispatcher{
		pub:     pub,
		rec:     rec,
		timeout: defaultPublishTimeout,
		queue:   make(chan *Receipt, buffer),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Dispatch 缓冲满或已关闭时丢弃并记录
func (d *QueueDispatcher) Dispatch(r *Receipt) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.record(ResultDropped)
		zap.L().Warn("receipt dropped, dispatcher closed", zap.Int64("order_id", r.OrderID))
		return
	}
	select {
	case d.queue <- r:
		d.record(ResultEnqueued)
	default:
		d.record(ResultDropped)
		zap.L().Warn("receipt dropped, buffer full", zap.Int64("order_id", r.OrderID))
	}
}

func (d *QueueDispatcher) run() {
	defer close(d.done)
	for r := range d.queue {
		d.publish(r)
	}
}

func (d *QueueDispatcher) publish(r *Receipt) {
	body, err := json.Marshal(r)
	if err != nil {
		d.record(ResultFailed)
		zap.L().Error("marshal receipt failed", zap.Int64("order_id", r.OrderID), zap.Error(err))
		return
	}
	// 与请求生命周期无关
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.pub.Publish(ctx, body); err != nil {
		d.record(ResultFailed)
		zap.L().Error("publish receipt failed", zap.Int64("order_id", r.OrderID), zap.Error(err))
		return
	}
	zap.L().Debug("receipt published", zap.Int64("order_id", r.OrderID), zap.String("message_id", r.MessageID))
}

// Close 停止接收新收据，等待缓冲中的收据发布完毕
func (d *QueueDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *QueueDispatcher) record(result string) {
	if d.rec != nil {
		d.rec.RecordReceipt(result)
	}
}

// Discard 丢弃所有收据，用于未配置消息队列的环境
type Discard struct{}

func (Discard) Dispatch(r *Receipt) {
	zap.L().Info("receipt discarded, no queue configured", zap.Int64("order_id", r.OrderID))
}
