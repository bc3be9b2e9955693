package notify

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Worker 消费收据队列并发送邮件，使用手动确认
type Worker struct {
	sender Sender
	rec    Recorder
}

func NewWorker(sender Sender, rec Recorder) *Worker {
	return &Worker{sender: sender, rec: rec}
}

// Run 处理消息直到 ctx 取消或 deliveries 关闭
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle 格式错误的消息直接丢弃；发送失败且非重投时重新入队一次
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	var r Receipt
	if err := json.Unmarshal(d.Body, &r); err != nil {
		zap.L().Warn("invalid receipt message", zap.Error(err))
		_ = d.Nack(false, false)
		w.record(ResultFailed)
		return
	}
	if err := w.sender.Send(ctx, &r); err != nil {
		zap.L().Error("send receipt failed",
			zap.Int64("order_id", r.OrderID),
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err))
		_ = d.Nack(false, !d.Redelivered)
		w.record(ResultFailed)
		return
	}
	if err := d.Ack(false); err != nil {
		zap.L().Warn("ack receipt failed", zap.Int64("order_id", r.OrderID), zap.Error(err))
	}
	w.record(ResultSent)
	zap.L().Info("receipt sent", zap.Int64("order_id", r.OrderID), zap.String("to", r.CustomerEmail))
}

func (w *Worker) record(result string) {
	if w.rec != nil {
		w.rec.RecordReceipt(result)
	}
}
