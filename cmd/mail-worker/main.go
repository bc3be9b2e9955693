package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/gostore/internal/config"
	"github.com/example/gostore/internal/infra/mq"
	"github.com/example/gostore/internal/logger"
	"github.com/example/gostore/internal/notify"
	"github.com/example/gostore/internal/service"
)

func main() {
	var configPath, metricsAddr string
	cmd := &cobra.Command{
		Use:          "mail-worker",
		Short:        "Consume receipt queue and send order receipts over SMTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, metricsAddr)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "config file path")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9102", "listen address for /metrics, empty to disable")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.Init(&cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	conn := mq.Init(&cfg.RabbitMQ)
	defer conn.Close()

	ch, err := mq.DeclareQueue(conn, cfg.RabbitMQ.ReceiptQueue)
	if err != nil {
		return err
	}
	defer ch.Close()

	// 一次只取一条，发送完成前不再投递
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}
	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(cfg.RabbitMQ.ReceiptQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	monitor := service.NewMonitor(reg)
	if metricsAddr != "" {
		app := metricsApp(reg)
		go func() {
			if err := app.Listen(metricsAddr,
				iris.WithoutServerError(iris.ErrServerClosed),
				iris.WithoutStartupLog,
				iris.WithoutInterruptHandler); err != nil {
				zap.L().Error("metrics listener failed", zap.Error(err))
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = app.Shutdown(sctx)
		}()
		zap.L().Info("metrics listening", zap.String("addr", metricsAddr))
	}

	worker := notify.NewWorker(notify.NewSMTPSender(&cfg.Mail), monitor)
	zap.L().Info("mail worker started, waiting for receipts", zap.String("queue", cfg.RabbitMQ.ReceiptQueue))
	worker.Run(ctx, msgs)
	zap.L().Info("mail worker stopped")
	return nil
}

// metricsApp 只暴露 /metrics，供抓取收据发送结果
func metricsApp(reg *prometheus.Registry) *iris.Application {
	app := iris.New()
	app.Get("/metrics", iris.FromStd(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return app
}
