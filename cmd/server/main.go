package main

import (
	"context"
	"os"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/gostore/internal/auth"
	"github.com/example/gostore/internal/config"
	"github.com/example/gostore/internal/infra/mq"
	"github.com/example/gostore/internal/infra/redis"
	"github.com/example/gostore/internal/logger"
	"github.com/example/gostore/internal/notify"
	"github.com/example/gostore/internal/repository/mysql"
	"github.com/example/gostore/internal/server"
	"github.com/example/gostore/internal/service"
	"github.com/example/gostore/internal/telemetry"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "server",
		Short:        "gostore HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "config file path")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.Init(&cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)

	// 日志级别与鉴权节点支持热更新，其余配置需重启生效
	if err := config.Watch(configPath, reloader(ring), func(err error) {
		zap.L().Warn("config reload failed", zap.Error(err))
	}); err != nil {
		zap.L().Warn("config watch disabled", zap.Error(err))
	}

	shutdown, err := telemetry.Init(context.Background(), &cfg.Trace)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			zap.L().Warn("tracer shutdown", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	monitor := service.NewMonitor(reg)

	db := mysql.Init(&cfg.MySQL)

	// 未配置 Redis 时只做验签
	var cache *auth.TokenCache
	if cfg.Redis.Addr != "" {
		cache = auth.NewTokenCache(redis.Init(&cfg.Redis), ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)
	}
	gate := auth.NewGate(&cfg.JWT, cache)

	var dispatcher notify.Dispatcher = notify.Discard{}
	if cfg.RabbitMQ.URL != "" {
		pub, err := mq.NewPublisher(mq.Init(&cfg.RabbitMQ), cfg.RabbitMQ.ReceiptQueue)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		qd := notify.NewQueueDispatcher(pub, 0, monitor)
		defer qd.Close()
		dispatcher = qd
	}

	app := server.New(&server.Deps{
		Config:   cfg,
		Gate:     gate,
		Products: service.NewProductService(mysql.NewProductRepository(db), cfg.Catalog.PageSize, monitor),
		Users:    service.NewUserService(mysql.NewUserRepository(db), &cfg.JWT),
		Orders:   service.NewOrderService(mysql.NewOrderRepository(db), dispatcher, monitor),
		Metrics:  reg,
	})

	addr := cfg.Server.Addr()
	zap.L().Info("http server listening", zap.String("addr", addr))
	return app.Listen(addr, iris.WithoutServerError(iris.ErrServerClosed), iris.WithoutStartupLog)
}

// reloader 应用配置文件变更
func reloader(ring *auth.ConsistentHashRing) func(*config.Config) {
	return func(c *config.Config) {
		if err := logger.SetLevel(c.Log.Level); err != nil {
			zap.L().Warn("ignore log level", zap.String("level", c.Log.Level), zap.Error(err))
		} else {
			zap.L().Info("log level reloaded", zap.String("level", c.Log.Level))
		}
		ring.SetNodes(c.Auth.Nodes)
		zap.L().Info("auth nodes reloaded", zap.Strings("nodes", ring.Nodes()))
	}
}
