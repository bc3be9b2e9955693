package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/gostore/internal/config"
	"github.com/example/gostore/internal/datamodels/order"
	"github.com/example/gostore/internal/datamodels/product"
	"github.com/example/gostore/internal/datamodels/user"
	"github.com/example/gostore/internal/logger"
	"github.com/example/gostore/internal/repository/mysql"
	"github.com/example/gostore/internal/service"
)

func main() {
	var (
		configPath string
		dataPath   string
		reset      bool
	)
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load sample users and products into the store database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if _, err := logger.Init(&cfg.Log); err != nil {
				return err
			}
			raw := defaultSeed
			if dataPath != "" {
				if raw, err = os.ReadFile(dataPath); err != nil {
					return err
				}
			}
			data, err := parseSeed(raw)
			if err != nil {
				return fmt.Errorf("parse seed data: %w", err)
			}
			db := mysql.Init(&cfg.MySQL)
			users := service.NewUserService(mysql.NewUserRepository(db), &cfg.JWT)
			return seed(cmd.Context(), db, users, data, reset)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "config file path")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "seed yaml file, defaults to the embedded sample data")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete existing orders, reviews, products and users first")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// seed 在一个事务内写入种子数据
func seed(ctx context.Context, db *gorm.DB, users *service.UserService, data *seedData, reset bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reset {
			for _, model := range []interface{}{&order.Line{}, &order.Order{}, &product.Review{}, &product.Product{}, &user.User{}} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return err
				}
			}
		}
		for _, su := range data.Users {
			hash, err := users.HashPassword(su.Password)
			if err != nil {
				return err
			}
			u := &user.User{Name: su.Name, Email: su.Email, Password: hash, IsAdmin: su.IsAdmin}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", su.Email, err)
			}
		}
		for _, sp := range data.Products {
			p, err := sp.model()
			if err != nil {
				return fmt.Errorf("product %s: %w", sp.Name, err)
			}
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("create product %s: %w", sp.Name, err)
			}
		}
		zap.L().Info("seed finished",
			zap.Int("users", len(data.Users)),
			zap.Int("products", len(data.Products)),
			zap.Bool("reset", reset))
		return nil
	})
}
