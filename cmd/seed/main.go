package main

import (
	"context"
	"log/slog"
	"os"

	"checkout-api/internal/config"
	"checkout-api/internal/domain/model"
	"checkout-api/internal/infra/db"
	infraRepo "checkout-api/internal/infra/repository"
	"checkout-api/internal/logger"
	auth "checkout-api/internal/usecase/auth_usecase"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	name        string
	description string
	price       string
	imageURL    string
	stock       int64
}

var products = []seedProduct{
	{"Wireless Headphones", "High-quality Bluetooth headphones with noise cancellation", "99.99", "https://images.unsplash.com/photo-1505740420928-5e560c06d30e", 50},
	{"Smart Watch", "Fitness tracker with heart rate monitor and GPS", "199.99", "https://images.unsplash.com/photo-1523275335684-37898b6baf30", 30},
	{"Laptop Stand", "Ergonomic aluminum laptop stand", "49.99", "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46", 100},
	{"USB-C Hub", "7-in-1 USB-C hub with HDMI, USB 3.0, and card reader", "39.99", "", 75},
	{"Mechanical Keyboard", "RGB mechanical keyboard with brown switches", "129.99", "", 40},
}

// 開発用データを作り直す
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "seed", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("seed failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("seed done")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`TRUNCATE TABLE stock_movements, cart_items, carts, order_items, orders, products, users CASCADE`).Error; err != nil {
			return err
		}

		hash, err := auth.NewBcryptHasher(0).Hash("password123")
		if err != nil {
			return err
		}
		user, err := infraRepo.NewUserGormRepository(tx).Create(ctx, model.User{
			Email:        "test@example.com",
			PasswordHash: hash,
			Name:         "Test User",
		})
		if err != nil {
			return err
		}
		log.Info("user created", slog.String("email", user.Email))

		productRepo := infraRepo.NewProductGormRepository(tx)
		for _, sp := range products {
			p := model.Product{
				Name:        sp.name,
				Description: sp.description,
				Price:       decimal.RequireFromString(sp.price),
				Stock:       sp.stock,
			}
			if sp.imageURL != "" {
				img := sp.imageURL
				p.ImageURL = &img
			}
			if _, err := productRepo.Create(ctx, p); err != nil {
				return err
			}
		}
		log.Info("products created", slog.Int("count", len(products)))
		return nil
	})
}
