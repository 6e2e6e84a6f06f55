package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"checkout-api/internal/config"
	"checkout-api/internal/handler"
	"checkout-api/internal/infra/db"
	infraRepo "checkout-api/internal/infra/repository"
	"checkout-api/internal/logger"
	"checkout-api/internal/middleware"
	"checkout-api/internal/server"
	"checkout-api/internal/usecase"
	auth "checkout-api/internal/usecase/auth_usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "checkout-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, txm, log)
	cartUC := usecase.NewCartUsecase(txm, log)
	orderUC := usecase.NewOrderUsecase(txm, log)
	authUC := auth.NewAuthUsecase(
		userRepo,
		auth.NewBcryptHasher(0),
		auth.NewJWTIssuer(cfg.JWTSecret, cfg.JWTTTL),
		log,
	)

	//Server起動
	srv := server.New(cfg.Addr(), cfg.ShutdownTimeout, log, server.Handlers{
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
		Health:  handler.NewHealthHandler(sqlDB),
		AuthMW:  middleware.AuthJWT(cfg.JWTSecret),
	})
	return srv.Run(ctx)
}
