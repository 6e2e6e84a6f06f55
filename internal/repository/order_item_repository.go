package repository

import (
	"context"

	"checkout-api/internal/domain/model"

	"github.com/google/uuid"
)

type OrderItemRepository interface {
	Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// 複数注文の明細をまとめて取得
	ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]model.OrderItem, error)
}
