package repository

import (
	"context"

	"checkout-api/internal/domain/model"

	"github.com/google/uuid"
)

type InventoryRepository interface {
	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)

	// 在庫の増減履歴
	CreateMovement(ctx context.Context, m model.StockMovement) error
}
