package repository

import (
	"context"

	"checkout-api/internal/domain/model"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (model.Order, error)

	// 他人の注文はErrNotFound
	FindByIDAndUserID(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) (model.Order, error)

	// 新しい順
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
}
