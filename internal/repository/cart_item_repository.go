package repository

import (
	"context"

	"checkout-api/internal/domain/model"

	"github.com/google/uuid"
)

type CartItemRepository interface {
	// 追加順
	ListByCartID(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)
	FindByCartAndProduct(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID uuid.UUID, qty int64) error
	DeleteByID(ctx context.Context, cartItemID uuid.UUID) error

	// 削除件数を返す
	DeleteByCartID(ctx context.Context, cartID uuid.UUID) (int64, error)

	// 商品削除時に全カートから外す
	DeleteByProductID(ctx context.Context, productID uuid.UUID) error
}
