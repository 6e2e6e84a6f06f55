package repository

import (
	"context"

	"checkout-api/internal/domain/model"

	"github.com/google/uuid"
)

type CartRepository interface {
	// 無ければ作る。createdは今回作ったかどうか
	GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (cart model.Cart, created bool, err error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (model.Cart, error)

	// 無ければ作ってからFOR UPDATEでロック。明細を読む前に呼ぶ
	LockByUserID(ctx context.Context, userID uuid.UUID) (cart model.Cart, created bool, err error)
}
