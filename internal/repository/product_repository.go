package repository

import (
	"context"

	"checkout-api/internal/domain/model"

	"github.com/google/uuid"
)

// 一覧検索
type ProductListQuery struct {
	Page  int
	Limit int
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.Product, error)

	// まとめて取得（順序は保証しない）
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// 行ロック付きで取得（トランザクション内で使う）
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error)

	// id昇順で行ロックする（デッドロック回避）
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
