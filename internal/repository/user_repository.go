package repository

import (
	"context"

	"checkout-api/internal/domain/model"

	"github.com/google/uuid"
)

// 保存・取得を約束
type UserRepository interface {
	// emailが重複していたらErrConflict
	Create(ctx context.Context, user model.User) (model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
}
