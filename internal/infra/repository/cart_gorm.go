package repository

import (
	"context"

	"checkout-api/internal/domain/model"
	repo "checkout-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得し、無ければ作成
// user_idのunique制約で同時作成されても1つになる
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (model.Cart, bool, error) {
	created, err := r.ensure(ctx, userID)
	if err != nil {
		return model.Cart{}, false, err
	}

	cart, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, false, err
	}
	return cart, created, nil
}

// カート行をロックする（同じカートへの書き込みと注文はここで直列になる）
// DO NOTHINGは行ロックを取らないので、作成後にSELECT ... FOR UPDATEする
func (r *CartGormRepository) LockByUserID(ctx context.Context, userID uuid.UUID) (model.Cart, bool, error) {
	created, err := r.ensure(ctx, userID)
	if err != nil {
		return model.Cart{}, false, err
	}

	var cart model.Cart
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		return model.Cart{}, false, translate(err)
	}
	return cart, created, nil
}

func (r *CartGormRepository) ensure(ctx context.Context, userID uuid.UUID) (bool, error) {
	newCart := model.Cart{UserID: userID}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&newCart)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ユーザーのカートを取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

// カート明細を一覧取得（追加順）
func (r *CartGormRepository) ListByCartID(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("position asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

func (r *CartGormRepository) FindByCartAndProduct(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

// 明細を作成（同じ商品が既にあればErrConflict）
// Positionは末尾に付ける。カート行をロックした中で呼ぶ
func (r *CartGormRepository) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if item.Position == 0 {
		var last int
		if err := r.db.WithContext(ctx).
			Model(&model.CartItem{}).
			Where("cart_id = ?", item.CartID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return model.CartItem{}, err
		}
		item.Position = last + 1
	}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

// 明細の数量を更新
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, cartItemID uuid.UUID, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *CartGormRepository) DeleteByID(ctx context.Context, cartItemID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", cartItemID).Delete(&model.CartItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 指定カートの明細を全削除
func (r *CartGormRepository) DeleteByCartID(ctx context.Context, cartID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *CartGormRepository) DeleteByProductID(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.CartItem{}).Error
}
