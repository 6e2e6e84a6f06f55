package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 注文明細
// 価格・商品名・画像は注文時点のスナップショット
// Positionはカートでの並び順
type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	ProductName     string          `gorm:"type:varchar(200);not null" json:"productName"`
	ProductImageURL *string         `gorm:"type:varchar(2048)" json:"productImageUrl,omitempty"`
	Quantity        int64           `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Position        int             `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
