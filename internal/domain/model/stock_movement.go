package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StockReasonOrder  = "order"
	StockReasonManual = "manual adjustment"
)

// 在庫の増減履歴（追記のみ）
type StockMovement struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index" json:"productId"`
	OrderID   *uuid.UUID `gorm:"type:uuid;index" json:"orderId,omitempty"`
	Delta     int64      `gorm:"not null" json:"delta"`
	Reason    string     `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
