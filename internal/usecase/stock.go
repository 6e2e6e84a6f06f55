package usecase

import (
	"context"

	"checkout-api/internal/domain/model"
	repo "checkout-api/internal/repository"

	"github.com/google/uuid"
)

// 条件付きUPDATEで減算し、履歴を残す。orderIDは注文以外ならnil
func decreaseStock(ctx context.Context, r repo.TxRepos, p model.Product, qty int64, orderID *uuid.UUID) error {
	ok, err := r.Inventory().DecreaseStockIfEnough(ctx, p.ID, qty)
	if err != nil {
		return Internal(err)
	}
	if !ok {
		return InsufficientStock("Insufficient stock for product: %s", p.Name)
	}

	reason := model.StockReasonManual
	if orderID != nil {
		reason = model.StockReasonOrder
	}
	if err := r.Inventory().CreateMovement(ctx, model.StockMovement{
		ProductID: p.ID,
		OrderID:   orderID,
		Delta:     -qty,
		Reason:    reason,
	}); err != nil {
		return Internal(err)
	}
	return nil
}
