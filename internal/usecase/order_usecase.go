package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"checkout-api/internal/domain/model"
	repo "checkout-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx  repo.TransactionManager
	log *slog.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, log *slog.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, log: log}
}

type OrderProductView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL *string   `json:"imageUrl,omitempty"`
}

type OrderItemView struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"productId"`
	Product   OrderProductView `json:"product"`
	Quantity  int64            `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
}

type OrderView struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	Items       []OrderItemView   `json:"items"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Status      model.OrderStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// CreateOrder はカートを注文に変える。
// 在庫確認・注文作成・在庫減算・カートを空にするまでを1つのTxで行い、途中で失敗したら全て戻す。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID uuid.UUID) (OrderView, error) {
	var out OrderView

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// カート行を先にロック（同じカートの注文・変更はここで待つ）
		cart, _, err := lockCart(ctx, r, userID)
		if err != nil {
			return err
		}
		view, err := buildCartView(ctx, r, cart)
		if err != nil {
			return err
		}
		if len(view.Items) == 0 {
			return EmptyCart()
		}
		if view.TotalAmount.GreaterThan(model.MaxOrderAmount) {
			return Validation("order total must not exceed %s", model.MaxOrderAmount.StringFixed(model.MoneyScale))
		}

		// id昇順でロックしてから現在の在庫で再確認
		locked, err := lockProducts(ctx, r, view.Items)
		if err != nil {
			return err
		}
		for _, it := range view.Items {
			p, ok := locked[it.ProductID]
			if !ok {
				return NotFound("Product with ID %s not found", it.ProductID)
			}
			if !p.HasStock(it.Quantity) {
				return InsufficientStock("Insufficient stock for product: %s", p.Name)
			}
		}

		order, err := r.Orders().Create(ctx, model.Order{
			UserID:      userID,
			TotalAmount: view.TotalAmount,
			Status:      model.OrderStatusPending,
		})
		if err != nil {
			return storeError(err)
		}

		items := make([]model.OrderItem, 0, len(view.Items))
		for i, it := range view.Items {
			p := locked[it.ProductID]
			oi, err := r.OrderItems().Create(ctx, model.OrderItem{
				OrderID:         order.ID,
				ProductID:       p.ID,
				ProductName:     p.Name,
				ProductImageURL: p.ImageURL,
				Quantity:        it.Quantity,
				Price:           it.Price,
				Position:        i + 1,
			})
			if err != nil {
				return storeError(err)
			}
			if err := decreaseStock(ctx, r, p, it.Quantity, &order.ID); err != nil {
				return err
			}
			items = append(items, oi)
		}

		if _, err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return Internal(err)
		}

		out = toOrderView(order, items)
		return nil
	})
	if err != nil {
		return OrderView{}, err
	}

	u.log.InfoContext(ctx, "order created",
		"order_id", out.ID,
		"user_id", userID,
		"items", len(out.Items),
		"total_amount", out.TotalAmount.StringFixed(model.MoneyScale),
	)
	return out, nil
}

// 新しい順。明細はIN句でまとめて取る
func (u *OrderUsecase) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	var out []OrderView

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return Internal(err)
		}

		ids := make([]uuid.UUID, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		items, err := r.OrderItems().ListByOrderIDs(ctx, ids)
		if err != nil {
			return Internal(err)
		}
		byOrder := make(map[uuid.UUID][]model.OrderItem, len(orders))
		for _, it := range items {
			byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
		}

		out = make([]OrderView, 0, len(orders))
		for _, o := range orders {
			out = append(out, toOrderView(o, byOrder[o.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// 他人の注文もNotFound
func (u *OrderUsecase) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (OrderView, error) {
	var out OrderView

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDAndUserID(ctx, orderID, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("Order with ID %s not found", orderID)
		}
		if err != nil {
			return Internal(err)
		}
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return Internal(err)
		}
		out = toOrderView(o, items)
		return nil
	})
	if err != nil {
		return OrderView{}, err
	}
	return out, nil
}

func lockProducts(ctx context.Context, r repo.TxRepos, items []CartItemView) (map[uuid.UUID]model.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	products, err := r.Products().LockByIDs(ctx, ids)
	if err != nil {
		return nil, Internal(err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func toOrderView(o model.Order, items []model.OrderItem) OrderView {
	v := OrderView{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       make([]OrderItemView, 0, len(items)),
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
	}
	for _, it := range items {
		v.Items = append(v.Items, OrderItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Product: OrderProductView{
				ID:       it.ProductID,
				Name:     it.ProductName,
				ImageURL: it.ProductImageURL,
			},
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: model.Subtotal(it.Price, it.Quantity),
		})
	}
	return v
}
