package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"checkout-api/internal/domain/model"
	repo "checkout-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジック。
// 書き込みはカート行→商品行の順にロックしたTxの中で行う。
type CartUsecase struct {
	tx  repo.TransactionManager
	log *slog.Logger
}

func NewCartUsecase(tx repo.TransactionManager, log *slog.Logger) *CartUsecase {
	return &CartUsecase{tx: tx, log: log}
}

type CartProductView struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL *string         `json:"imageUrl,omitempty"`
	Stock    int64           `json:"stock"`
}

// priceはカート追加時点の価格
type CartItemView struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Product   CartProductView `json:"product"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Items       []CartItemView  `json:"items"`
	TotalItems  int64           `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type AddCartItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// カート取得（無ければ作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, userID uuid.UUID) (CartView, error) {
	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := u.getOrCreateCart(ctx, r, userID)
		if err != nil {
			return err
		}
		out, err = buildCartView(ctx, r, cart)
		return err
	})
	return out, err
}

// カートに追加（同じ商品は数量を加算）
func (u *CartUsecase) AddItem(ctx context.Context, userID uuid.UUID, in AddCartItemInput) (CartView, error) {
	if in.Quantity < 1 {
		return CartView{}, Validation("quantity must be at least 1")
	}

	var out CartView
	var merged, cartCreated bool
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, created, err := lockCart(ctx, r, userID)
		if err != nil {
			return err
		}

		p, err := r.Products().FindByIDForUpdate(ctx, in.ProductID)
		if err != nil {
			return productError(err, in.ProductID)
		}
		if !p.HasStock(in.Quantity) {
			return InsufficientStock("Insufficient stock. Available: %d, Requested: %d", p.Stock, in.Quantity)
		}
		cartCreated = created

		existing, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, p.ID)
		switch {
		case err == nil:
			total := existing.Quantity + in.Quantity
			if !p.HasStock(total) {
				return InsufficientStock("Insufficient stock. Available: %d, Total requested: %d", p.Stock, total)
			}
			if err := r.CartItems().UpdateQuantity(ctx, existing.ID, total); err != nil {
				return Internal(err)
			}
			merged = true
		case errors.Is(err, repo.ErrNotFound):
			if _, err := r.CartItems().Create(ctx, model.CartItem{
				CartID:    cart.ID,
				ProductID: p.ID,
				Quantity:  in.Quantity,
				Price:     p.Price,
			}); err != nil {
				return Internal(err)
			}
		default:
			return Internal(err)
		}

		out, err = buildCartView(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartView{}, err
	}

	if cartCreated {
		u.log.InfoContext(ctx, "cart created", "user_id", userID, "cart_id", out.ID)
	}
	if merged {
		u.log.InfoContext(ctx, "cart item quantity increased", "user_id", userID, "product_id", in.ProductID, "quantity", in.Quantity)
	} else {
		u.log.InfoContext(ctx, "cart item added", "user_id", userID, "product_id", in.ProductID, "quantity", in.Quantity)
	}
	return out, nil
}

// 数量を上書き
func (u *CartUsecase) UpdateItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID, qty int64) (CartView, error) {
	if qty < 1 {
		return CartView{}, Validation("quantity must be at least 1")
	}

	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, _, err := lockCart(ctx, r, userID)
		if err != nil {
			return err
		}
		item, err := findCartItem(ctx, r, cart.ID, productID)
		if err != nil {
			return err
		}

		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return productError(err, productID)
		}
		if !p.HasStock(qty) {
			return InsufficientStock("Insufficient stock. Available: %d, Requested: %d", p.Stock, qty)
		}

		if err := r.CartItems().UpdateQuantity(ctx, item.ID, qty); err != nil {
			return Internal(err)
		}
		out, err = buildCartView(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartView{}, err
	}

	u.log.InfoContext(ctx, "cart item updated", "user_id", userID, "product_id", productID, "quantity", qty)
	return out, nil
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (CartView, error) {
	var out CartView
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, _, err := lockCart(ctx, r, userID)
		if err != nil {
			return err
		}
		item, err := findCartItem(ctx, r, cart.ID, productID)
		if err != nil {
			return err
		}
		if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
			return Internal(err)
		}
		out, err = buildCartView(ctx, r, cart)
		return err
	})
	if err != nil {
		return CartView{}, err
	}

	u.log.InfoContext(ctx, "cart item removed", "user_id", userID, "product_id", productID)
	return out, nil
}

// 空でもエラーにしない
func (u *CartUsecase) Clear(ctx context.Context, userID uuid.UUID) error {
	var removed int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, _, err := lockCart(ctx, r, userID)
		if err != nil {
			return err
		}
		removed, err = r.CartItems().DeleteByCartID(ctx, cart.ID)
		if err != nil {
			return Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if removed > 0 {
		u.log.InfoContext(ctx, "cart cleared", "user_id", userID, "items", removed)
	}
	return nil
}

func (u *CartUsecase) getOrCreateCart(ctx context.Context, r repo.TxRepos, userID uuid.UUID) (model.Cart, error) {
	cart, created, err := r.Carts().GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, Internal(err)
	}
	if created {
		u.log.InfoContext(ctx, "cart created", "user_id", userID, "cart_id", cart.ID)
	}
	return cart, nil
}

// 書き込み用。注文と同じくカート行を先にロックする
func lockCart(ctx context.Context, r repo.TxRepos, userID uuid.UUID) (model.Cart, bool, error) {
	cart, created, err := r.Carts().LockByUserID(ctx, userID)
	if err != nil {
		return model.Cart{}, false, Internal(err)
	}
	return cart, created, nil
}

func findCartItem(ctx context.Context, r repo.TxRepos, cartID uuid.UUID, productID uuid.UUID) (model.CartItem, error) {
	item, err := r.CartItems().FindByCartAndProduct(ctx, cartID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, NotFound("Product not found in cart")
	}
	if err != nil {
		return model.CartItem{}, Internal(err)
	}
	return item, nil
}

// 明細は追加順。商品はIN句でまとめて取る
func buildCartView(ctx context.Context, r repo.TxRepos, cart model.Cart) (CartView, error) {
	items, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartView{}, Internal(err)
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := r.Products().FindByIDs(ctx, ids)
	if err != nil {
		return CartView{}, Internal(err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := CartView{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       make([]CartItemView, 0, len(items)),
		TotalAmount: decimal.Zero,
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
	for _, it := range items {
		p := byID[it.ProductID]
		subtotal := model.Subtotal(it.Price, it.Quantity)
		view.Items = append(view.Items, CartItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Product: CartProductView{
				ID:       it.ProductID,
				Name:     p.Name,
				Price:    p.Price,
				ImageURL: p.ImageURL,
				Stock:    p.Stock,
			},
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: subtotal,
		})
		view.TotalItems += it.Quantity
		view.TotalAmount = view.TotalAmount.Add(subtotal)
	}
	view.TotalAmount = model.RoundMoney(view.TotalAmount)
	return view, nil
}
