package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"checkout-api/internal/domain/model"
	repo "checkout-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	log         *slog.Logger
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, tx repo.TransactionManager, log *slog.Logger) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo, tx: tx, log: log}
}

// GET /productsの入力。0は未指定
type ListProductsInput struct {
	Page  int
	Limit int
}

type ProductListOutput struct {
	Data       []model.Product `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int64           `json:"totalPages"`
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    *string
	Stock       int64
}

// nilの項目は変更しない
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	Stock       *int64
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page == 0 {
		in.Page = DefaultPage
	}
	if in.Limit == 0 {
		in.Limit = DefaultLimit
	}
	if in.Page < 1 {
		return ProductListOutput{}, Validation("page must be at least 1")
	}
	if in.Limit < 1 || in.Limit > MaxLimit {
		return ProductListOutput{}, Validation("limit must be between 1 and %d", MaxLimit)
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{Page: in.Page, Limit: in.Limit})
	if err != nil {
		return ProductListOutput{}, Internal(err)
	}

	limit := int64(in.Limit)
	return ProductListOutput{
		Data:       items,
		Total:      total,
		Page:       in.Page,
		Limit:      in.Limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID uuid.UUID) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if err != nil {
		return model.Product{}, productError(err, productID)
	}
	return p, nil
}

// 在庫が足りるか（存在しなければNotFound）
func (u *ProductUsecase) HasSufficientStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	p, err := u.GetProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return p.HasStock(qty), nil
}

// 在庫を減らす（足りなければInsufficientStock、負にはならない）
func (u *ProductUsecase) DecreaseStock(ctx context.Context, productID uuid.UUID, qty int64) error {
	if qty < 1 {
		return Validation("quantity must be at least 1")
	}
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return productError(err, productID)
		}
		return decreaseStock(ctx, r, p, qty, nil)
	})
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error) {
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		ImageURL:    normalizeImageURL(in.ImageURL),
		Stock:       in.Stock,
	}
	if err := validateProduct(p); err != nil {
		return model.Product{}, err
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, storeError(err)
	}

	u.log.InfoContext(ctx, "product created", "product_id", created.ID, "stock", created.Stock)
	return created, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID uuid.UUID, in UpdateProductInput) (model.Product, error) {
	var out model.Product

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return productError(err, productID)
		}
		before := p.Stock

		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = strings.TrimSpace(*in.Description)
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.ImageURL != nil {
			p.ImageURL = normalizeImageURL(in.ImageURL)
		}
		if in.Stock != nil {
			p.Stock = *in.Stock
		}
		if err := validateProduct(p); err != nil {
			return err
		}

		if err := r.Products().Update(ctx, p); err != nil {
			return productError(err, productID)
		}

		// 在庫を手で変えたら履歴を残す
		if delta := p.Stock - before; delta != 0 {
			if err := r.Inventory().CreateMovement(ctx, model.StockMovement{
				ProductID: p.ID,
				Delta:     delta,
				Reason:    model.StockReasonManual,
			}); err != nil {
				return Internal(err)
			}
		}

		out = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	u.log.InfoContext(ctx, "product updated", "product_id", out.ID, "stock", out.Stock)
	return out, nil
}

// 論理削除。カートに入っている行も同じTxで消す
func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().SoftDelete(ctx, productID); err != nil {
			return productError(err, productID)
		}
		if err := r.CartItems().DeleteByProductID(ctx, productID); err != nil {
			return Internal(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.log.InfoContext(ctx, "product deleted", "product_id", productID)
	return nil
}

func validateProduct(p model.Product) error {
	if n := utf8.RuneCountInString(p.Name); n < 3 || n > 200 {
		return Validation("name must be between 3 and 200 characters")
	}
	if utf8.RuneCountInString(p.Description) < 10 {
		return Validation("description must be at least 10 characters")
	}
	if p.Price.IsNegative() {
		return Validation("price must not be negative")
	}
	if !model.IsMoney(p.Price) {
		return Validation("price must have at most 2 decimal places")
	}
	if p.Price.GreaterThan(model.MaxPrice) {
		return Validation("price must not exceed %s", model.MaxPrice.StringFixed(model.MoneyScale))
	}
	if p.Stock < 0 {
		return Validation("stock must not be negative")
	}
	if p.ImageURL != nil {
		if u, err := url.ParseRequestURI(*p.ImageURL); err != nil || u.Scheme == "" || u.Host == "" {
			return Validation("imageUrl must be a valid URL")
		}
	}
	return nil
}

// 空文字はnilにそろえる
func normalizeImageURL(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func productError(err error, productID uuid.UUID) error {
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("Product with ID %s not found", productID)
	}
	return storeError(err)
}

// 桁あふれは入力の問題として400で返す
func storeError(err error) error {
	if errors.Is(err, repo.ErrOutOfRange) {
		return Validation("numeric value is out of range")
	}
	return Internal(err)
}
