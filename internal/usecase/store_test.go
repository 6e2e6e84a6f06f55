package usecase

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"checkout-api/internal/domain/model"
	repo "checkout-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================
// in-memory store（Txはスナップショットで戻す）
// =====================

type memState struct {
	products   map[uuid.UUID]model.Product
	carts      map[uuid.UUID]model.Cart
	cartItems  []model.CartItem
	orders     []model.Order
	orderItems []model.OrderItem
	movements  []model.StockMovement
}

func (s memState) clone() memState {
	c := memState{
		products:   make(map[uuid.UUID]model.Product, len(s.products)),
		carts:      make(map[uuid.UUID]model.Cart, len(s.carts)),
		cartItems:  append([]model.CartItem(nil), s.cartItems...),
		orders:     append([]model.Order(nil), s.orders...),
		orderItems: append([]model.OrderItem(nil), s.orderItems...),
		movements:  append([]model.StockMovement(nil), s.movements...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	return c
}

type memStore struct {
	memState
	now     time.Time
	txCalls int

	// 減算の直前に呼ばれる（別リクエストの割り込みを再現）
	onDecrease func(p *model.Product)

	// ロックされた商品id（呼ばれた順）
	locked []uuid.UUID

	// "cart" / "product" をロックした順に積む
	lockSeq []string
}

func newMemStore() *memStore {
	return &memStore{
		memState: memState{
			products: map[uuid.UUID]model.Product{},
			carts:    map[uuid.UUID]model.Cart{},
		},
		now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txCalls++
	snapshot := s.memState.clone()
	if err := fn(s.repos()); err != nil {
		s.memState = snapshot
		return err
	}
	return nil
}

func (s *memStore) repos() *memRepos {
	return &memRepos{
		products:   &memProductRepo{s},
		inventory:  &memInventoryRepo{s},
		carts:      &memCartRepo{s},
		cartItems:  &memCartRepo{s},
		orders:     &memOrderRepo{s},
		orderItems: &memOrderItemRepo{s},
	}
}

// 商品を直接入れる
func (s *memStore) seedProduct(t *testing.T, name string, price string, stock int64) model.Product {
	t.Helper()
	p := model.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CreatedAt:   s.tick(),
	}
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = p
	return p
}

func (s *memStore) stock(id uuid.UUID) int64 {
	return s.products[id].Stock
}

type memRepos struct {
	products   repo.ProductRepository
	inventory  repo.InventoryRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
}

func (r *memRepos) Products() repo.ProductRepository     { return r.products }
func (r *memRepos) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *memRepos) Carts() repo.CartRepository           { return r.carts }
func (r *memRepos) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *memRepos) Orders() repo.OrderRepository         { return r.orders }
func (r *memRepos) OrderItems() repo.OrderItemRepository { return r.orderItems }

func lessID(a, b uuid.UUID) bool { return bytes.Compare(a[:], b[:]) < 0 }

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	all := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return lessID(all[j].ID, all[i].ID)
	})
	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error) {
	r.s.locked = append(r.s.locked, id)
	r.s.lockSeq = append(r.s.lockSeq, "product")
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	r.s.locked = append(r.s.locked, ids...)
	for range ids {
		r.s.lockSeq = append(r.s.lockSeq, "product")
	}
	return r.FindByIDs(ctx, ids)
}

func (r *memProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Update(ctx context.Context, p model.Product) error {
	cur, ok := r.s.products[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = r.s.tick()
	r.s.products[p.ID] = p
	return nil
}

func (r *memProductRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

type memInventoryRepo struct{ s *memStore }

func (r *memInventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	p, ok := r.s.products[productID]
	if !ok {
		return false, nil
	}
	if r.s.onDecrease != nil {
		r.s.onDecrease(&p)
	}
	if p.Stock < qty {
		r.s.products[productID] = p
		return false, nil
	}
	p.Stock -= qty
	r.s.products[productID] = p
	return true, nil
}

func (r *memInventoryRepo) CreateMovement(ctx context.Context, m model.StockMovement) error {
	m.ID = uuid.New()
	m.CreatedAt = r.s.tick()
	r.s.movements = append(r.s.movements, m)
	return nil
}

type memCartRepo struct{ s *memStore }

func (r *memCartRepo) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (model.Cart, bool, error) {
	if c, ok := r.s.carts[userID]; ok {
		return c, false, nil
	}
	now := r.s.tick()
	c := model.Cart{ID: uuid.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.s.carts[userID] = c
	return c, true, nil
}

func (r *memCartRepo) LockByUserID(ctx context.Context, userID uuid.UUID) (model.Cart, bool, error) {
	r.s.lockSeq = append(r.s.lockSeq, "cart")
	return r.GetOrCreateByUserID(ctx, userID)
}

func (r *memCartRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (model.Cart, error) {
	c, ok := r.s.carts[userID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

func (r *memCartRepo) ListByCartID(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	out := []model.CartItem{}
	for _, it := range r.s.cartItems {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memCartRepo) FindByCartAndProduct(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) (model.CartItem, error) {
	for _, it := range r.s.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return model.CartItem{}, repo.ErrNotFound
}

func (r *memCartRepo) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if _, err := r.FindByCartAndProduct(ctx, item.CartID, item.ProductID); err == nil {
		return model.CartItem{}, repo.ErrConflict
	}
	for _, it := range r.s.cartItems {
		if it.CartID == item.CartID && it.Position > item.Position {
			item.Position = it.Position
		}
	}
	item.Position++
	item.ID = uuid.New()
	// 同じ時刻でも並びはPositionで決まる
	item.CreatedAt = r.s.now
	item.UpdatedAt = item.CreatedAt
	r.s.cartItems = append(r.s.cartItems, item)
	return item, nil
}

func (r *memCartRepo) UpdateQuantity(ctx context.Context, cartItemID uuid.UUID, qty int64) error {
	for i, it := range r.s.cartItems {
		if it.ID == cartItemID {
			r.s.cartItems[i].Quantity = qty
			r.s.cartItems[i].UpdatedAt = r.s.tick()
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *memCartRepo) DeleteByID(ctx context.Context, cartItemID uuid.UUID) error {
	for i, it := range r.s.cartItems {
		if it.ID == cartItemID {
			r.s.cartItems = append(r.s.cartItems[:i:i], r.s.cartItems[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *memCartRepo) DeleteByCartID(ctx context.Context, cartID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(it model.CartItem) bool { return it.CartID == cartID }), nil
}

func (r *memCartRepo) DeleteByProductID(ctx context.Context, productID uuid.UUID) error {
	r.deleteWhere(func(it model.CartItem) bool { return it.ProductID == productID })
	return nil
}

func (r *memCartRepo) deleteWhere(match func(model.CartItem) bool) int64 {
	kept := make([]model.CartItem, 0, len(r.s.cartItems))
	var n int64
	for _, it := range r.s.cartItems {
		if match(it) {
			n++
			continue
		}
		kept = append(kept, it)
	}
	r.s.cartItems = kept
	return n
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(ctx context.Context, order model.Order) (model.Order, error) {
	order.ID = uuid.New()
	order.CreatedAt = r.s.tick()
	order.UpdatedAt = order.CreatedAt
	r.s.orders = append(r.s.orders, order)
	return order, nil
}

func (r *memOrderRepo) FindByIDAndUserID(ctx context.Context, orderID uuid.UUID, userID uuid.UUID) (model.Order, error) {
	for _, o := range r.s.orders {
		if o.ID == orderID && o.UserID == userID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	out := []model.Order{}
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if r.s.orders[i].UserID == userID {
			out = append(out, r.s.orders[i])
		}
	}
	return out, nil
}

type memOrderItemRepo struct{ s *memStore }

func (r *memOrderItemRepo) Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error) {
	item.ID = uuid.New()
	item.CreatedAt = r.s.tick()
	r.s.orderItems = append(r.s.orderItems, item)
	return item, nil
}

func (r *memOrderItemRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	return r.ListByOrderIDs(ctx, []uuid.UUID{orderID})
}

func (r *memOrderItemRepo) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]model.OrderItem, error) {
	want := make(map[uuid.UUID]bool, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = true
	}
	out := []model.OrderItem{}
	for _, it := range r.s.orderItems {
		if want[it.OrderID] {
			out = append(out, it)
		}
	}
	return out, nil
}

var (
	_ repo.TransactionManager  = (*memStore)(nil)
	_ repo.ProductRepository   = (*memProductRepo)(nil)
	_ repo.InventoryRepository = (*memInventoryRepo)(nil)
	_ repo.CartRepository      = (*memCartRepo)(nil)
	_ repo.CartItemRepository  = (*memCartRepo)(nil)
	_ repo.OrderRepository     = (*memOrderRepo)(nil)
	_ repo.OrderItemRepository = (*memOrderItemRepo)(nil)
)
