package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/google/uuid"
)

var errInjected = fmt.Errorf("injected failure")

// memStore is a transactional in-memory OrderStore. Transactions are serialized by mu
// and roll back by restoring a copy of the state taken at begin.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]db.Product
	cart     map[uuid.UUID][]db.CartItem
	orders   map[uuid.UUID]db.Order
	items    map[uuid.UUID][]db.OrderItem

	// failOn names the OrderTx step that fails with errInjected.
	failOn string
	// beforeReserve runs inside the transaction right before stock is reserved.
	beforeReserve func(m *memStore)
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]db.Product{},
		cart:     map[uuid.UUID][]db.CartItem{},
		orders:   map[uuid.UUID]db.Order{},
		items:    map[uuid.UUID][]db.OrderItem{},
	}
}

func (m *memStore) addProduct(name string, price int64, stock int32) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.products[id] = db.Product{ID: id, Name: name, Price: price, StockQuantity: stock, Version: 1}
	return id
}

func (m *memStore) addToCart(userID, productID uuid.UUID, quantity int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart[userID] = append(m.cart[userID], db.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: quantity})
}

func (m *memStore) stockOf(id uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func (m *memStore) setPrice(id uuid.UUID, name string, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.products[id]
	p.Name = name
	p.Price = price
	m.products[id] = p
}

func (m *memStore) cartSize(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cart[userID])
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// state serializes everything the workflow may touch so that tests can compare
// the store before and after a failed placement.
func (m *memStore) state() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := json.Marshal([]any{m.products, m.cart, m.orders, m.items})
	return b
}

func (m *memStore) sameState(before []byte) bool {
	return bytes.Equal(before, m.state())
}

type memSnapshot struct {
	products map[uuid.UUID]db.Product
	cart     map[uuid.UUID][]db.CartItem
	orders   map[uuid.UUID]db.Order
	items    map[uuid.UUID][]db.OrderItem
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		products: make(map[uuid.UUID]db.Product, len(m.products)),
		cart:     make(map[uuid.UUID][]db.CartItem, len(m.cart)),
		orders:   make(map[uuid.UUID]db.Order, len(m.orders)),
		items:    make(map[uuid.UUID][]db.OrderItem, len(m.items)),
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.cart {
		s.cart[k] = append([]db.CartItem(nil), v...)
	}
	for k, v := range m.orders {
		s.orders[k] = v
	}
	for k, v := range m.items {
		s.items[k] = append([]db.OrderItem(nil), v...)
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.products, m.cart, m.orders, m.items = s.products, s.cart, s.orders, s.items
}

func (m *memStore) WithinOrderTx(_ context.Context, fn func(tx store.OrderTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(&memTx{m: m}); err != nil {
		m.restore(snap)
		return err
	}
	if m.failOn == "commit" {
		m.restore(snap)
		return fmt.Errorf("%w: %w", apperrors.ErrTransactionCommit, errInjected)
	}
	return nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*db.Order, []db.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil, apperrors.ErrOrderNotFound
	}
	return &order, append([]db.OrderItem(nil), m.items[id]...), nil
}

func (m *memStore) FindOrders(_ context.Context, filter store.OrderFilter) ([]db.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := make([]db.Order, 0)
	for _, o := range m.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(*matched[j].CreatedAt) })
	total := int64(len(matched))
	start := min(int(filter.Offset), len(matched))
	end := min(start+int(filter.Limit), len(matched))
	return matched[start:end], total, nil
}

func (m *memStore) FindItemsByOrderIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]db.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[uuid.UUID][]db.OrderItem, len(ids))
	for _, id := range ids {
		result[id] = append([]db.OrderItem(nil), m.items[id]...)
	}
	return result, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) (string, *db.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return "", nil, apperrors.ErrOrderNotFound
	}
	previous := order.Status
	if previous != status {
		now := time.Now()
		order.Status = status
		order.Version++
		order.UpdatedAt = &now
		m.orders[id] = order
	}
	return previous, &order, nil
}

type memTx struct {
	m *memStore
}

func (t *memTx) LockCartLines(_ context.Context, userID uuid.UUID) ([]store.CartLine, error) {
	if t.m.failOn == "lock" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrLockCart, errInjected)
	}
	lines := make([]store.CartLine, 0, len(t.m.cart[userID]))
	for _, item := range t.m.cart[userID] {
		p := t.m.products[item.ProductID]
		lines = append(lines, store.CartLine{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Stock:       p.StockQuantity,
		})
	}
	return lines, nil
}

func (t *memTx) CreateOrder(_ context.Context, params db.CreateOrderParams, items []db.CreateOrderItemParams) (*db.Order, []db.OrderItem, error) {
	if t.m.failOn == "create" {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrCreateOrder, errInjected)
	}
	now := time.Now()
	order := db.Order{
		ID:              uuid.New(),
		UserID:          params.UserID,
		Status:          params.Status,
		TotalPrice:      params.TotalPrice,
		ShippingAddress: params.ShippingAddress,
		Version:         1,
		CreatedAt:       &now,
		UpdatedAt:       &now,
	}
	orderItems := make([]db.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, db.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			PricePerItem: item.PricePerItem,
			Quantity:     item.Quantity,
			Price:        item.Price,
			CreatedAt:    &now,
		})
	}
	t.m.orders[order.ID] = order
	t.m.items[order.ID] = orderItems
	return &order, append([]db.OrderItem(nil), orderItems...), nil
}

func (t *memTx) ReserveStock(_ context.Context, productID uuid.UUID, quantity int32) error {
	if t.m.beforeReserve != nil {
		t.m.beforeReserve(t.m)
	}
	if t.m.failOn == "reserve" {
		return fmt.Errorf("%w: %w", apperrors.ErrReserveStock, errInjected)
	}
	p, ok := t.m.products[productID]
	if !ok || p.StockQuantity < quantity {
		return apperrors.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	t.m.products[productID] = p
	return nil
}

func (t *memTx) ClearCart(_ context.Context, userID uuid.UUID) error {
	if t.m.failOn == "clear" {
		return fmt.Errorf("%w: %w", apperrors.ErrClearCart, errInjected)
	}
	delete(t.m.cart, userID)
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []messaging.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]messaging.Event(nil), p.events...)
}

// memCartCache is a map backed CartCache.
type memCartCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]byte
	deletes int
	err     error
}

func newMemCartCache() *memCartCache {
	return &memCartCache{entries: map[uuid.UUID][]byte{}}
}

func (c *memCartCache) Get(_ context.Context, userID uuid.UUID, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.entries[userID]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCartCache) Set(_ context.Context, userID uuid.UUID, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[userID] = b
	return nil
}

func (c *memCartCache) Delete(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	if c.err != nil {
		return c.err
	}
	delete(c.entries, userID)
	return nil
}
