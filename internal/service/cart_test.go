package service

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCartStore is a mock implementation of the CartStore interface
type mockCartStore struct {
	lines     []store.CartLine
	item      *db.CartItem
	error     error
	listCalls int
}

func (m *mockCartStore) ListLines(_ context.Context, _ uuid.UUID) ([]store.CartLine, error) {
	m.listCalls++
	if m.error != nil {
		return nil, m.error
	}
	return m.lines, nil
}

func (m *mockCartStore) AddItem(_ context.Context, _, _ uuid.UUID, _ int32) (*db.CartItem, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.item, nil
}

func (m *mockCartStore) SetQuantity(_ context.Context, _, _ uuid.UUID, _ int32) (*db.CartItem, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.item, nil
}

func (m *mockCartStore) RemoveItem(_ context.Context, _, _ uuid.UUID) error {
	return m.error
}

func (m *mockCartStore) Clear(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func Test_CartService_GetCart(t *testing.T) {
	userID := uuid.New()
	lines := []store.CartLine{
		{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Mouse", UnitPrice: 2500, Quantity: 2, Stock: 10},
		{ID: uuid.New(), ProductID: uuid.New(), ProductName: "Cable", UnitPrice: 300, Quantity: 5, Stock: 1},
	}

	t.Run("computes totals and caches the view", func(t *testing.T) {
		// given
		cartStore := &mockCartStore{lines: lines}
		cache := newMemCartCache()
		svc := NewCartService(cartStore, cache)

		// when
		first, err := svc.GetCart(context.Background(), userID)
		require.NoError(t, err)
		second, err := svc.GetCart(context.Background(), userID)
		require.NoError(t, err)

		// then
		assert.Equal(t, int64(6500), first.TotalPrice)
		assert.Equal(t, int32(7), first.TotalItems)
		assert.True(t, first.Items[0].InStock)
		assert.False(t, first.Items[1].InStock)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, cartStore.listCalls)
	})

	t.Run("cache failures fall back to the store", func(t *testing.T) {
		// given
		cartStore := &mockCartStore{lines: lines}
		cache := newMemCartCache()
		cache.err = errors.New("redis down")
		svc := NewCartService(cartStore, cache)

		// when
		cart, err := svc.GetCart(context.Background(), userID)

		// then
		require.NoError(t, err)
		assert.Len(t, cart.Items, 2)
	})

	t.Run("store error", func(t *testing.T) {
		svc := NewCartService(&mockCartStore{error: apperrors.ErrFailedToFindCart}, newMemCartCache())
		_, err := svc.GetCart(context.Background(), userID)
		require.ErrorIs(t, err, apperrors.ErrFailedToFindCart)
	})
}

func Test_CartService_MutationsInvalidateCache(t *testing.T) {
	userID := uuid.New()
	item := &db.CartItem{ID: uuid.New(), UserID: userID, ProductID: uuid.New(), Quantity: 3}

	testCases := []struct {
		name      string
		storeErr  error
		call      func(svc CartService) error
		wantErr   error
		wantDrops int
	}{
		{
			name: "add item",
			call: func(svc CartService) error {
				_, err := svc.AddItem(context.Background(), userID, AddCartItemDto{ProductID: item.ProductID, Quantity: 3})
				return err
			},
			wantDrops: 1,
		},
		{
			name: "update item",
			call: func(svc CartService) error {
				_, err := svc.UpdateItem(context.Background(), userID, item.ID, UpdateCartItemDto{Quantity: 3})
				return err
			},
			wantDrops: 1,
		},
		{
			name:      "remove item",
			call:      func(svc CartService) error { return svc.RemoveItem(context.Background(), userID, item.ID) },
			wantDrops: 1,
		},
		{
			name:      "clear",
			call:      func(svc CartService) error { return svc.Clear(context.Background(), userID) },
			wantDrops: 1,
		},
		{
			name:     "add over stock keeps cache",
			storeErr: &apperrors.InsufficientStockError{ProductName: "Mouse", Available: 1, Requested: 3},
			call: func(svc CartService) error {
				_, err := svc.AddItem(context.Background(), userID, AddCartItemDto{ProductID: item.ProductID, Quantity: 3})
				return err
			},
			wantErr: apperrors.ErrInsufficientStock,
		},
		{
			name:     "remove unknown item",
			storeErr: apperrors.ErrCartItemNotFound,
			call:     func(svc CartService) error { return svc.RemoveItem(context.Background(), userID, uuid.New()) },
			wantErr:  apperrors.ErrCartItemNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cache := newMemCartCache()
			svc := NewCartService(&mockCartStore{item: item, error: tc.storeErr}, cache)

			// when
			err := tc.call(svc)

			// then
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantDrops, cache.deletes)
		})
	}
}
