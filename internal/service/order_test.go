package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func Test_newOrderDraft(t *testing.T) {
	userID := uuid.New()
	mouse, keyboard := uuid.New(), uuid.New()

	testCases := []struct {
		name      string
		lines     []store.CartLine
		wantTotal int64
		wantErr   error
		wantName  string
	}{
		{
			name:    "empty cart",
			lines:   nil,
			wantErr: apperrors.ErrEmptyCart,
		},
		{
			name: "totals every line",
			lines: []store.CartLine{
				{ProductID: mouse, ProductName: "Mouse", UnitPrice: 2500, Quantity: 2, Stock: 5},
				{ProductID: keyboard, ProductName: "Keyboard", UnitPrice: 7999, Quantity: 1, Stock: 1},
			},
			wantTotal: 12999,
		},
		{
			name: "stops at first line over stock",
			lines: []store.CartLine{
				{ProductID: mouse, ProductName: "Mouse", UnitPrice: 2500, Quantity: 6, Stock: 5},
				{ProductID: keyboard, ProductName: "Keyboard", UnitPrice: 7999, Quantity: 3, Stock: 1},
			},
			wantErr:  apperrors.ErrInsufficientStock,
			wantName: "Mouse",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			draft, err := newOrderDraft(userID, tc.lines, nil)

			// then
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, draft)
				if tc.wantName != "" {
					var stockErr *apperrors.InsufficientStockError
					require.ErrorAs(t, err, &stockErr)
					assert.Equal(t, tc.wantName, stockErr.ProductName)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, draft.order.TotalPrice)
			assert.Equal(t, StatusPending, draft.order.Status)
			require.Len(t, draft.items, len(tc.lines))
			var sum int64
			for i, item := range draft.items {
				assert.Equal(t, tc.lines[i].UnitPrice*int64(tc.lines[i].Quantity), item.Price)
				sum += item.Price
			}
			assert.Equal(t, draft.order.TotalPrice, sum)
		})
	}
}

type placeFixture struct {
	store     *memStore
	publisher *recordingPublisher
	cache     *memCartCache
	svc       *Service
	userID    uuid.UUID
}

func newPlaceFixture() *placeFixture {
	f := &placeFixture{
		store:     newMemStore(),
		publisher: &recordingPublisher{},
		cache:     newMemCartCache(),
		userID:    uuid.New(),
	}
	f.svc = NewService(f.store, f.publisher, f.cache)
	return f
}

func Test_OrderService_PlaceOrder_Success(t *testing.T) {
	// given
	f := newPlaceFixture()
	widget := f.store.addProduct("Widget", 1000, 5)
	gadget := f.store.addProduct("Gadget", 250, 10)
	f.store.addToCart(f.userID, widget, 2)
	f.store.addToCart(f.userID, gadget, 4)
	f.cache.entries[f.userID] = []byte(`{"items":[]}`)

	// when
	order, err := f.svc.PlaceOrder(context.Background(), f.userID, PlaceOrderDto{ShippingAddress: ptr("  1 Main St  ")})

	// then
	require.NoError(t, err)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(3000), order.TotalPrice)
	assert.Equal(t, "1 Main St", *order.ShippingAddress)
	assert.True(t, order.CanBeCancelled)
	require.Len(t, order.Items, 2)
	var sum int64
	for _, item := range order.Items {
		sum += item.LineTotal
		assert.Equal(t, item.UnitPrice*int64(item.Quantity), item.LineTotal)
	}
	assert.Equal(t, order.TotalPrice, sum)

	assert.Equal(t, int32(3), f.store.stockOf(widget))
	assert.Equal(t, int32(6), f.store.stockOf(gadget))
	assert.Zero(t, f.store.cartSize(f.userID))
	assert.NotContains(t, f.cache.entries, f.userID)

	published := f.publisher.published()
	require.Len(t, published, 1)
	created, ok := published[0].(events.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, order.ID, created.OrderID)
	assert.Equal(t, int64(3000), created.TotalPrice)
	assert.Len(t, created.Lines, 2)
}

func Test_OrderService_PlaceOrder_Rejected(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(f *placeFixture)
		wantErr  error
		wantName string
	}{
		{
			name:    "empty cart",
			setup:   func(f *placeFixture) {},
			wantErr: apperrors.ErrEmptyCart,
		},
		{
			name: "insufficient stock",
			setup: func(f *placeFixture) {
				id := f.store.addProduct("Lamp", 4000, 1)
				f.store.addToCart(f.userID, id, 2)
			},
			wantErr:  apperrors.ErrInsufficientStock,
			wantName: "Lamp",
		},
		{
			name: "stock taken after lines were read",
			setup: func(f *placeFixture) {
				id := f.store.addProduct("Chair", 9000, 3)
				f.store.addToCart(f.userID, id, 3)
				f.store.beforeReserve = func(m *memStore) {
					p := m.products[id]
					p.StockQuantity = 1
					m.products[id] = p
				}
			},
			wantErr:  apperrors.ErrInsufficientStock,
			wantName: "Chair",
		},
		{
			name: "order insert fails",
			setup: func(f *placeFixture) {
				id := f.store.addProduct("Desk", 20000, 3)
				f.store.addToCart(f.userID, id, 1)
				f.store.failOn = "create"
			},
			wantErr: apperrors.ErrCreateOrder,
		},
		{
			name: "cart cleanup fails after reservation",
			setup: func(f *placeFixture) {
				id := f.store.addProduct("Desk", 20000, 3)
				f.store.addToCart(f.userID, id, 1)
				f.store.failOn = "clear"
			},
			wantErr: apperrors.ErrClearCart,
		},
		{
			name: "commit fails",
			setup: func(f *placeFixture) {
				id := f.store.addProduct("Desk", 20000, 3)
				f.store.addToCart(f.userID, id, 2)
				f.store.failOn = "commit"
			},
			wantErr: apperrors.ErrTransactionCommit,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newPlaceFixture()
			tc.setup(f)
			before := f.store.state()

			// when
			order, err := f.svc.PlaceOrder(context.Background(), f.userID, PlaceOrderDto{})

			// then
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, order)
			if tc.wantName != "" {
				var stockErr *apperrors.InsufficientStockError
				require.ErrorAs(t, err, &stockErr)
				assert.Equal(t, tc.wantName, stockErr.ProductName)
			}
			assert.True(t, f.store.sameState(before), "store must be unchanged")
			assert.Zero(t, f.store.orderCount())
			assert.Empty(t, f.publisher.published())
			assert.Zero(t, f.cache.deletes)
		})
	}
}

func Test_OrderService_PlaceOrder_SideEffectFailuresDoNotFail(t *testing.T) {
	// given
	f := newPlaceFixture()
	id := f.store.addProduct("Widget", 1000, 5)
	f.store.addToCart(f.userID, id, 1)
	f.publisher.err = errors.New("broker down")
	f.cache.err = errors.New("redis down")

	// when
	order, err := f.svc.PlaceOrder(context.Background(), f.userID, PlaceOrderDto{ShippingAddress: ptr("   ")})

	// then
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddress)
	assert.Equal(t, 1, f.store.orderCount())
	assert.Equal(t, int32(4), f.store.stockOf(id))
}

func Test_OrderService_PlaceOrder_SnapshotSurvivesCatalogChanges(t *testing.T) {
	// given
	f := newPlaceFixture()
	id := f.store.addProduct("Widget", 1000, 5)
	f.store.addToCart(f.userID, id, 2)
	placed, err := f.svc.PlaceOrder(context.Background(), f.userID, PlaceOrderDto{})
	require.NoError(t, err)

	// when
	f.store.setPrice(id, "Widget Pro", 5000)
	found, err := f.svc.FindByID(context.Background(), f.userID, false, placed.ID)

	// then
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Widget", found.Items[0].ProductName)
	assert.Equal(t, int64(1000), found.Items[0].UnitPrice)
	assert.Equal(t, int64(2000), found.TotalPrice)
}

func Test_OrderService_PlaceOrder_ConcurrentBuyersNeverOversell(t *testing.T) {
	// given
	f := newPlaceFixture()
	id := f.store.addProduct("Limited", 100, 5)
	const buyers = 10
	users := make([]uuid.UUID, buyers)
	for i := range users {
		users[i] = uuid.New()
		f.store.addToCart(users[i], id, 1)
	}

	// when
	var wg sync.WaitGroup
	var mu sync.Mutex
	var placed, rejected int
	for _, userID := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(context.Background(), userID, PlaceOrderDto{})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				placed++
			} else if errors.Is(err, apperrors.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	// then
	assert.Equal(t, 5, placed)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, int32(0), f.store.stockOf(id))
	assert.Equal(t, 5, f.store.orderCount())
}

func Test_OrderService_FindByID(t *testing.T) {
	f := newPlaceFixture()
	id := f.store.addProduct("Widget", 1000, 5)
	f.store.addToCart(f.userID, id, 1)
	placed, err := f.svc.PlaceOrder(context.Background(), f.userID, PlaceOrderDto{})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		userID  uuid.UUID
		isAdmin bool
		orderID uuid.UUID
		wantErr error
	}{
		{name: "owner", userID: f.userID, orderID: placed.ID},
		{name: "admin", userID: uuid.New(), isAdmin: true, orderID: placed.ID},
		{name: "someone else", userID: uuid.New(), orderID: placed.ID, wantErr: apperrors.ErrOrderNotFound},
		{name: "unknown order", userID: f.userID, orderID: uuid.New(), wantErr: apperrors.ErrOrderNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			order, err := f.svc.FindByID(context.Background(), tc.userID, tc.isAdmin, tc.orderID)

			// then
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, order)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, placed.ID, order.ID)
			assert.Len(t, order.Items, 1)
		})
	}
}

func Test_OrderService_FindOrders(t *testing.T) {
	// given
	f := newPlaceFixture()
	other := uuid.New()
	id := f.store.addProduct("Widget", 1000, 50)
	for range 3 {
		f.store.addToCart(f.userID, id, 1)
		_, err := f.svc.PlaceOrder(context.Background(), f.userID, PlaceOrderDto{})
		require.NoError(t, err)
	}
	f.store.addToCart(other, id, 1)
	_, err := f.svc.PlaceOrder(context.Background(), other, PlaceOrderDto{})
	require.NoError(t, err)

	t.Run("user orders are paged", func(t *testing.T) {
		page, err := f.svc.FindUserOrders(context.Background(), f.userID, nil, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Orders, 2)
		for _, o := range page.Orders {
			assert.Equal(t, f.userID, o.UserID)
			assert.Len(t, o.Items, 1)
		}
	})

	t.Run("all orders filtered by user", func(t *testing.T) {
		page, err := f.svc.FindAllOrders(context.Background(), OrdersQuery{UserID: &other, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("all orders filtered by status", func(t *testing.T) {
		page, err := f.svc.FindAllOrders(context.Background(), OrdersQuery{Status: ptr(StatusShipped), Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, page.Total)
		assert.Empty(t, page.Orders)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		_, err := f.svc.FindAllOrders(context.Background(), OrdersQuery{Status: ptr("lost"), Limit: 10})
		require.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})
}

func Test_OrderService_UpdateStatus(t *testing.T) {
	testCases := []struct {
		name       string
		current    string
		next       string
		wantErr    error
		wantEvents int
	}{
		{name: "pending to shipped", current: StatusPending, next: StatusShipped, wantEvents: 1},
		{name: "same status is a no-op", current: StatusProcessing, next: StatusProcessing},
		{name: "unknown status", current: StatusPending, next: "lost", wantErr: apperrors.ErrInvalidStatus},
		{name: "delivered can be reopened", current: StatusDelivered, next: StatusPending, wantEvents: 1},
		{name: "cancelled can be shipped", current: StatusCancelled, next: StatusShipped, wantEvents: 1},
		{name: "cancelled to cancelled is a no-op", current: StatusCancelled, next: StatusCancelled},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newPlaceFixture()
			order := db.Order{ID: uuid.New(), UserID: f.userID, Status: tc.current, TotalPrice: 100, Version: 1}
			f.store.orders[order.ID] = order

			// when
			updated, err := f.svc.UpdateStatus(context.Background(), order.ID, tc.next)

			// then
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.current, f.store.orders[order.ID].Status)
				assert.Empty(t, f.publisher.published())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.next, updated.Status)
			published := f.publisher.published()
			require.Len(t, published, tc.wantEvents)
			if tc.wantEvents > 0 {
				changed, ok := published[0].(events.OrderStatusChangedEvent)
				require.True(t, ok)
				assert.Equal(t, tc.current, changed.OldStatus)
				assert.Equal(t, tc.next, changed.NewStatus)
			}
		})
	}

	t.Run("unknown order", func(t *testing.T) {
		f := newPlaceFixture()
		_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), StatusShipped)
		require.ErrorIs(t, err, apperrors.ErrOrderNotFound)
	})
}
