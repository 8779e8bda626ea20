// Package store provides the persistence interfaces for orders, carts and products
// and their PostgreSQL implementations.
package store

import (
	"context"
	"time"

	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
)

// CartLine is a cart row joined with the current state of its product.
type CartLine struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	Quantity    int32
	ProductName string
	UnitPrice   int64
	Stock       int32
	CreatedAt   *time.Time
}

// OrderFilter selects a page of orders. Nil fields do not filter.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *string
	Offset int32
	Limit  int32
}

// OrderTx is the unit of work of an order placement. Every call runs in the same
// database transaction; nothing is visible to other sessions before it commits.
type OrderTx interface {
	// LockCartLines returns the user's cart lines with their products in the order they
	// were added, holding row locks on both until the transaction ends.
	LockCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error)

	// CreateOrder inserts the order header and its lines.
	CreateOrder(ctx context.Context, order db.CreateOrderParams, items []db.CreateOrderItemParams) (*db.Order, []db.OrderItem, error)

	// ReserveStock decrements the stock of a product by quantity.
	// Returns ErrInsufficientStock when the product has less than quantity left.
	ReserveStock(ctx context.Context, productID uuid.UUID, quantity int32) error

	// ClearCart deletes every cart line of the user.
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// OrderStore is an interface for order storage operations.
type OrderStore interface {
	// WithinOrderTx runs fn in a transaction. The transaction commits when fn returns nil
	// and rolls back otherwise; fn's error is returned unchanged.
	WithinOrderTx(ctx context.Context, fn func(tx OrderTx) error) error

	// FindByID retrieves a single order with its lines.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*db.Order, []db.OrderItem, error)

	// FindOrders returns a page of orders, newest first, and the total number of matches.
	FindOrders(ctx context.Context, filter OrderFilter) ([]db.Order, int64, error)

	// FindItemsByOrderIDs returns the lines of the given orders grouped by order id.
	FindItemsByOrderIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]db.OrderItem, error)

	// UpdateStatus locks the order and sets the new status. Setting the current status
	// leaves the row untouched. It returns the status before and the order after the update.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (string, *db.Order, error)
}

// CartStore is an interface for shopping cart storage operations.
type CartStore interface {
	ListLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error)

	// AddItem adds quantity of a product to the cart, merging with an existing line.
	// Returns ErrProductNotFound or an InsufficientStockError when the merged quantity exceeds the stock.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*db.CartItem, error)

	// SetQuantity replaces the quantity of a cart line owned by the user.
	// Returns ErrCartItemNotFound or an InsufficientStockError.
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int32) (*db.CartItem, error)

	// RemoveItem deletes a cart line owned by the user. Returns ErrCartItemNotFound.
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error

	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProductStore is an interface for catalog storage operations.
type ProductStore interface {
	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*db.Product, error)

	// FindProducts returns a page of products and the total number of matches.
	FindProducts(ctx context.Context, filter ProductFilter) ([]db.Product, int64, error)

	// FindFeatured returns up to limit featured products, newest first.
	FindFeatured(ctx context.Context, limit int32) ([]db.Product, error)

	// Categories lists the distinct non-empty categories in alphabetical order.
	Categories(ctx context.Context) ([]string, error)

	Create(ctx context.Context, params db.CreateProductParams) (*db.Product, error)

	// Update applies params if the stored version still equals params.Version.
	// Returns ErrProductNotFound or ErrOptimisticLock.
	Update(ctx context.Context, params db.UpdateProductParams) (*db.Product, error)

	// Delete removes a product together with the cart lines holding it. Order lines keep
	// their snapshot. Returns ErrProductNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Product sort keys understood by FindProducts. Anything else sorts newest first.
const (
	ProductSortCreated = "created"
	ProductSortPrice   = "price"
	ProductSortName    = "name"
	ProductSortStock   = "stock"
)

// ProductFilter selects a page of the catalog. Search matches name or description, case-insensitively.
type ProductFilter struct {
	Category *string
	Search   *string
	Featured *bool
	SortBy   string
	SortDesc bool
	Offset   int32
	Limit    int32
}
