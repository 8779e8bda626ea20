// Package errors holds the sentinel errors shared by the store, service and transport layers.
package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty")
var ErrInsufficientStock = errors.New("insufficient stock")

var ErrCreateOrder = errors.New("failed to create order")
var ErrCreateOrderItem = errors.New("failed to create order item")
var ErrReserveStock = errors.New("failed to reserve stock")
var ErrClearCart = errors.New("failed to clear cart")
var ErrLockCart = errors.New("failed to lock cart lines")

var ErrOrderNotFound = errors.New("order not found")
var ErrFailedToFindOrder = errors.New("failed to find order")
var ErrFailedToFindOrders = errors.New("failed to find orders")
var ErrFailedToFindOrderItems = errors.New("failed to find order items")
var ErrUpdateOrder = errors.New("failed to update order")
var ErrInvalidStatus = errors.New("invalid order status")

var ErrProductNotFound = errors.New("product not found")
var ErrFailedToFindProduct = errors.New("failed to find product")
var ErrSaveProduct = errors.New("failed to save product")
var ErrDeleteProduct = errors.New("failed to delete product")
var ErrOptimisticLock = errors.New("optimistic lock error: the record has been modified by another transaction")

var ErrCartItemNotFound = errors.New("cart item not found")
var ErrFailedToFindCart = errors.New("failed to find cart")
var ErrSaveCartItem = errors.New("failed to save cart item")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")

var ErrAccessDenied = errors.New("access denied")

// InsufficientStockError names the line that could not be satisfied.
// errors.Is(err, ErrInsufficientStock) holds for it.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
