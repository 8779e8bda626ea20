package service

import (
	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
)

// orderDraft is an order computed from locked cart lines, not yet persisted.
type orderDraft struct {
	order db.CreateOrderParams
	items []db.CreateOrderItemParams
	// stock is the stock of each product as read under lock.
	stock map[uuid.UUID]int32
}

// newOrderDraft snapshots the cart lines at current catalog prices. It stops at the
// first line whose quantity exceeds the stock.
func newOrderDraft(userID uuid.UUID, lines []store.CartLine, shippingAddress *string) (*orderDraft, error) {
	if len(lines) == 0 {
		return nil, apperrors.ErrEmptyCart
	}
	draft := &orderDraft{
		items: make([]db.CreateOrderItemParams, 0, len(lines)),
		stock: make(map[uuid.UUID]int32, len(lines)),
	}
	var total int64
	for _, line := range lines {
		if line.Quantity > line.Stock {
			return nil, &apperrors.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Available:   line.Stock,
				Requested:   line.Quantity,
			}
		}
		lineTotal := line.UnitPrice * int64(line.Quantity)
		draft.items = append(draft.items, db.CreateOrderItemParams{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			PricePerItem: line.UnitPrice,
			Quantity:     line.Quantity,
			Price:        lineTotal,
		})
		draft.stock[line.ProductID] = line.Stock
		total += lineTotal
	}
	draft.order = db.CreateOrderParams{
		UserID:          userID,
		Status:          StatusPending,
		TotalPrice:      total,
		ShippingAddress: shippingAddress,
	}
	return draft, nil
}
