package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ OrderStore = (*PgStore)(nil)

type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

func (p *PgStore) WithinOrderTx(ctx context.Context, fn func(tx OrderTx) error) error {
	return withTransaction(ctx, p.db, p.q, func(qtx *db.Queries) error {
		return fn(&pgOrderTx{q: qtx})
	})
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*db.Order, []db.OrderItem, error) {
	order, err := p.q.FindOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFindOrder, err)
	}
	items, err := p.q.FindOrderItemsByOrderID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFindOrderItems, err)
	}
	return &order, items, nil
}

func (p *PgStore) FindOrders(ctx context.Context, filter OrderFilter) ([]db.Order, int64, error) {
	var orders []db.Order
	var total int64
	// one snapshot for the page and the count
	txErr := withTransaction(ctx, p.db, p.q, func(qtx *db.Queries) error {
		var err error
		total, err = qtx.CountOrders(ctx, db.CountOrdersParams{UserID: filter.UserID, Status: filter.Status})
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToFindOrders, err)
		}
		orders, err = qtx.FindOrders(ctx, db.FindOrdersParams{
			UserID: filter.UserID,
			Status: filter.Status,
			Off:    filter.Offset,
			Lim:    filter.Limit,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToFindOrders, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, 0, txErr
	}
	return orders, total, nil
}

func (p *PgStore) FindItemsByOrderIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]db.OrderItem, error) {
	grouped := make(map[uuid.UUID][]db.OrderItem, len(ids))
	if len(ids) == 0 {
		return grouped, nil
	}
	items, err := p.q.FindOrderItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFindOrderItems, err)
	}
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}

func (p *PgStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (string, *db.Order, error) {
	var previous string
	var updated db.Order
	txErr := withTransaction(ctx, p.db, p.q, func(qtx *db.Queries) error {
		current, err := qtx.FindOrderByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrOrderNotFound
			}
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToFindOrder, err)
		}
		previous = current.Status
		if current.Status == status {
			updated = current
			return nil
		}
		updated, err = qtx.UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{ID: id, Status: status})
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrUpdateOrder, err)
		}
		return nil
	})
	if txErr != nil {
		return "", nil, txErr
	}
	return previous, &updated, nil
}

// pgOrderTx implements OrderTx on queries bound to an open transaction.
type pgOrderTx struct {
	q *db.Queries
}

func (t *pgOrderTx) LockCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := t.q.ListCartLinesForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrLockCart, err)
	}
	lines := make([]CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, CartLine{
			ID:          row.ID,
			ProductID:   row.ProductID,
			Quantity:    row.Quantity,
			ProductName: row.ProductName,
			UnitPrice:   row.ProductPrice,
			Stock:       row.ProductStock,
			CreatedAt:   row.CreatedAt,
		})
	}
	// Rows come back in product id order so concurrent placements lock in the same order.
	slices.SortStableFunc(lines, compareCartOrder)
	return lines, nil
}

// compareCartOrder orders cart lines by the time they were added, then by line id.
func compareCartOrder(a, b CartLine) int {
	var at, bt time.Time
	if a.CreatedAt != nil {
		at = *a.CreatedAt
	}
	if b.CreatedAt != nil {
		bt = *b.CreatedAt
	}
	if c := at.Compare(bt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func (t *pgOrderTx) CreateOrder(ctx context.Context, params db.CreateOrderParams, items []db.CreateOrderItemParams) (*db.Order, []db.OrderItem, error) {
	order, err := t.q.CreateOrder(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrCreateOrder, err)
	}
	orderItems := make([]db.OrderItem, 0, len(items))
	for _, item := range items {
		item.OrderID = order.ID
		orderItem, err := t.q.CreateOrderItem(ctx, item)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrCreateOrderItem, err)
		}
		orderItems = append(orderItems, orderItem)
	}
	return &order, orderItems, nil
}

func (t *pgOrderTx) ReserveStock(ctx context.Context, productID uuid.UUID, quantity int32) error {
	affected, err := t.q.ReserveStock(ctx, db.ReserveStockParams{ID: productID, Quantity: quantity})
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrReserveStock, err)
	}
	if affected == 0 {
		return apperrors.ErrInsufficientStock
	}
	return nil
}

func (t *pgOrderTx) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if _, err := t.q.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrClearCart, err)
	}
	return nil
}
