package store

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ CartStore = (*PgCartStore)(nil)

type PgCartStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

func NewPgCartStore(dbp *pgxpool.Pool) *PgCartStore {
	return &PgCartStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

func (p *PgCartStore) ListLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	rows, err := p.q.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFindCart, err)
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
	return lines, nil
}

func (p *PgCartStore) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*db.CartItem, error) {
	var item db.CartItem
	txErr := withTransaction(ctx, p.db, p.q, func(qtx *db.Queries) error {
		product, err := findProduct(ctx, qtx, productID)
		if err != nil {
			return err
		}
		item, err = qtx.UpsertCartItem(ctx, db.UpsertCartItemParams{UserID: userID, ProductID: productID, Quantity: quantity})
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrSaveCartItem, err)
		}
		return checkStock(product, item.Quantity)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &item, nil
}

func (p *PgCartStore) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int32) (*db.CartItem, error) {
	var item db.CartItem
	txErr := withTransaction(ctx, p.db, p.q, func(qtx *db.Queries) error {
		current, err := qtx.FindCartItem(ctx, db.FindCartItemParams{ID: itemID, UserID: userID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrCartItemNotFound
			}
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToFindCart, err)
		}
		product, err := findProduct(ctx, qtx, current.ProductID)
		if err != nil {
			return err
		}
		if err := checkStock(product, quantity); err != nil {
			return err
		}
		item, err = qtx.UpdateCartItemQuantity(ctx, db.UpdateCartItemQuantityParams{ID: itemID, UserID: userID, Quantity: quantity})
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrSaveCartItem, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &item, nil
}

func (p *PgCartStore) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	affected, err := p.q.DeleteCartItem(ctx, db.DeleteCartItemParams{ID: itemID, UserID: userID})
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSaveCartItem, err)
	}
	if affected == 0 {
		return apperrors.ErrCartItemNotFound
	}
	return nil
}

func (p *PgCartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := p.q.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrClearCart, err)
	}
	return nil
}

func findProduct(ctx context.Context, q *db.Queries, id uuid.UUID) (db.Product, error) {
	product, err := q.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product, apperrors.ErrProductNotFound
		}
		return product, fmt.Errorf("%w: %w", apperrors.ErrFailedToFindProduct, err)
	}
	return product, nil
}

func checkStock(product db.Product, quantity int32) error {
	if quantity > product.StockQuantity {
		return &apperrors.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   quantity,
		}
	}
	return nil
}
