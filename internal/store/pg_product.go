package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ ProductStore = (*PgProductStore)(nil)

type PgProductStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

func NewPgProductStore(dbp *pgxpool.Pool) *PgProductStore {
	return &PgProductStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

func (p *PgProductStore) FindByID(ctx context.Context, id uuid.UUID) (*db.Product, error) {
	product, err := findProduct(ctx, p.q, id)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *PgProductStore) FindProducts(ctx context.Context, filter ProductFilter) ([]db.Product, int64, error) {
	search := likePattern(filter.Search)
	var products []db.Product
	var total int64
	txErr := withTransaction(ctx, p.db, p.q, func(qtx *db.Queries) error {
		var err error
		total, err = qtx.CountProducts(ctx, db.CountProductsParams{
			Category: filter.Category,
			Search:   search,
			Featured: filter.Featured,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToFindProduct, err)
		}
		products, err = qtx.FindProducts(ctx, db.FindProductsParams{
			Category: filter.Category,
			Search:   search,
			Featured: filter.Featured,
			SortBy:   filter.SortBy,
			SortDesc: filter.SortDesc,
			Off:      filter.Offset,
			Lim:      filter.Limit,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrFailedToFindProduct, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, 0, txErr
	}
	return products, total, nil
}

func (p *PgProductStore) FindFeatured(ctx context.Context, limit int32) ([]db.Product, error) {
	products, err := p.q.FindFeaturedProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFindProduct, err)
	}
	return products, nil
}

func (p *PgProductStore) Categories(ctx context.Context) ([]string, error) {
	categories, err := p.q.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToFindProduct, err)
	}
	return categories, nil
}

func (p *PgProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := p.q.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrDeleteProduct, err)
	}
	if rows == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

// likePattern escapes the ILIKE wildcards of a user supplied search term.
func likePattern(search *string) *string {
	if search == nil {
		return nil
	}
	escaped := likeEscaper.Replace(*search)
	return &escaped
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (p *PgProductStore) Create(ctx context.Context, params db.CreateProductParams) (*db.Product, error) {
	product, err := p.q.CreateProduct(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSaveProduct, err)
	}
	return &product, nil
}

func (p *PgProductStore) Update(ctx context.Context, params db.UpdateProductParams) (*db.Product, error) {
	var product db.Product
	txErr := withTransaction(ctx, p.db, p.q, func(qtx *db.Queries) error {
		var err error
		product, err = qtx.UpdateProduct(ctx, params)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %w", apperrors.ErrSaveProduct, err)
		}
		// no row matched: either the product is gone or its version moved on
		if _, err := findProduct(ctx, qtx, params.ID); err != nil {
			return err
		}
		return apperrors.ErrOptimisticLock
	})
	if txErr != nil {
		return nil, txErr
	}
	return &product, nil
}
