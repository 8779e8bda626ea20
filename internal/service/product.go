package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
)

// ProductService defines the catalog operations.
type ProductService interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)
	FindProducts(ctx context.Context, query ProductQuery) (*ProductPage, error)
	// FindFeatured returns up to limit featured products, newest first.
	FindFeatured(ctx context.Context, limit int32) ([]ProductDto, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, dto CreateProductDto) (*ProductDto, error)
	// Update replaces a product if dto.Version matches the stored version.
	// Orders placed before the update keep their snapshot of name and price.
	Update(ctx context.Context, id uuid.UUID, dto UpdateProductDto) (*ProductDto, error)
	// Delete removes a product and any cart lines holding it. Placed orders are untouched.
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productStore store.ProductStore
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productStore store.ProductStore) ProductService {
	return &productService{productStore: productStore}
}

type ProductDto struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Price         int64      `json:"price"`
	StockQuantity int32      `json:"stockQuantity"`
	Featured      bool       `json:"featured"`
	Version       int32      `json:"version"`
	CreatedAt     *time.Time `json:"createdAt"`
}

type ProductPage struct {
	Products []ProductDto
	Total    int64
}

// ProductQuery selects a page of the catalog. SortBy is one of the store.ProductSort* keys.
type ProductQuery struct {
	Category *string
	Search   *string
	Featured *bool
	SortBy   string
	SortDesc bool
	Offset   int32
	Limit    int32
}

type CreateProductDto struct {
	Name          string `json:"name" validate:"required,min=3,max=100"`
	Description   string `json:"description" validate:"max=2000"`
	Category      string `json:"category" validate:"max=100"`
	Price         int64  `json:"price" validate:"gte=0"`
	StockQuantity int32  `json:"stockQuantity" validate:"gte=0"`
	Featured      bool   `json:"featured"`
}

type UpdateProductDto struct {
	Name          string `json:"name" validate:"required,min=3,max=100"`
	Description   string `json:"description" validate:"max=2000"`
	Category      string `json:"category" validate:"max=100"`
	Price         int64  `json:"price" validate:"gte=0"`
	StockQuantity int32  `json:"stockQuantity" validate:"gte=0"`
	Featured      bool   `json:"featured"`
	Version       int32  `json:"version" validate:"gte=1"`
}

func (s *productService) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.productStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductDto(product), nil
}

func (s *productService) FindProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	products, total, err := s.productStore.FindProducts(ctx, store.ProductFilter{
		Category: query.Category,
		Search:   query.Search,
		Featured: query.Featured,
		SortBy:   query.SortBy,
		SortDesc: query.SortDesc,
		Offset:   query.Offset,
		Limit:    query.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: toProductDtos(products), Total: total}, nil
}

func (s *productService) FindFeatured(ctx context.Context, limit int32) ([]ProductDto, error) {
	products, err := s.productStore.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toProductDtos(products), nil
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	return s.productStore.Categories(ctx)
}

func (s *productService) Create(ctx context.Context, dto CreateProductDto) (*ProductDto, error) {
	product, err := s.productStore.Create(ctx, db.CreateProductParams{
		Name:          dto.Name,
		Description:   dto.Description,
		Category:      dto.Category,
		Price:         dto.Price,
		StockQuantity: dto.StockQuantity,
		Featured:      dto.Featured,
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Product created", "product_id", product.ID)
	return toProductDto(product), nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, dto UpdateProductDto) (*ProductDto, error) {
	product, err := s.productStore.Update(ctx, db.UpdateProductParams{
		ID:            id,
		Name:          dto.Name,
		Description:   dto.Description,
		Category:      dto.Category,
		Price:         dto.Price,
		StockQuantity: dto.StockQuantity,
		Featured:      dto.Featured,
		Version:       dto.Version,
	})
	if err != nil {
		return nil, err
	}
	return toProductDto(product), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Product deleted", "product_id", id)
	return nil
}

func toProductDtos(products []db.Product) []ProductDto {
	dtos := make([]ProductDto, 0, len(products))
	for i := range products {
		dtos = append(dtos, *toProductDto(&products[i]))
	}
	return dtos
}

func toProductDto(p *db.Product) *ProductDto {
	return &ProductDto{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Featured:      p.Featured,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
	}
}
