package service

import (
	"context"
	"log/slog"

	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/google/uuid"
)

// CartCache stores rendered cart views per user.
type CartCache interface {
	CartInvalidator
	// Get loads the cached view of the user's cart into dst and reports whether it was found.
	Get(ctx context.Context, userID uuid.UUID, dst any) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, v any) error
}

// CartService defines the shopping cart operations.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDto, error)
	// AddItem adds a product to the cart, merging with an existing line for the same product.
	AddItem(ctx context.Context, userID uuid.UUID, dto AddCartItemDto) (*CartItemDto, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, dto UpdateCartItemDto) (*CartItemDto, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartStore store.CartStore
	cache     CartCache
}

// NewCartService creates a new instance of CartService.
func NewCartService(cartStore store.CartStore, cache CartCache) CartService {
	return &cartService{cartStore: cartStore, cache: cache}
}

type AddCartItemDto struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int32     `json:"quantity" validate:"required,min=1,max=10000"`
}

type UpdateCartItemDto struct {
	Quantity int32 `json:"quantity" validate:"required,min=1,max=10000"`
}

// CartItemDto is a cart line priced at the current catalog price.
type CartItemDto struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	UnitPrice   int64     `json:"unitPrice,omitempty"`
	Quantity    int32     `json:"quantity"`
	LineTotal   int64     `json:"lineTotal,omitempty"`
	InStock     bool      `json:"inStock"`
}

type CartDto struct {
	Items      []CartItemDto `json:"items"`
	TotalPrice int64         `json:"totalPrice"`
	TotalItems int32         `json:"totalItems"`
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartDto, error) {
	var cached CartDto
	found, err := s.cache.Get(ctx, userID, &cached)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read cart cache", "user_id", userID, "error", err)
	}
	if found {
		return &cached, nil
	}

	lines, err := s.cartStore.ListLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart := toCartDto(lines)
	if err := s.cache.Set(ctx, userID, cart); err != nil {
		slog.WarnContext(ctx, "Failed to write cart cache", "user_id", userID, "error", err)
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, dto AddCartItemDto) (*CartItemDto, error) {
	item, err := s.cartStore.AddItem(ctx, userID, dto.ProductID, dto.Quantity)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return toCartItemDto(item), nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, dto UpdateCartItemDto) (*CartItemDto, error) {
	item, err := s.cartStore.SetQuantity(ctx, userID, itemID, dto.Quantity)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return toCartItemDto(item), nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.cartStore.RemoveItem(ctx, userID, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartStore.Clear(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *cartService) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate cart cache", "user_id", userID, "error", err)
	}
}

func toCartDto(lines []store.CartLine) *CartDto {
	cart := &CartDto{Items: make([]CartItemDto, 0, len(lines))}
	for _, line := range lines {
		lineTotal := line.UnitPrice * int64(line.Quantity)
		cart.Items = append(cart.Items, CartItemDto{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
			InStock:     line.Quantity <= line.Stock,
		})
		cart.TotalPrice += lineTotal
		cart.TotalItems += line.Quantity
	}
	return cart
}

func toCartItemDto(item *db.CartItem) *CartItemDto {
	return &CartItemDto{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		InStock:   true,
	}
}
