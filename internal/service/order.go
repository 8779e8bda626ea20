// Package service provides the order placement workflow and the order, cart and catalog business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/store/db"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// OrderService defines the methods for placing and managing orders.
type OrderService interface {
	// PlaceOrder converts the user's cart into a pending order, reserving stock and
	// emptying the cart in one transaction.
	// Returns ErrEmptyCart or an InsufficientStockError without changing anything.
	PlaceOrder(ctx context.Context, userID uuid.UUID, dto PlaceOrderDto) (*OrderDto, error)

	// FindByID retrieves a single order. Callers that are not admins only see their own
	// orders; any other order is reported as ErrOrderNotFound.
	FindByID(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*OrderDto, error)

	// FindUserOrders returns a page of the user's orders, newest first.
	FindUserOrders(ctx context.Context, userID uuid.UUID, status *string, offset, limit int32) (*OrderPage, error)

	// FindAllOrders returns a page of all orders, optionally filtered by user and status.
	FindAllOrders(ctx context.Context, query OrdersQuery) (*OrderPage, error)

	// UpdateStatus sets the status of an order.
	// Returns ErrOrderNotFound or ErrInvalidStatus.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDto, error)
}

// CartInvalidator drops cached cart views.
type CartInvalidator interface {
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Service implements OrderService.
type Service struct {
	orderStore      store.OrderStore
	publisher       messaging.Publisher
	cartCache       CartInvalidator
	tracer          trace.Tracer
	ordersCounter   metric.Int64Counter
	rejectedCounter metric.Int64Counter
}

// NewService creates a new instance of OrderService.
func NewService(orderStore store.OrderStore, publisher messaging.Publisher, cartCache CartInvalidator) *Service {
	meter := otel.Meter("storefront/orders")
	ordersCounter, err := meter.Int64Counter("orders_created", metric.WithDescription("Total number of created orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	rejectedCounter, err := meter.Int64Counter("orders_rejected", metric.WithDescription("Order placements rejected, by reason"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_rejected counter: %v", err))
	}
	return &Service{
		orderStore:      orderStore,
		publisher:       publisher,
		cartCache:       cartCache,
		tracer:          otel.Tracer("storefront/orders"),
		ordersCounter:   ordersCounter,
		rejectedCounter: rejectedCounter,
	}
}

// PlaceOrderDto is the body of an order placement.
type PlaceOrderDto struct {
	ShippingAddress *string `json:"shippingAddress" validate:"omitempty,max=1000"`
}

// OrderDto represents the data transfer object for an order.
type OrderDto struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"userId"`
	Status          string         `json:"status"`
	TotalPrice      int64          `json:"totalPrice"`
	ShippingAddress *string        `json:"shippingAddress"`
	CanBeCancelled  bool           `json:"canBeCancelled"`
	Version         int32          `json:"version"`
	CreatedAt       *time.Time     `json:"createdAt"`
	UpdatedAt       *time.Time     `json:"updatedAt"`
	Items           []OrderItemDto `json:"items"`
}

// OrderItemDto is an order line as it was at purchase time.
type OrderItemDto struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	UnitPrice   int64     `json:"unitPrice"`
	Quantity    int32     `json:"quantity"`
	LineTotal   int64     `json:"lineTotal"`
}

// OrdersQuery selects a page of orders.
type OrdersQuery struct {
	UserID *uuid.UUID
	Status *string
	Offset int32
	Limit  int32
}

type OrderPage struct {
	Orders []OrderDto
	Total  int64
}

// UpdateStatusDto is the body of an order status change.
type UpdateStatusDto struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, dto PlaceOrderDto) (*OrderDto, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	shippingAddress := normalizeAddress(dto.ShippingAddress)

	var created *db.Order
	var items []db.OrderItem
	err := s.orderStore.WithinOrderTx(ctx, func(tx store.OrderTx) error {
		lines, err := tx.LockCartLines(ctx, userID)
		if err != nil {
			return err
		}
		draft, err := newOrderDraft(userID, lines, shippingAddress)
		if err != nil {
			return err
		}
		created, items, err = tx.CreateOrder(ctx, draft.order, draft.items)
		if err != nil {
			return err
		}
		for _, item := range draft.items {
			if err := tx.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, apperrors.ErrInsufficientStock) {
					return &apperrors.InsufficientStockError{
						ProductID:   item.ProductID,
						ProductName: item.ProductName,
						Available:   draft.stock[item.ProductID],
						Requested:   item.Quantity,
					}
				}
				return err
			}
		}
		return tx.ClearCart(ctx, userID)
	})
	if err != nil {
		reason := rejectionReason(err)
		s.rejectedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
		span.SetStatus(codes.Error, reason)
		if reason == "error" {
			span.RecordError(err)
			slog.ErrorContext(ctx, "Order placement failed", "user_id", userID, "error", err)
		} else {
			slog.WarnContext(ctx, "Order placement rejected", "user_id", userID, "reason", err.Error())
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", created.ID.String()), attribute.Int64("order.total", created.TotalPrice))
	s.ordersCounter.Add(ctx, 1)
	s.afterPlaced(ctx, created, items)

	return toDto(created, items), nil
}

// afterPlaced runs the side effects of a committed order. Failures are logged only:
// the order exists at this point and must be reported as placed.
func (s *Service) afterPlaced(ctx context.Context, order *db.Order, items []db.OrderItem) {
	if err := s.cartCache.Delete(ctx, order.UserID); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate cart cache", "user_id", order.UserID, "error", err)
	}

	lines := make([]events.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, events.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	event := events.OrderCreatedEvent{
		Carrier:    traceCarrier(ctx),
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Lines:      lines,
		CreatedAt:  derefTime(order.CreatedAt),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "order_id", order.ID, "error", err)
	}
}

func (s *Service) FindByID(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*OrderDto, error) {
	order, items, err := s.orderStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, apperrors.ErrOrderNotFound
	}
	return toDto(order, items), nil
}

func (s *Service) FindUserOrders(ctx context.Context, userID uuid.UUID, status *string, offset, limit int32) (*OrderPage, error) {
	return s.findOrders(ctx, OrdersQuery{UserID: &userID, Status: status, Offset: offset, Limit: limit})
}

func (s *Service) FindAllOrders(ctx context.Context, query OrdersQuery) (*OrderPage, error) {
	return s.findOrders(ctx, query)
}

func (s *Service) findOrders(ctx context.Context, query OrdersQuery) (*OrderPage, error) {
	if query.Status != nil && !IsValidStatus(*query.Status) {
		return nil, apperrors.ErrInvalidStatus
	}
	orders, total, err := s.orderStore.FindOrders(ctx, store.OrderFilter{
		UserID: query.UserID,
		Status: query.Status,
		Offset: query.Offset,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := s.orderStore.FindItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	page := &OrderPage{Orders: make([]OrderDto, 0, len(orders)), Total: total}
	for i := range orders {
		page.Orders = append(page.Orders, *toDto(&orders[i], items[orders[i].ID]))
	}
	return page, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*OrderDto, error) {
	if !IsValidStatus(status) {
		return nil, apperrors.ErrInvalidStatus
	}
	previous, updated, err := s.orderStore.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	items, err := s.orderStore.FindItemsByOrderIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}

	if previous != updated.Status {
		event := events.OrderStatusChangedEvent{
			Carrier:   traceCarrier(ctx),
			OrderID:   updated.ID,
			UserID:    updated.UserID,
			OldStatus: previous,
			NewStatus: updated.Status,
			ChangedAt: derefTime(updated.UpdatedAt),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish OrderStatusChangedEvent", "order_id", updated.ID, "error", err)
		}
	}
	return toDto(updated, items[id]), nil
}

// rejectionReason classifies a placement failure for metrics.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, apperrors.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "error"
	}
}

// normalizeAddress treats a blank address as absent.
func normalizeAddress(address *string) *string {
	if address == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*address)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func traceCarrier(ctx context.Context) map[string]string {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Now().UTC()
	}
	return *t
}

// toDto converts a db.Order and its lines to an OrderDto.
func toDto(order *db.Order, items []db.OrderItem) *OrderDto {
	dto := &OrderDto{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status,
		TotalPrice:      order.TotalPrice,
		ShippingAddress: order.ShippingAddress,
		CanBeCancelled:  canBeCancelled(order.Status),
		Version:         order.Version,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Items:           make([]OrderItemDto, 0, len(items)),
	}
	for _, item := range items {
		dto.Items = append(dto.Items, OrderItemDto{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.PricePerItem,
			Quantity:    item.Quantity,
			LineTotal:   item.Price,
		})
	}
	return dto
}
