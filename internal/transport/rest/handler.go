// Package rest provides HTTP handlers for orders, carts, the catalog and probes.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.OrderService
	validate *validator.Validate
	paging   config.PaginationConfig
	logger   *slog.Logger
}

// NewHandler creates a new order handler with the provided service.
func NewHandler(service service.OrderService, paging config.PaginationConfig, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		paging:   paging,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the order routes behind authn.
func (h *Handler) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	adminOnly := web.RequireRole(web.RoleAdmin, h.logger)
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", h.FindUserOrders)
			r.Post("/", h.PlaceOrder)
			r.Get("/{id}", h.FindByID)
			r.With(adminOnly).Put("/{id}/status", h.UpdateStatus)
		})
		r.With(adminOnly).Get("/api/v1/admin/orders", h.FindAllOrders)
	})
}

// PlaceOrder turns the caller's cart into an order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.PlaceOrderDto
	if !web.DecodeJSON(w, r, mLogger, &dto) {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondValidationError(w, mLogger, err)
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to place order", "user_id", identity.UserID)
	order, err := h.service.PlaceOrder(r.Context(), identity.UserID, dto)
	if err != nil {
		var stockErr *apperrors.InsufficientStockError
		switch {
		case errors.Is(err, apperrors.ErrEmptyCart):
			web.RespondError(w, mLogger, http.StatusBadRequest, "Cart is empty")
		case errors.As(err, &stockErr):
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Insufficient stock for %s", stockErr.ProductName))
		default:
			mLogger.ErrorContext(r.Context(), "Error placing order", "user_id", identity.UserID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, web.MsgInternalError)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order created successfully", slog.String("ID", order.ID.String()))
	web.RespondData(w, mLogger, http.StatusCreated, "Order created successfully", map[string]any{"order": order})
}

// FindByID retrieves an order by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find order by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), identity.UserID, identity.IsAdmin(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, "Order not found")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, web.MsgInternalError)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{"order": found})
}

// FindUserOrders lists the caller's orders, newest first.
func (h *Handler) FindUserOrders(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}
	page, ok := web.ParsePage(r, w, mLogger, h.paging.DefaultLimit, h.paging.MaxLimit)
	if !ok {
		return
	}
	status, ok := h.parseStatus(w, r, mLogger)
	if !ok {
		return
	}

	list, err := h.service.FindUserOrders(r.Context(), identity.UserID, status, page.Offset(), page.Limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving order list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, web.MsgInternalError)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved order list", "count", len(list.Orders))
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{
		"orders":     list.Orders,
		"pagination": web.NewPagination(page, list.Total),
	})
}

// FindAllOrders lists every order. Admin only.
func (h *Handler) FindAllOrders(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.ParsePage(r, w, mLogger, h.paging.AdminDefaultLimit, h.paging.MaxLimit)
	if !ok {
		return
	}
	status, ok := h.parseStatus(w, r, mLogger)
	if !ok {
		return
	}
	userID, ok := web.ParseOptionalUUID(r, w, mLogger, "userId")
	if !ok {
		return
	}

	list, err := h.service.FindAllOrders(r.Context(), service.OrdersQuery{
		UserID: userID,
		Status: status,
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving order list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, web.MsgInternalError)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{
		"orders":     list.Orders,
		"pagination": web.NewPagination(page, list.Total),
	})
}

// UpdateStatus changes the status of an order. Admin only.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.UpdateStatusDto
	if !web.DecodeJSON(w, r, mLogger, &dto) {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondValidationError(w, mLogger, err)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, dto.Status)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrOrderNotFound):
			mLogger.WarnContext(r.Context(), "Order not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, "Order not found")
		case errors.Is(err, apperrors.ErrInvalidStatus):
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid order status")
		default:
			mLogger.ErrorContext(r.Context(), "Error updating order", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, web.MsgInternalError)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order status updated", "ID", id, "status", updated.Status)
	web.RespondData(w, mLogger, http.StatusOK, "Order status updated", map[string]any{"order": updated})
}

func (h *Handler) parseStatus(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*string, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, true
	}
	if !service.IsValidStatus(raw) {
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid order status")
		return nil, false
	}
	return &raw, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	return withReqID(h.logger, r)
}

func withReqID(logger *slog.Logger, r *http.Request) *slog.Logger {
	return logger.With("request_id", middleware.GetReqID(r.Context()))
}
