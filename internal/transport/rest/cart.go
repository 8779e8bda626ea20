package rest

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	service  service.CartService
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCartHandler(service service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest_cart"),
	}
}

func (h *CartHandler) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.Clear)
			r.Post("/items", h.AddItem)
			r.Put("/items/{id}", h.UpdateItem)
			r.Delete("/items/{id}", h.RemoveItem)
		})
	})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}
	cart, err := h.service.GetCart(r.Context(), identity.UserID)
	if err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{"cart": cart})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.AddCartItemDto
	if !web.DecodeJSON(w, r, mLogger, &dto) {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondValidationError(w, mLogger, err)
		return
	}
	item, err := h.service.AddItem(r.Context(), identity.UserID, dto)
	if err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusCreated, "Item added to cart", map[string]any{"item": item})
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	itemID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.UpdateCartItemDto
	if !web.DecodeJSON(w, r, mLogger, &dto) {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondValidationError(w, mLogger, err)
		return
	}
	item, err := h.service.UpdateItem(r.Context(), identity.UserID, itemID, dto)
	if err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "Cart updated", map[string]any{"item": item})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	itemID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.RemoveItem(r.Context(), identity.UserID, itemID); err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	identity, ok := web.GetIdentity(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.Clear(r.Context(), identity.UserID); err != nil {
		h.respondCartError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "Cart cleared", nil)
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrProductNotFound):
		web.RespondError(w, logger, http.StatusNotFound, "Product not found")
	case errors.Is(err, apperrors.ErrCartItemNotFound):
		web.RespondError(w, logger, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, apperrors.ErrInsufficientStock):
		logger.WarnContext(r.Context(), "Cart change over stock", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Insufficient stock available")
	default:
		logger.ErrorContext(r.Context(), "Cart operation failed", "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, web.MsgInternalError)
	}
}
