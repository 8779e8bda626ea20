package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/service"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	service  service.ProductService
	validate *validator.Validate
	paging   config.PaginationConfig
	logger   *slog.Logger
}

func NewProductHandler(service service.ProductService, paging config.PaginationConfig, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		paging:   paging,
		logger:   logger.With("component", "rest_product"),
	}
}

// RegisterRoutes registers the public catalog reads and the admin writes.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindProducts)
		r.Get("/featured", h.FindFeatured)
		r.Get("/categories", h.Categories)
		r.Get("/{id}", h.FindByID)
		r.Group(func(r chi.Router) {
			r.Use(authn, web.RequireRole(web.RoleAdmin, h.logger))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *ProductHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	product, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondProductError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{"product": product})
}

func (h *ProductHandler) FindProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	page, ok := web.ParsePage(r, w, mLogger, h.paging.DefaultLimit, h.paging.MaxLimit)
	if !ok {
		return
	}
	query, ok := parseProductQuery(w, r, mLogger)
	if !ok {
		return
	}
	query.Offset, query.Limit = page.Offset(), page.Limit
	list, err := h.service.FindProducts(r.Context(), query)
	if err != nil {
		h.respondProductError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{
		"products":   list.Products,
		"pagination": web.NewPagination(page, list.Total),
	})
}

// FindFeatured lists featured products; `limit` defaults to 10.
func (h *ProductHandler) FindFeatured(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	limit, ok := web.ParseOptionalGt(r, w, mLogger, "limit", 0, featuredLimit)
	if !ok {
		return
	}
	if h.paging.MaxLimit > 0 && int(limit) > h.paging.MaxLimit {
		limit = int32(h.paging.MaxLimit)
	}
	products, err := h.service.FindFeatured(r.Context(), limit)
	if err != nil {
		h.respondProductError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{"products": products})
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.respondProductError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "", map[string]any{"categories": categories})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	var dto service.CreateProductDto
	if !web.DecodeJSON(w, r, mLogger, &dto) {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondValidationError(w, mLogger, err)
		return
	}
	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.respondProductError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusCreated, "Product created successfully", map[string]any{"product": created})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.UpdateProductDto
	if !web.DecodeJSON(w, r, mLogger, &dto) {
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		web.RespondValidationError(w, mLogger, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.respondProductError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "Product updated successfully", map[string]any{"product": updated})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := withReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondProductError(w, r, mLogger, err)
		return
	}
	web.RespondData(w, mLogger, http.StatusOK, "Product deleted successfully", nil)
}

const featuredLimit = 10

// productSortKeys maps the accepted sortBy values to store sort keys.
var productSortKeys = map[string]string{
	"createdAt":      store.ProductSortCreated,
	"created_at":     store.ProductSortCreated,
	"price":          store.ProductSortPrice,
	"name":           store.ProductSortName,
	"stockQuantity":  store.ProductSortStock,
	"stock_quantity": store.ProductSortStock,
}

// parseProductQuery reads category, search, featured, sortBy and sortOrder (asc|desc, default desc).
func parseProductQuery(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.ProductQuery, bool) {
	q := r.URL.Query()
	query := service.ProductQuery{SortBy: store.ProductSortCreated, SortDesc: true}
	if c := q.Get("category"); c != "" {
		query.Category = &c
	}
	if s := strings.TrimSpace(q.Get("search")); s != "" {
		query.Search = &s
	}
	if q.Get("featured") == "true" {
		featured := true
		query.Featured = &featured
	}
	if raw := q.Get("sortBy"); raw != "" {
		key, ok := productSortKeys[raw]
		if !ok {
			web.RespondError(w, logger, http.StatusBadRequest, "Invalid sortBy: "+raw)
			return service.ProductQuery{}, false
		}
		query.SortBy = key
	}
	switch strings.ToLower(q.Get("sortOrder")) {
	case "", "desc":
	case "asc":
		query.SortDesc = false
	default:
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid sortOrder: "+q.Get("sortOrder"))
		return service.ProductQuery{}, false
	}
	return query, true
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrProductNotFound):
		web.RespondError(w, logger, http.StatusNotFound, "Product not found")
	case errors.Is(err, apperrors.ErrOptimisticLock):
		web.RespondError(w, logger, http.StatusConflict, "Product has been modified by another user")
	default:
		logger.ErrorContext(r.Context(), "Product operation failed", "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, web.MsgInternalError)
	}
}
