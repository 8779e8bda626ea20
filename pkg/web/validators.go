package web

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// ParseOptionalGt reads an optional integer query parameter that must be greater than value.
// A missing parameter yields def.
func ParseOptionalGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, value int64, def int32) (int32, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || !gt(value)(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int32(intValue), true
}

// PageParams are the validated page and limit query parameters.
type PageParams struct {
	Page  int32
	Limit int32
}

// Offset is the number of rows to skip, saturated at math.MaxInt32.
func (p PageParams) Offset() int32 {
	return int32(min(p.offset(), math.MaxInt32))
}

func (p PageParams) offset() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// ParsePage reads `page` (default 1) and `limit` (default defLimit, capped at maxLimit).
func ParsePage(r *http.Request, w http.ResponseWriter, logger *slog.Logger, defLimit, maxLimit int) (PageParams, bool) {
	page, ok := ParseOptionalGt(r, w, logger, "page", 0, 1)
	if !ok {
		return PageParams{}, false
	}
	limit, ok := ParseOptionalGt(r, w, logger, "limit", 0, int32(defLimit))
	if !ok {
		return PageParams{}, false
	}
	if maxLimit > 0 && int(limit) > maxLimit {
		limit = int32(maxLimit)
	}
	params := PageParams{Page: page, Limit: limit}
	if params.offset() > math.MaxInt32 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid page number: %d", page))
		return PageParams{}, false
	}
	return params, true
}

// ParseOptionalUUID reads an optional uuid query parameter.
func ParseOptionalUUID(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", key, raw))
		return nil, false
	}
	return &id, true
}

// Pagination is the page block attached to list responses.
type Pagination struct {
	CurrentPage  int32 `json:"currentPage"`
	TotalPages   int32 `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int32 `json:"itemsPerPage"`
}

func NewPagination(p PageParams, total int64) Pagination {
	var pages int64
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Pagination{
		CurrentPage:  p.Page,
		TotalPages:   int32(pages),
		TotalItems:   total,
		ItemsPerPage: p.Limit,
	}
}
