package calc

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/bakhtovar-dev/backend-paxta/internal/common"
)

// Handler exposes calculation endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		service:  cfg.Service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create handles POST /api/v1/calculations.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "calculation service not configured", nil)
		return
	}
	input, ok := h.decode(w, r)
	if !ok {
		return
	}
	c, url, err := h.service.Save(r.Context(), input)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"id":    c.ID,
			"title": c.Title,
			"url":   url,
		},
	})
}

// Preview handles POST /api/v1/calculations/preview: pricing and
// aggregation without persistence.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "calculation service not configured", nil)
		return
	}
	input, ok := h.decode(w, r)
	if !ok {
		return
	}
	view, err := h.service.Preview(input)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// List handles GET /api/v1/calculations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "calculation service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	rows, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	if rows == nil {
		rows = []Summary{}
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       rows,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/calculations/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "calculation service not configured", nil)
		return
	}
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// decode parses and shape-validates the request body. Domain rules (year
// range, batch code pattern, capacity) are enforced by the draft replay.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CalculationInput, bool) {
	var input CalculationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid JSON body", nil)
		return CalculationInput{}, false
	}
	if err := h.validate.Struct(input); err != nil {
		details := map[string]string{}
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			for _, fe := range verrs {
				details[fe.Namespace()] = fe.Tag()
			}
		}
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidation, "request body is invalid", details)
		return CalculationInput{}, false
	}
	return input, true
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
