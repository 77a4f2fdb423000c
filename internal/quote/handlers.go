package quote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pricing/internal/common"
	"github.com/noah-isme/backend-pricing/internal/obs"
)

// Handler exposes the quote endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Create handles POST /api/v1/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return
	}
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, badRequest("invalid JSON body", err))
		return
	}
	q, err := h.service.Quote(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.Annotate(r.Context(), "quote_id", q.ID)
	common.Data(w, http.StatusCreated, q)
}

// Merge handles POST /api/v1/quotes/merge.
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return
	}
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, badRequest("invalid JSON body", err))
		return
	}
	obs.Annotate(r.Context(), "merge_strategy", req.Strategy)
	q, err := h.service.Merge(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.Annotate(r.Context(), "quote_id", q.ID)
	common.Data(w, http.StatusCreated, q)
}

// Get handles GET /api/v1/quotes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "quote service not configured", nil)
		return
	}
	q, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		var syntaxErr *json.SyntaxError
		if appErr.Details == nil && errors.As(appErr.Err, &syntaxErr) {
			appErr = appErr.WithDetails(map[string]any{"offset": syntaxErr.Offset})
		}
		common.WriteError(w, appErr)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "quote not found", nil)
	case isPricingError(err):
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeUnprocessable, err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
