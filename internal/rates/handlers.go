package rates

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bakhtovar-dev/backend-paxta/internal/common"
)

// Handler exposes the cached market rates over HTTP.
type Handler struct {
	refresher *Refresher
}

// NewHandler constructs the rates handler.
func NewHandler(refresher *Refresher) *Handler {
	return &Handler{refresher: refresher}
}

// Routes mounts the rate endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/cotton-index", h.CottonIndex)
	r.Get("/exchange-rate", h.ExchangeRate)
	return r
}

// CottonIndex returns the current Cotlook A Index quotation.
// Pass ?refresh=1 to bypass the cache and fetch live.
func (h *Handler) CottonIndex(w http.ResponseWriter, r *http.Request) {
	res := h.refresher.CottonIndex(r.Context(), forceRefresh(r))
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

// ExchangeRate returns the current TJS per USD rate.
// Pass ?refresh=1 to bypass the cache and fetch live.
func (h *Handler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	res := h.refresher.ExchangeRate(r.Context(), forceRefresh(r))
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

func forceRefresh(r *http.Request) bool {
	switch r.URL.Query().Get("refresh") {
	case "1", "true":
		return true
	default:
		return false
	}
}
