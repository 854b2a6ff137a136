package export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bakhtovar-dev/backend-paxta/internal/calc"
	"github.com/bakhtovar-dev/backend-paxta/internal/common"
	"github.com/bakhtovar-dev/backend-paxta/internal/obs"
)

// CalculationSource loads saved calculations for export.
type CalculationSource interface {
	Get(ctx context.Context, id string) (*calc.View, error)
	URLFor(id string) string
}

// Handler renders saved calculations in downloadable formats.
type Handler struct {
	source CalculationSource
	logger zerolog.Logger
}

// NewHandler constructs the export handler.
func NewHandler(source CalculationSource, logger zerolog.Logger) *Handler {
	return &Handler{source: source, logger: logger}
}

// Mount registers the export routes on a calculation router that already
// carries the {id} parameter.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/{id}/export/text", h.Text)
	r.Get("/{id}/export/pdf", h.PDF)
	r.Get("/{id}/export/xlsx", h.XLSX)
	r.Get("/{id}/qr", h.QR)
}

// Text returns the plain-text report.
func (h *Handler) Text(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	h.observe("text")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(v.Title, "txt"))
	_, _ = w.Write([]byte(Text(v)))
}

// PDF returns the printable report.
func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := PDF(v, &buf); err != nil {
		h.logger.Error().Err(err).Str("calculation_id", v.ID).Msg("render pdf")
		common.WriteAppError(w, err)
		return
	}
	h.observe("pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment(v.Title, "pdf"))
	_, _ = w.Write(buf.Bytes())
}

// XLSX returns the workbook export.
func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := XLSX(v, &buf); err != nil {
		h.logger.Error().Err(err).Str("calculation_id", v.ID).Msg("render xlsx")
		common.WriteAppError(w, err)
		return
	}
	h.observe("xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(v.Title, "xlsx"))
	_, _ = w.Write(buf.Bytes())
}

// QR returns a PNG QR code pointing at the calculation's public URL.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	v, ok := h.load(w, r)
	if !ok {
		return
	}
	png, err := QR(h.source.URLFor(v.ID))
	if err != nil {
		h.logger.Error().Err(err).Str("calculation_id", v.ID).Msg("render qr")
		common.WriteAppError(w, err)
		return
	}
	h.observe("qr")
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*calc.View, bool) {
	id := chi.URLParam(r, "id")
	v, err := h.source.Get(r.Context(), id)
	if err != nil {
		common.WriteAppError(w, err)
		return nil, false
	}
	return v, true
}

func (h *Handler) observe(format string) {
	if obs.ExportsTotal != nil {
		obs.ExportsTotal.WithLabelValues(format).Inc()
	}
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]`)

func attachment(title, ext string) string {
	name := unsafeFilename.ReplaceAllString(translit(title), "_")
	if name == "" {
		name = "calculation"
	}
	return fmt.Sprintf(`attachment; filename="%s.%s"`, name, ext)
}
