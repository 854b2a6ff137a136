package export

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bakhtovar-dev/backend-paxta/internal/calc"
	"github.com/bakhtovar-dev/backend-paxta/internal/common"
	"github.com/bakhtovar-dev/backend-paxta/internal/grade"
	"github.com/bakhtovar-dev/backend-paxta/internal/pricing"
)

func fixtureView() *calc.View {
	created := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	quotationDate := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	rate := 10.95

	samples := []calc.Sample{
		{
			ID: "s1", BatchID: "b1", Quantity: 6,
			ColorGrade: grade.ColorSM, LeafGrade: 1, StapleLength: 34,
			Weight: 600, PremiumDiscount: 4.05, UnitPrice: 1728.13, Amount: 1036.88,
		},
		{
			ID: "s2", BatchID: "b1", Quantity: 4,
			ColorGrade: grade.ColorMID, LeafGrade: 3, StapleLength: 33,
			Weight: 400, PremiumDiscount: -1.35, UnitPrice: 1613.25, Amount: 645.30,
		},
	}
	batch := calc.Batch{
		ID: "b1", Year: 2024, Code: "123/45",
		Weight: 1000, BalesCount: 20, SamplesCount: 10,
		Samples: samples,
	}
	bv := calc.BatchView{Batch: batch, Stats: pricing.BatchStats(batch.PricedSamples())}

	c := calc.Calculation{Batches: []calc.Batch{batch}}
	return &calc.View{
		ID:            "11111111-2222-3333-4444-555555555555",
		Title:         "Расчет от 15.03.2024 10:30",
		CreatedAt:     created,
		Quotation:     80,
		QuotationDate: &quotationDate,
		DollarRate:    &rate,
		Batches:       []calc.BatchView{bv},
		Totals:        pricing.CalculationStats(c.BatchTotals()),
	}
}

func TestTextReport(t *testing.T) {
	report := Text(fixtureView())

	assert.True(t, strings.HasPrefix(report, "РАСЧЕТ ПАРТИЙ ХЛОПКА\n"))
	assert.Contains(t, report, "Название: Расчет от 15.03.2024 10:30")
	assert.Contains(t, report, "Дата создания: 15.03.2024 10:30")
	assert.Contains(t, report, "Дата котировки: 14.03.2024")
	assert.Contains(t, report, "Котировка ЛХБ: 80 центов за фунт")
	assert.Contains(t, report, "Курс доллара: 10.95 сомони")

	assert.Contains(t, report, "Всего партий: 1")
	assert.Contains(t, report, "Общий вес: 1 000 кг")
	assert.Contains(t, report, "Всего кип: 20")
	assert.Contains(t, report, "Всего проб: 10")

	assert.Contains(t, report, "ПАРТИЯ 123/45 (2024)")
	assert.Contains(t, report, "Общее количество отобранных проб: 10")
	assert.Contains(t, report, "Кол-во | Сорт по цвету")
	assert.Contains(t, report, "Итоги по партии:")
	assert.Contains(t, report, "Общий вес проб: 1000.00 кг")
}

func TestTextReportEmptyBatch(t *testing.T) {
	v := fixtureView()
	v.Batches[0].Samples = nil
	v.Batches[0].Stats = pricing.BatchSummary{}

	report := Text(v)
	assert.Contains(t, report, "Нет добавленных проб")
	assert.NotContains(t, report, "Итоги по партии:")
}

func TestPDFRenders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(fixtureView(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestXLSXRenders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(fixtureView(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Сводка")
	assert.Contains(t, sheets, "Партия 123-45")

	title, err := f.GetCellValue("Сводка", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Расчет от 15.03.2024 10:30", title)
}

func TestQREncodesPNG(t *testing.T) {
	png, err := QR("http://localhost:8080/calculations/abc")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestTranslit(t *testing.T) {
	assert.Equal(t, "Raschet ot 15.03.2024", translit("Расчет от 15.03.2024"))
	assert.Equal(t, "khlopok", translit("хлопок"))
}

type fakeSource struct {
	view *calc.View
}

func (f *fakeSource) Get(_ context.Context, id string) (*calc.View, error) {
	if f.view == nil || f.view.ID != id {
		return nil, common.NotFoundError("calculation not found")
	}
	return f.view, nil
}

func (f *fakeSource) URLFor(id string) string {
	return "http://localhost:8080/calculations/" + id
}

func newTestRouter(src CalculationSource) http.Handler {
	r := chi.NewRouter()
	NewHandler(src, zerolog.Nop()).Mount(r)
	return r
}

func TestExportEndpoints(t *testing.T) {
	view := fixtureView()
	router := newTestRouter(&fakeSource{view: view})

	get := func(t *testing.T, path string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("text", func(t *testing.T) {
		rec := get(t, "/"+view.ID+"/export/text")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".txt")
		assert.Contains(t, rec.Body.String(), "РАСЧЕТ ПАРТИЙ ХЛОПКА")
	})

	t.Run("pdf", func(t *testing.T) {
		rec := get(t, "/"+view.ID+"/export/pdf")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := get(t, "/"+view.ID+"/export/xlsx")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	})

	t.Run("qr", func(t *testing.T) {
		rec := get(t, "/"+view.ID+"/qr")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := get(t, "/00000000-0000-0000-0000-000000000000/export/text")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), common.CodeNotFound)
	})
}
