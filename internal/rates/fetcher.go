package rates

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bakhtovar-dev/backend-paxta/internal/obs"
)

// SourceFallback marks values that come from the built-in constants rather
// than a live page.
const SourceFallback = "fallback"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var (
	aIndexRe  = regexp.MustCompile(`(?i)(?:Cotlook\s+)?A Index[:\s]*(\d+\.\d+)`)
	decimalRe = regexp.MustCompile(`\d+[.,]\d+`)
	usdRe     = regexp.MustCompile(`(?i)(?:USD|Доллар США|доллар|\$)[:\s]*(\d+[.,]\d+)`)
)

// Result is the outcome of a single rate fetch. Fetches never fail outright:
// when the live source is unreachable or unparsable the fallback constant is
// returned with Source set to "fallback".
type Result struct {
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	Message   string    `json:"message,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fallback reports whether the value came from the built-in constant.
func (r Result) Fallback() bool { return r.Source == SourceFallback }

// FetcherConfig configures the outbound scraping client.
type FetcherConfig struct {
	CottonIndexURL       string
	ExchangeRateURL      string
	Timeout              time.Duration
	FallbackQuotation    float64
	FallbackExchangeRate float64
	Logger               zerolog.Logger
}

// Fetcher scrapes the Cotlook A Index and the TJS/USD exchange rate from
// their public pages.
type Fetcher struct {
	client               *resty.Client
	cottonIndexURL       string
	exchangeRateURL      string
	fallbackQuotation    float64
	fallbackExchangeRate float64
	log                  zerolog.Logger
	now                  func() time.Time
}

// NewFetcher builds a fetcher with an instrumented resty client.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetTransport(otelhttp.NewTransport(http.DefaultTransport))

	return &Fetcher{
		client:               client,
		cottonIndexURL:       cfg.CottonIndexURL,
		exchangeRateURL:      cfg.ExchangeRateURL,
		fallbackQuotation:    cfg.FallbackQuotation,
		fallbackExchangeRate: cfg.FallbackExchangeRate,
		log:                  cfg.Logger,
		now:                  time.Now,
	}
}

// FetchCottonIndex returns the current Cotlook A Index quotation in US cents
// per pound, or the fallback constant when the page cannot be read.
func (f *Fetcher) FetchCottonIndex(ctx context.Context) Result {
	res := f.fetchCottonIndex(ctx)
	f.observe("cotton_index", res)
	return res
}

func (f *Fetcher) fetchCottonIndex(ctx context.Context) Result {
	doc, err := f.fetchDocument(ctx, f.cottonIndexURL)
	if err != nil {
		f.log.Warn().Err(err).Str("url", f.cottonIndexURL).Msg("cotton index fetch failed")
		return f.fallback(f.fallbackQuotation, "could not fetch live data, using fallback value")
	}
	if value, ok := extractAIndex(doc); ok {
		return Result{Value: value, Source: hostOf(f.cottonIndexURL), FetchedAt: f.now()}
	}
	f.log.Warn().Str("url", f.cottonIndexURL).Msg("cotton index not found on page")
	return f.fallback(f.fallbackQuotation, "could not fetch live data, using fallback value")
}

// FetchExchangeRate returns the current TJS per USD rate, or the fallback
// constant when the page cannot be read.
func (f *Fetcher) FetchExchangeRate(ctx context.Context) Result {
	res := f.fetchExchangeRate(ctx)
	f.observe("exchange_rate", res)
	return res
}

func (f *Fetcher) fetchExchangeRate(ctx context.Context) Result {
	doc, err := f.fetchDocument(ctx, f.exchangeRateURL)
	if err != nil {
		f.log.Warn().Err(err).Str("url", f.exchangeRateURL).Msg("exchange rate fetch failed")
		return f.fallback(f.fallbackExchangeRate, "could not fetch live data, using fallback value")
	}
	if value, ok := extractUSDRate(doc); ok {
		return Result{Value: value, Source: hostOf(f.exchangeRateURL), FetchedAt: f.now()}
	}
	f.log.Warn().Str("url", f.exchangeRateURL).Msg("usd rate not found on page")
	return f.fallback(f.fallbackExchangeRate, "could not fetch live data, using fallback value")
}

func (f *Fetcher) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := f.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, err
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &statusError{code: resp.StatusCode(), url: url}
	}
	return goquery.NewDocumentFromReader(body)
}

func (f *Fetcher) fallback(value float64, message string) Result {
	return Result{Value: value, Source: SourceFallback, Message: message, FetchedAt: f.now()}
}

func (f *Fetcher) observe(rate string, res Result) {
	if obs.RateFetchTotal != nil {
		obs.RateFetchTotal.WithLabelValues(rate, res.Source).Inc()
	}
}

// extractAIndex searches the page text for an "A Index" quotation.
func extractAIndex(doc *goquery.Document) (float64, bool) {
	var found float64
	var ok bool
	doc.Find(".cotlook-index, .index-value, .a-index, .cotton-price").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if !strings.Contains(text, "A Index") {
			return true
		}
		if m := decimalRe.FindString(text); m != "" {
			found, ok = parseDecimal(m)
			return !ok
		}
		return true
	})
	if ok {
		return found, true
	}
	if m := aIndexRe.FindStringSubmatch(doc.Find("body").Text()); m != nil {
		return parseDecimal(m[1])
	}
	return 0, false
}

// extractUSDRate looks for a dollar row in rate tables first, then currency
// blocks, then the page text as a whole.
func extractUSDRate(doc *goquery.Document) (float64, bool) {
	var found float64
	var ok bool
	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := strings.TrimSpace(row.Text())
		if !mentionsDollar(text) {
			return true
		}
		if m := decimalRe.FindString(text); m != "" {
			found, ok = parseDecimal(m)
			return !ok
		}
		return true
	})
	if ok {
		return found, true
	}
	doc.Find(".currency, .exchange-rate, .kurs, .course, .valute").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		text := strings.TrimSpace(block.Text())
		if !mentionsDollar(text) {
			return true
		}
		if m := decimalRe.FindString(text); m != "" {
			found, ok = parseDecimal(m)
			return !ok
		}
		return true
	})
	if ok {
		return found, true
	}
	if m := usdRe.FindStringSubmatch(doc.Find("body").Text()); m != nil {
		return parseDecimal(m[1])
	}
	return 0, false
}

func mentionsDollar(text string) bool {
	return strings.Contains(text, "USD") ||
		strings.Contains(text, "Доллар") ||
		strings.Contains(text, "доллар")
}

func parseDecimal(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func hostOf(url string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	trimmed = strings.TrimPrefix(trimmed, "www.")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.code) + " from " + e.url
}
