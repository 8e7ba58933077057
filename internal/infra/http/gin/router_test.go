package ginserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"travelquote/internal/app/commands"
	"travelquote/internal/app/dto"
	quotehandlers "travelquote/internal/app/handlers/quotes"
	"travelquote/internal/app/queries"
	quotesapp "travelquote/internal/app/quotes"
	"travelquote/internal/domain/providers"
	"travelquote/internal/domain/quote"
	"travelquote/internal/domain/shared/money"
	ginserver "travelquote/internal/infra/http/gin"
	"travelquote/internal/infra/obs"
	"travelquote/internal/infra/storage/memory"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var now = time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

type harness struct {
	router *gin.Engine
	ids    []quote.ID
}

func newHarness(t *testing.T, checks map[string]obs.Check) *harness {
	t.Helper()
	repo := memory.NewQuoteRepository()
	saved, err := repo.SaveAll(context.Background(), []*quote.Quote{
		{ProviderID: "safetrip", Reference: "st-1", Premium: money.Must(4200, "USD"), ValidUntil: now.Add(time.Hour), Status: quote.StatusPending},
		{ProviderID: "safetrip", Reference: "st-2", Premium: money.Must(5100, "USD"), ValidUntil: now.Add(time.Hour), Status: quote.StatusPending},
	})
	require.NoError(t, err)

	reg, err := providers.NewRegistry(
		providers.Config{ID: "safetrip", Enabled: true, Source: providers.SourceStorage},
		providers.Config{ID: "legacy", Enabled: false, Source: providers.SourceStorage},
	)
	require.NoError(t, err)
	engine := quotesapp.NewEngine(quotesapp.EngineConfig{
		Providers: reg,
		Store:     repo,
		UoW:       memory.Factory{QuotesRepo: repo, OutboxRepo: memory.NewOutbox()},
		Currency:  "USD",
		Clock:     func() time.Time { return now },
	})
	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	quotehandlers.Register(cmdBus, queryBus, engine, reg)

	router := ginserver.NewRouter(obs.Middleware{}, obs.HealthHandlers{Checks: checks}, ginserver.Handlers{
		Quotes:    ginserver.QuoteHandler{Commands: cmdBus, Queries: queryBus, Currency: "USD"},
		Pricing:   ginserver.PricingHandler{Queries: queryBus, Currency: "USD"},
		Providers: ginserver.ProviderHandler{Queries: queryBus},
	})
	ids := make([]quote.ID, 0, len(saved))
	for _, q := range saved {
		ids = append(ids, q.ID)
	}
	return &harness{router: router, ids: ids}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestStreamQuotes(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(t, http.MethodGet, "/api/v1/quotes", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	require.Equal(t, 2, strings.Count(body, "event:quote"))
	require.Contains(t, body, `"reference":"st-1"`)
	require.Contains(t, body, "event:done")
	require.Contains(t, body, `{"count":2}`)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProviderQuote(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodGet, "/api/v1/quotes/providers/safetrip", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.Quote](t, w)
	require.Equal(t, "st-1", got.Reference)
	require.Equal(t, dto.Money{AmountMinor: 4200, Currency: "USD", Display: "42.00"}, got.Premium)

	for _, id := range []string{"legacy", "nobody"} {
		w = h.do(t, http.MethodGet, "/api/v1/quotes/providers/"+id, "")
		require.Equal(t, http.StatusNotFound, w.Code, id)
	}
}

func TestSelectQuote(t *testing.T) {
	h := newHarness(t, nil)
	path := "/api/v1/quotes/" + h.ids[0].String() + "/select"

	w := h.do(t, http.MethodPost, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "SELECTED", decode[dto.Quote](t, w).Status)

	w = h.do(t, http.MethodPost, path, "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, decode[map[string]string](t, w)["error"], "invalid status transition")

	w = h.do(t, http.MethodGet, "/api/v1/quotes/providers/safetrip", "")
	require.Equal(t, "SELECTED", decode[dto.Quote](t, w).Status)

	require.Equal(t, http.StatusNotFound, h.do(t, http.MethodPost, "/api/v1/quotes/999/select", "").Code)
	require.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPost, "/api/v1/quotes/abc/select", "").Code)
}

func TestRejectQuote(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(t, http.MethodPost, "/api/v1/quotes/"+h.ids[1].String()+"/reject", `{"reason":"too expensive"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "REJECTED", decode[dto.Quote](t, w).Status)
}

func TestStatistics(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/v1/quotes/"+h.ids[0].String()+"/select", "").Code)

	w := h.do(t, http.MethodGet, "/api/v1/quotes/statistics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, dto.Statistics{Total: 2, Selected: 1, Pending: 1}, decode[dto.Statistics](t, w))
}

const weekTrip = `{"coverage":"domestic","trip_type":"single","start_date":"2026-03-01","end_date":"2026-03-07","cover":"individual","travelers":1}`

func TestPremiumPreview(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodPost, "/api/v1/pricing/premium", `{"base_price_minor":10000,"trip":`+weekTrip+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.PremiumPreview](t, w)
	require.Equal(t, int64(10000), got.Premium.AmountMinor)
	require.Equal(t, "USD", got.Premium.Currency)
	require.Equal(t, 7, got.Days)

	cases := map[string]string{
		"no travelers": `{"base_price_minor":10000,"trip":{"start_date":"2026-03-01","end_date":"2026-03-07","travelers":0}}`,
		"bad date":     `{"base_price_minor":10000,"trip":{"start_date":"first of march","end_date":"2026-03-07","travelers":1}}`,
		"missing trip": `{"base_price_minor":10000}`,
		"negative":     `{"base_price_minor":-1,"trip":` + weekTrip + `}`,
	}
	for name, body := range cases {
		w := h.do(t, http.MethodPost, "/api/v1/pricing/premium", body)
		require.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestIssueQuote(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodPost, "/api/v1/quotes", `{"provider_id":"safetrip","reference":"web-9","base_price_minor":10000,"trip":`+weekTrip+`}`)
	require.Equal(t, http.StatusCreated, w.Code)
	got := decode[dto.Quote](t, w)
	require.NotZero(t, got.ID)
	require.Equal(t, "PENDING", got.Status)

	w = h.do(t, http.MethodGet, "/api/v1/quotes/statistics", "")
	require.Equal(t, int64(3), decode[dto.Statistics](t, w).Total)

	w = h.do(t, http.MethodPost, "/api/v1/quotes", `{"provider_id":"legacy","base_price_minor":10000,"trip":`+weekTrip+`}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListProviders(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(t, http.MethodGet, "/api/v1/providers", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string][]dto.Provider](t, w)["providers"]
	require.Len(t, got, 2)
	require.Equal(t, "safetrip", got[0].ID)
	require.False(t, got[1].Enabled)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, map[string]obs.Check{
		"mongo": func(context.Context) error { return errors.New("no reachable servers") },
	})
	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/livez", "").Code)

	w := h.do(t, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "no reachable servers")

	ready := newHarness(t, map[string]obs.Check{"mongo": func(context.Context) error { return nil }})
	require.Equal(t, http.StatusOK, ready.do(t, http.MethodGet, "/readyz", "").Code)
}
