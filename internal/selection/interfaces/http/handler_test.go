package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/optionselector/internal/selection/application"
	"github.com/wyfcoding/optionselector/internal/selection/domain"
)

type fakeSelectionStore struct {
	saved []*domain.SelectionRecord
}

func (f *fakeSelectionStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeSelectionStore) Save(_ context.Context, record *domain.SelectionRecord) error {
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeSelectionStore) GetByID(_ context.Context, id string) (*domain.SelectionRecord, error) {
	for _, r := range f.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeSelectionStore) GetLatest(_ context.Context, symbol string) (*domain.SelectionRecord, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].Symbol == symbol {
			return f.saved[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSelectionStore) List(_ context.Context, symbol string, limit, offset int) ([]*domain.SelectionRecord, int64, error) {
	var matched []*domain.SelectionRecord
	for _, r := range f.saved {
		if r.Symbol == symbol {
			matched = append(matched, r)
		}
	}
	return matched, int64(len(matched)), nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeSelectionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := domain.NewEngine(domain.DefaultEngineConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &fakeSelectionStore{}
	command := application.NewCommandService(engine, store, nil, nil, nil, logger)
	query := application.NewQueryService(store, nil, logger)

	r := gin.New()
	NewSelectionHandler(command, query).RegisterRoutes(r.Group("/api"))
	return r, store
}

func postSelect(t *testing.T, router *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/selection/select", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func selectBody() map[string]any {
	return map[string]any{
		"symbol":          "NIFTY",
		"spot_price":      26178.70,
		"bias":            "BULLISH",
		"strike_interval": 50,
		"days_to_expiry":  2.0,
	}
}

func TestRunSelectionDefaultsMaxDelta(t *testing.T) {
	router, store := newTestRouter(t)

	w := postSelect(t, router, selectBody())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(store.saved))
	}
	// An omitted max_delta means "no upper bound", not zero.
	if got := store.saved[0].Request.MaxDelta; got != 1.0 {
		t.Errorf("max_delta: expected default 1.0, got %v", got)
	}
}

func TestRunSelectionExplicitMaxDelta(t *testing.T) {
	router, store := newTestRouter(t)

	body := selectBody()
	body["min_delta"] = 0.35
	body["max_delta"] = 0.75
	w := postSelect(t, router, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := store.saved[0].Request.MaxDelta; got != 0.75 {
		t.Errorf("max_delta: expected 0.75, got %v", got)
	}
}

func TestRunSelectionRejectsZeroMaxDelta(t *testing.T) {
	router, store := newTestRouter(t)

	body := selectBody()
	body["max_delta"] = 0
	w := postSelect(t, router, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for explicit zero max_delta, got %d", w.Code)
	}
	if len(store.saved) != 0 {
		t.Error("nothing should be persisted on a rejected request")
	}
}

func TestRunSelectionRejectsUnknownBias(t *testing.T) {
	router, store := newTestRouter(t)

	body := selectBody()
	body["bias"] = "SIDEWAYS"
	w := postSelect(t, router, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown bias, got %d", w.Code)
	}
	if len(store.saved) != 0 {
		t.Error("nothing should be persisted on a rejected request")
	}
}
