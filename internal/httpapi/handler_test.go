package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stockservice/internal/stock"
)

type fakeStore struct {
	records map[string]stock.StockRecord
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]stock.StockRecord)}
}

func (f *fakeStore) Get(ctx context.Context, key string) (*stock.StockRecord, error) {
	if f.failing {
		return nil, fmt.Errorf("%w: fake backend down", stock.ErrStoreUnavailable)
	}
	r, ok := f.records[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, r stock.StockRecord) error {
	if f.failing {
		return fmt.Errorf("%w: fake backend down", stock.ErrStoreUnavailable)
	}
	f.records[key] = r
	return nil
}

func (f *fakeStore) BatchSet(ctx context.Context, records map[string]stock.StockRecord) error {
	if f.failing {
		return fmt.Errorf("%w: fake backend down", stock.ErrStoreUnavailable)
	}
	for k, r := range records {
		f.records[k] = r
	}
	return nil
}

func newTestServer(store stock.Store) *httptest.Server {
	svc := stock.NewService(store, zap.NewNop())
	return httptest.NewServer(NewHandler(svc, zap.NewNop()).Router())
}

func postBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "", nil)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestCreateItem(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)
	defer srv.Close()

	status, body := postBody(t, srv.URL+"/item/create/100")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	itemID := payload["item_id"]
	if itemID == "" {
		t.Fatal("missing item_id")
	}

	r, ok := store.records[itemID]
	if !ok {
		t.Fatal("record not persisted")
	}
	if r.Stock != 0 || r.Price != 100 {
		t.Errorf("expected {0 100}, got %+v", r)
	}
}

func TestCreateItem_BadPrice(t *testing.T) {
	srv := newTestServer(newFakeStore())
	defer srv.Close()

	status, _ := postBody(t, srv.URL+"/item/create/cheap")
	if status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
}

func TestAddThenSubtract(t *testing.T) {
	store := newFakeStore()
	store.records["item-1"] = stock.StockRecord{Stock: 0, Price: 10}
	srv := newTestServer(store)
	defer srv.Close()

	status, body := postBody(t, srv.URL+"/add/item-1/5")
	if status != http.StatusOK {
		t.Fatalf("add: expected 200, got %d (%s)", status, body)
	}
	if body != "Item: item-1 stock updated to: 5" {
		t.Errorf("unexpected add body: %q", body)
	}

	status, body = postBody(t, srv.URL+"/subtract/item-1/3")
	if status != http.StatusOK {
		t.Fatalf("subtract: expected 200, got %d (%s)", status, body)
	}
	if body != "Item: item-1 stock updated to: 2" {
		t.Errorf("unexpected subtract body: %q", body)
	}

	if store.records["item-1"].Stock != 2 {
		t.Errorf("expected stored stock 2, got %d", store.records["item-1"].Stock)
	}
}

func TestSubtract_RejectsNegative(t *testing.T) {
	store := newFakeStore()
	store.records["item-1"] = stock.StockRecord{Stock: 2, Price: 10}
	srv := newTestServer(store)
	defer srv.Close()

	status, body := postBody(t, srv.URL+"/subtract/item-1/10")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if strings.TrimSpace(body) != "Item: item-1 stock cannot get reduced below zero!" {
		t.Errorf("unexpected body: %q", body)
	}
	if store.records["item-1"].Stock != 2 {
		t.Errorf("stored value changed on rejected mutation")
	}
}

func TestAdd_UnknownItem(t *testing.T) {
	srv := newTestServer(newFakeStore())
	defer srv.Close()

	status, body := postBody(t, srv.URL+"/add/ghost/1")
	if status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
	if strings.TrimSpace(body) != "Item: ghost not found!" {
		t.Errorf("unexpected body: %q", body)
	}
}

func TestBatchInit(t *testing.T) {
	store := newFakeStore()
	srv := newTestServer(store)
	defer srv.Close()

	status, body := postBody(t, srv.URL+"/batch_init/3/10/50")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, body)
	}

	for _, key := range []string{"0", "1", "2"} {
		r, ok := store.records[key]
		if !ok {
			t.Fatalf("key %q missing", key)
		}
		if r.Stock != 10 || r.Price != 50 {
			t.Errorf("key %q: expected {10 50}, got %+v", key, r)
		}
	}
}

func TestStoreFailure_FixedBody(t *testing.T) {
	store := newFakeStore()
	store.failing = true
	srv := newTestServer(store)
	defer srv.Close()

	status, body := postBody(t, srv.URL+"/item/create/100")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if strings.TrimSpace(body) != dbErrorStr {
		t.Errorf("expected fixed body %q, got %q", dbErrorStr, body)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(newFakeStore())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
