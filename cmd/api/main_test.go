package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CarBotAI/carbot-mvp/engine/inventory"
	"github.com/CarBotAI/carbot-mvp/engine/search"
	"github.com/CarBotAI/carbot-mvp/pkg/metrics"
)

const testCSV = `year,make,model,body_styles,color,mileage,price,fuel_type,engine,transmission,safety_rating,trunk_space_liters,features,condition,location,vin,status
2022,Toyota,RAV4,"['SUV', 'Crossover']",Rojo,12000,28500,Híbrido,2.5L,Automática,5,580,"GPS, Bluetooth",Excelente,Madrid,VINTOYOTARAV40001,Available
2021,Honda,Civic,['Sedan'],Azul,30000,21000,Gasolina,1.5L,Manual,5,420,Bluetooth,Muy bueno,Barcelona,VINHONDACIVIC0002,Available
`

func testService(t *testing.T) (*inventory.Store, *search.Service) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	store := inventory.New(path)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	return store, search.NewService(store)
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleSearch(t *testing.T) {
	_, svc := testService(t)
	h := handleSearch(svc, search.DefaultMaxResults, slog.Default())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"query":"suv rojo menos de 30000"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Results[0].VIN != "VINTOYOTARAV40001" {
		t.Errorf("unexpected results: %+v", resp)
	}
	if !strings.Contains(resp.Formatted, "Toyota RAV4") {
		t.Errorf("formatted text missing match: %s", resp.Formatted)
	}
}

func TestHandleSearchRejectsBadBody(t *testing.T) {
	_, svc := testService(t)
	h := handleSearch(svc, search.DefaultMaxResults, slog.Default())

	for _, body := range []string{`{not json`, `{"query":""}`} {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleVehicle(t *testing.T) {
	_, svc := testService(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vehicles/{vin}", handleVehicle(svc))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vehicles/VINHONDACIVIC0002", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res search.Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Make != "Honda" || res.MatchScore != 1.0 {
		t.Errorf("unexpected result: %+v", res)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vehicles/NOSUCHVIN00000000", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing VIN status = %d, want 404", rec.Code)
	}
}

func TestHandleReserve(t *testing.T) {
	store, _ := testService(t)
	reservations := metrics.New().Counter("reservations_total", "Successful vehicle reservations")
	h := handleReserve(store, reservations, slog.Default())

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/api/reserve", strings.NewReader(body)))
		return rec
	}

	if rec := post(`{"vin":"VINTOYOTARAV40001"}`); rec.Code != http.StatusOK {
		t.Fatalf("reserve status = %d, body: %s", rec.Code, rec.Body)
	}
	if rec := post(`{"vin":"VINTOYOTARAV40001"}`); rec.Code != http.StatusConflict {
		t.Errorf("double reserve status = %d, want 409", rec.Code)
	}
	if rec := post(`{"vin":"NOSUCHVIN00000000"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown VIN status = %d, want 404", rec.Code)
	}
	if rec := post(`{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty VIN status = %d, want 400", rec.Code)
	}
	if reservations.Value() != 1 {
		t.Errorf("reservations counter = %d, want 1", reservations.Value())
	}
}

func TestHandleStats(t *testing.T) {
	store, _ := testService(t)
	rec := httptest.NewRecorder()
	handleStats(store)(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats inventory.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalVehicles != 2 || stats.Available != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHandleHistory(t *testing.T) {
	_, svc := testService(t)
	h := handleSearch(svc, search.DefaultMaxResults, slog.Default())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"honda"}`)))
	if rec.Code != http.StatusOK {
		t.Fatal(rec.Code)
	}

	rec = httptest.NewRecorder()
	handleHistory(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	var history []search.HistoryEntry
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Query != "honda" {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "INVENTORY_CSV", "NATS_URL", "MAX_RESULTS"} {
		t.Setenv(key, "")
	}
	cfg := loadConfig()
	if cfg.Port != "8080" || cfg.InventoryPath != "data/inventory.csv" || cfg.MaxResults != search.DefaultMaxResults {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	t.Setenv("MAX_RESULTS", "nope")
	if got := loadConfig().MaxResults; got != search.DefaultMaxResults {
		t.Errorf("bad MAX_RESULTS must fall back, got %d", got)
	}
	t.Setenv("MAX_RESULTS", "5")
	if got := loadConfig().MaxResults; got != 5 {
		t.Errorf("MAX_RESULTS = %d, want 5", got)
	}
}
