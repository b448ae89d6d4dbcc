package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository/memory"
	"github.com/mamadbah2/apigest/internal/server/handlers"
	"github.com/mamadbah2/apigest/internal/server/router"
	"github.com/mamadbah2/apigest/internal/service/backup"
	"github.com/mamadbah2/apigest/internal/service/reporting"
	"github.com/mamadbah2/apigest/internal/service/sales"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newEngine(t *testing.T, store *memory.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	allocator := traceability.NewCostAllocator()
	packaging := traceability.NewPackagingService(store, allocator, nil)
	h := handlers.New(handlers.Services{
		Store:     store,
		Packaging: packaging,
		Sales:     sales.NewService(store, nil),
		Reporting: reporting.NewService(store, traceability.NewMatcher(traceability.DefaultPriceTolerance), allocator, nil),
		Backup:    backup.NewService(store, nil),
	}, nil)
	return router.New(h, store, packaging, nil)
}

func do(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newEngine(t, memory.New()), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecordsCRUD(t *testing.T) {
	engine := newEngine(t, memory.New())

	rec := do(t, engine, http.MethodPost, "/records/apiaries", `{"id":"ignored","name":"Verger","location":"Juigné"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body)
	}
	var created models.Apiary
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.ID == "ignored" {
		t.Fatalf("id = %q, want a generated id", created.ID)
	}

	rec = do(t, engine, http.MethodPut, "/records/apiaries/"+created.ID, `{"name":"Verger Nord","location":"Juigné"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}

	rec = do(t, engine, http.MethodGet, "/records/apiaries", "")
	var list []models.Apiary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Verger Nord" {
		t.Fatalf("list = %+v", list)
	}

	if rec = do(t, engine, http.MethodDelete, "/records/apiaries/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec = do(t, engine, http.MethodGet, "/records/apiaries/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", rec.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		store  *memory.Store
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid harvest", memory.New(), http.MethodPost, "/records/harvests", `{"honeyType":"","quantityKg":0}`, http.StatusBadRequest},
		{"malformed body", memory.New(), http.MethodPost, "/records/hives", `{"name":`, http.StatusBadRequest},
		{"invalid packaging", memory.New(), http.MethodPost, "/packaging", `{"lot":{"quantityPots":10}}`, http.StatusBadRequest},
		{"empty cart", memory.New(), http.MethodPost, "/checkout", `{"clientName":"Marie","cart":[]}`, http.StatusBadRequest},
		{"unknown lot cost", memory.New(), http.MethodGet, "/packaging/nope/cost", "", http.StatusNotFound},
		{"update missing record", memory.New(), http.MethodPut, "/records/clients/nope", `{"name":"x"}`, http.StatusNotFound},
		{"bad year", memory.New(), http.MethodGet, "/dashboard?year=abc", "", http.StatusBadRequest},
		{"invalid backup", memory.New(), http.MethodPost, "/backup", `{"version":"1.20"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newEngine(t, tt.store), tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body=%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestQuotaExceededIsInsufficientStorage(t *testing.T) {
	engine := newEngine(t, memory.New(memory.WithMaxRecords(1)))

	if rec := do(t, engine, http.MethodPost, "/records/expenses", `{"description":"Cadres","amount":"30"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first write status = %d", rec.Code)
	}
	rec := do(t, engine, http.MethodPost, "/records/expenses", `{"description":"Cire","amount":12.5}`)
	if rec.Code != http.StatusInsufficientStorage {
		t.Fatalf("status = %d, want 507", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "quota") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestPackagingCheckoutAndBooks(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if _, err := store.Harvests().Add(ctx, models.Harvest{Date: "2024-04-20", HoneyType: "Printemps", QuantityKg: 50}); err != nil {
		t.Fatal(err)
	}
	engine := newEngine(t, store)

	rec := do(t, engine, http.MethodPost, "/packaging",
		`{"lot":{"date":"2024-05-01","finalBatchNumber":"2024-PRI","quantityPots":10,"potSize":"500g","honeyType":"Printemps"},"productName":"Printemps","price":"12"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d body=%s", rec.Code, rec.Body)
	}
	var registered traceability.PackagingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatal(err)
	}
	if registered.Product == nil || !registered.Created || registered.Lot.DDM != "2026-05-01" {
		t.Fatalf("result = %+v", registered)
	}

	rec = do(t, engine, http.MethodPost, "/checkout",
		`{"date":"2024-06-01","clientName":"Marie","paymentMethod":"CB","cart":[{"productId":"`+registered.Product.ID+`","quantity":3}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout status = %d body=%s", rec.Code, rec.Body)
	}

	rec = do(t, engine, http.MethodGet, "/stock", "")
	var stock models.StockReport
	if err := json.Unmarshal(rec.Body.Bytes(), &stock); err != nil {
		t.Fatal(err)
	}
	if len(stock.Items) != 1 || stock.Items[0].Quantity != 7 || !stock.TotalValue.Equal(decimal.NewFromInt(84)) {
		t.Fatalf("stock = %+v", stock)
	}

	rec = do(t, engine, http.MethodGet, "/sales/book", "")
	var groups []models.SaleGroup
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].BuyerName != "Marie" || !groups[0].TotalPrice.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("groups = %+v", groups)
	}

	rec = do(t, engine, http.MethodGet, "/sales/export.csv", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "2024-06-01,Marie,CB,2024-PRI,Printemps,500g,3,36.00") {
		t.Errorf("csv = %s", rec.Body)
	}

	rec = do(t, engine, http.MethodGet, "/clients/totals", "")
	var totals []models.ClientTotal
	if err := json.Unmarshal(rec.Body.Bytes(), &totals); err != nil {
		t.Fatal(err)
	}
	if len(totals) != 1 || !totals[0].TotalSpent.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("totals = %+v", totals)
	}
}

func TestSettingsAndBackup(t *testing.T) {
	engine := newEngine(t, memory.New())

	rec := do(t, engine, http.MethodGet, "/settings/costs", "")
	var costs models.UnitCostConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &costs); err != nil {
		t.Fatal(err)
	}
	if !costs.AnnualOverhead().Equal(decimal.NewFromInt(450)) {
		t.Fatalf("default overhead = %s", costs.AnnualOverhead())
	}

	costs.FeedingYearly = decimal.NewFromInt(100)
	body, _ := json.MarshalToString(costs)
	if rec = do(t, engine, http.MethodPut, "/settings/costs", body); rec.Code != http.StatusOK {
		t.Fatalf("put costs status = %d", rec.Code)
	}
	if rec = do(t, engine, http.MethodPut, "/settings/profile", `{"companyName":"Le Rucher"}`); rec.Code != http.StatusOK {
		t.Fatalf("put profile status = %d", rec.Code)
	}

	rec = do(t, engine, http.MethodGet, "/backup", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Disposition"), "apigest-backup-") {
		t.Fatalf("export status = %d headers=%v", rec.Code, rec.Header())
	}
	exported := rec.Body.String()

	target := newEngine(t, memory.New())
	if rec = do(t, target, http.MethodPost, "/backup", exported); rec.Code != http.StatusOK {
		t.Fatalf("import status = %d body=%s", rec.Code, rec.Body)
	}
	rec = do(t, target, http.MethodGet, "/settings/profile", "")
	if !strings.Contains(rec.Body.String(), "Le Rucher") {
		t.Errorf("profile after import = %s", rec.Body)
	}
	rec = do(t, target, http.MethodGet, "/settings/costs", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &costs); err != nil {
		t.Fatal(err)
	}
	if !costs.AnnualOverhead().Equal(decimal.NewFromInt(250)) {
		t.Errorf("imported overhead = %s, want 250", costs.AnnualOverhead())
	}
}
