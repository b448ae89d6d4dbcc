package reporting_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository/memory"
	"github.com/mamadbah2/apigest/internal/service/reporting"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

func seededService(t *testing.T) *reporting.Service {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	mustAdd := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	_, err := store.Packaging().Add(ctx, models.Packaging{ID: "lot-1", Date: "2024-05-01", FinalBatchNumber: "2024-PRI", PotSize: "500g", QuantityPots: 10})
	mustAdd(err)
	_, err = store.Products().Add(ctx, models.Product{ID: "p-1", Name: "Printemps", PotSize: "500g", Price: dec("12"), CurrentBatchID: "lot-1"})
	mustAdd(err)
	_, err = store.Products().Add(ctx, models.Product{ID: "p-2", Name: "Sapin", PotSize: "1kg", Price: dec("20"), CurrentBatchID: "gone"})
	mustAdd(err)
	_, err = store.Products().Add(ctx, models.Product{ID: "p-3", Name: "Lavande", PotSize: "250g", Price: dec("8")})
	mustAdd(err)
	_, err = store.Harvests().Add(ctx, models.Harvest{Date: "2024-04-20", QuantityKg: 50})
	mustAdd(err)
	_, err = store.Sales().Add(ctx, models.Sale{Date: "2024-06-07", FinalBatchNumber: "2024-PRI", QuantitySold: 4, TotalPrice: dec("48"), PaymentMethod: models.PaymentCard, ProductName: "Printemps", Format: "500g"})
	mustAdd(err)
	_, err = store.Expenses().Add(ctx, models.Expense{Date: "2024-02-01", Description: "Cadres", Amount: dec("30")})
	mustAdd(err)

	svc := reporting.NewService(store, traceability.NewMatcher(traceability.DefaultPriceTolerance), nil, nil)
	svc.SetClock(func() time.Time { return time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC) })
	return svc
}

func TestDashboard(t *testing.T) {
	svc := seededService(t)

	dash, err := svc.Dashboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.Financials.Year != 2024 {
		t.Errorf("year = %d, want current year 2024", dash.Financials.Year)
	}
	if !dash.Stock.TotalValue.Equal(dec("72")) || len(dash.Stock.Items) != 1 {
		t.Errorf("stock = %+v, want 6 pots worth 72", dash.Stock)
	}
	if !dash.Financials.TotalSales.Equal(dec("48")) || !dash.Financials.TotalExpenses.Equal(dec("30")) {
		t.Errorf("financials = %+v", dash.Financials)
	}

	past, err := svc.Dashboard(context.Background(), 2023)
	if err != nil {
		t.Fatalf("Dashboard(2023): %v", err)
	}
	if !past.Financials.TotalSales.IsZero() {
		t.Errorf("2023 sales = %s, want 0", past.Financials.TotalSales)
	}
}

func TestCatalog(t *testing.T) {
	svc := seededService(t)

	entries, err := svc.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	printemps := entries[0]
	if printemps.Year != "2024" || printemps.Remaining != 6 || printemps.Cost == nil {
		t.Fatalf("printemps = %+v", printemps)
	}
	// 10 × (0.45 + 0.10 + 0.15) + 5 kg × 450 / 50 kg
	if !printemps.Cost.Total.Equal(dec("52")) {
		t.Errorf("lot cost = %s, want 52", printemps.Cost.Total)
	}
	if entries[1].Year != "Lot introuvable" || entries[1].Cost != nil {
		t.Errorf("missing lot entry = %+v", entries[1])
	}
	if entries[2].Year != "Sans Lot / Année inconnue" {
		t.Errorf("no lot entry = %+v", entries[2])
	}
}

func TestWeeklySummary(t *testing.T) {
	svc := seededService(t)

	text, err := svc.WeeklySummary(context.Background(), time.Date(2024, 6, 8, 20, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("WeeklySummary: %v", err)
	}
	for _, want := range []string{
		"Semaine du 2024-06-02 au 2024-06-08",
		"Ventes: 48.00 € (4 pots)",
		"Stock: 72.00 €",
		"2024: 48.00 € de ventes, 30.00 € de dépenses",
		"1. Printemps 500g: 48.00 €",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary misses %q:\n%s", want, text)
		}
	}
}
