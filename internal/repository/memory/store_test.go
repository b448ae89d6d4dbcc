package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/repository/memory"
)

func TestCollectionKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	names := []string{"Printemps", "Acacia", "Châtaignier"}
	for _, name := range names {
		if _, err := store.Products().Add(ctx, models.Product{Name: name}); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}

	got, err := store.Products().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != len(names) {
		t.Fatalf("len = %d, want %d", len(got), len(names))
	}
	for i, p := range got {
		if p.Name != names[i] {
			t.Errorf("item %d = %q, want %q", i, p.Name, names[i])
		}
		if p.ID == "" {
			t.Errorf("item %d has no ID", i)
		}
	}
}

func TestCollectionUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	sale, err := store.Sales().Add(ctx, models.Sale{FinalBatchNumber: "2024-PRI", QuantitySold: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	sale.TotalPrice = decimal.NewFromInt(24)
	if err := store.Sales().Update(ctx, sale); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.Sales().Get(ctx, sale.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.TotalPrice.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("TotalPrice = %s, want 24", got.TotalPrice)
	}

	if err := store.Sales().Delete(ctx, sale.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Sales().Get(ctx, sale.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Sales().Update(ctx, sale); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Update after delete err = %v, want ErrNotFound", err)
	}
}

func TestQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	store := memory.New(memory.WithMaxRecords(2))

	if _, err := store.Apiaries().Add(ctx, models.Apiary{Name: "Rucher du bois"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := store.Hives().Add(ctx, models.Hive{Name: "R1"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := store.Hives().Add(ctx, models.Hive{Name: "R2"})
	if !errors.Is(err, repository.ErrQuotaExceeded) {
		t.Fatalf("third Add err = %v, want ErrQuotaExceeded", err)
	}

	hives, _ := store.Hives().GetAll(ctx)
	if len(hives) != 1 {
		t.Fatalf("rejected write was stored: %d hives", len(hives))
	}
}

func TestSettingsFallBackToDefaults(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	cfg, err := repository.LoadCostConfig(ctx, store)
	if err != nil {
		t.Fatalf("LoadCostConfig: %v", err)
	}
	if !cfg.AnnualOverhead().Equal(decimal.NewFromInt(450)) {
		t.Fatalf("default overhead = %s, want 450", cfg.AnnualOverhead())
	}

	cfg.FeedingYearly = decimal.NewFromInt(100)
	if err := store.SaveSetting(ctx, repository.SettingCostConfig, cfg); err != nil {
		t.Fatalf("SaveSetting: %v", err)
	}
	cfg, err = repository.LoadCostConfig(ctx, store)
	if err != nil {
		t.Fatalf("LoadCostConfig: %v", err)
	}
	if !cfg.AnnualOverhead().Equal(decimal.NewFromInt(250)) {
		t.Fatalf("saved overhead = %s, want 250", cfg.AnnualOverhead())
	}

	types, err := repository.LoadStringList(ctx, store, repository.SettingHoneyTypes, repository.DefaultHoneyTypes)
	if err != nil {
		t.Fatalf("LoadStringList: %v", err)
	}
	if len(types) != len(repository.DefaultHoneyTypes) {
		t.Fatalf("honey types = %v, want defaults", types)
	}
}
