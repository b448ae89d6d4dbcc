package bolt_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/repository/bolt"
)

func openStore(t *testing.T, quota int64) (*bolt.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apigest.db")
	store, err := bolt.Open(path, quota, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store, path
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "apigest.db")

	store, err := bolt.Open(path, 0, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	lot, err := store.Packaging().Add(ctx, models.Packaging{
		Date:             "2024-06-01",
		QuantityPots:     10,
		PotSize:          "500g",
		FinalBatchNumber: "2024-PRI",
		CalculatedCost:   decimal.RequireFromString("7.00"),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := bolt.Open(path, 0, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close(ctx)

	got, err := reopened.Packaging().Get(ctx, lot.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FinalBatchNumber != "2024-PRI" || !got.CalculatedCost.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("got %+v", got)
	}
}

func TestCollectionOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t, 0)

	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		c, err := store.Clients().Add(ctx, models.Client{Name: name})
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		ids = append(ids, c.ID)
	}
	if err := store.Clients().Delete(ctx, ids[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Clients().Delete(ctx, ids[1]); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}

	clients, err := store.Clients().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	var names []string
	for _, c := range clients {
		names = append(names, c.Name)
	}
	if got := strings.Join(names, ","); got != "a,c,d" {
		t.Fatalf("order = %s, want a,c,d", got)
	}
}

func TestReplaceResetsCollection(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t, 0)

	if _, err := store.Harvests().Add(ctx, models.Harvest{Date: "2023-07-01", QuantityKg: 40}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	restored := []models.Harvest{
		{ID: "h1", Date: "2024-07-01", QuantityKg: 60},
		{ID: "h2", Date: "2024-08-01", QuantityKg: 40},
	}
	if err := store.Harvests().Replace(ctx, restored); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := store.Harvests().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != 2 || got[0].ID != "h1" || got[1].ID != "h2" {
		t.Fatalf("got %+v", got)
	}
	if _, err := store.Harvests().Get(ctx, "h2"); err != nil {
		t.Fatalf("Get(h2): %v", err)
	}
}

func TestQuotaRejectsGrowingWrites(t *testing.T) {
	ctx := context.Background()
	// A fresh file is a handful of pages; 64 KiB fills quickly.
	store, _ := openStore(t, 64*1024)

	note := strings.Repeat("x", 4096)
	var quotaErr error
	for i := 0; i < 200; i++ {
		if _, err := store.Expenses().Add(ctx, models.Expense{Description: note, Amount: decimal.NewFromInt(1)}); err != nil {
			quotaErr = err
			break
		}
	}
	if !errors.Is(quotaErr, repository.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", quotaErr)
	}

	expenses, err := store.Expenses().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(expenses) == 0 {
		t.Fatal("expected writes below the quota to succeed")
	}
	if err := store.Expenses().Delete(ctx, expenses[0].ID); err != nil {
		t.Fatalf("Delete over quota: %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t, 0)

	profile := models.Profile{CompanyName: "Les Ruchers du Val"}
	if err := store.SaveSetting(ctx, repository.SettingProfile, profile); err != nil {
		t.Fatalf("SaveSetting: %v", err)
	}
	got, err := repository.LoadProfile(ctx, store)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got.CompanyName != profile.CompanyName {
		t.Fatalf("CompanyName = %q", got.CompanyName)
	}

	if err := store.DeleteSetting(ctx, repository.SettingProfile); err != nil {
		t.Fatalf("DeleteSetting: %v", err)
	}
	found, err := store.LoadSetting(ctx, repository.SettingProfile, &got)
	if err != nil || found {
		t.Fatalf("LoadSetting after delete = %v, %v", found, err)
	}
}
