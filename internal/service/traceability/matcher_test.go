package traceability_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

func TestMatcherMatch(t *testing.T) {
	lot := models.Packaging{ID: "lot-1", Date: "2024-06-10", FinalBatchNumber: "2024-pri ", PotSize: "500g", QuantityPots: 40}
	product := models.Product{ID: "p-1", Name: "Miel de Printemps", PotSize: "500g", Price: decimal.NewFromInt(12), CurrentBatchID: "lot-1"}

	tests := []struct {
		name string
		sale models.Sale
		want bool
	}{
		{
			name: "label equal after normalization",
			sale: models.Sale{FinalBatchNumber: "2024-PRI", QuantitySold: 1},
			want: true,
		},
		{
			name: "explicit other label wins over matching name",
			sale: models.Sale{FinalBatchNumber: "2024-OTHER", ProductName: "Miel de Printemps", QuantitySold: 1},
			want: false,
		},
		{
			name: "unknown placeholder falls back to name",
			sale: models.Sale{FinalBatchNumber: "LOT-INCONNU", ProductName: "miel de printemps", QuantitySold: 1},
			want: true,
		},
		{
			name: "bulk placeholder with another name",
			sale: models.Sale{FinalBatchNumber: "Vrac", ProductName: "Miel d'Acacia", QuantitySold: 1},
			want: false,
		},
		{
			name: "same label with stored format of another size",
			sale: models.Sale{FinalBatchNumber: "2024-PRI", Format: "1kg", QuantitySold: 1},
			want: false,
		},
		{
			name: "same label with stored format spelled differently",
			sale: models.Sale{FinalBatchNumber: "2024-PRI", Format: "500 G", QuantitySold: 1},
			want: true,
		},
		{
			name: "same label with implied price within tolerance",
			sale: models.Sale{FinalBatchNumber: "2024-PRI", QuantitySold: 2, TotalPrice: decimal.NewFromInt(26)},
			want: true,
		},
		{
			name: "same label with implied price of another product",
			sale: models.Sale{FinalBatchNumber: "2024-PRI", QuantitySold: 2, TotalPrice: decimal.NewFromInt(40)},
			want: false,
		},
		{
			name: "same label given away",
			sale: models.Sale{FinalBatchNumber: "2024-PRI", QuantitySold: 3, PaymentMethod: models.PaymentDonation},
			want: true,
		},
		{
			name: "name fallback with matching format",
			sale: models.Sale{ProductName: "Miel de printemps", Format: "500g", QuantitySold: 1},
			want: true,
		},
		{
			name: "name fallback with other format",
			sale: models.Sale{ProductName: "Miel de printemps", Format: "250g", QuantitySold: 1},
			want: false,
		},
		{
			name: "combined name and format",
			sale: models.Sale{ProductName: "Miel de Printemps 500g", QuantitySold: 1},
			want: true,
		},
		{
			name: "unrelated sale",
			sale: models.Sale{ProductName: "Pollen", QuantitySold: 1},
			want: false,
		},
	}

	m := traceability.NewMatcher(traceability.DefaultPriceTolerance)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(lot, product, tt.sale); got != tt.want {
				t.Fatalf("Match() = %v, want %v", got, tt.want)
			}
			if again := m.Match(lot, product, tt.sale); again != tt.want {
				t.Fatalf("second Match() = %v, want %v", again, tt.want)
			}
		})
	}
}

func TestMatcherTolerance(t *testing.T) {
	lot := models.Packaging{FinalBatchNumber: "A1"}
	product := models.Product{Name: "Acacia", PotSize: "250g", Price: decimal.NewFromInt(7)}
	sale := models.Sale{FinalBatchNumber: "A1", QuantitySold: 1, TotalPrice: decimal.RequireFromString("8.5")}

	if !traceability.NewMatcher(decimal.NewFromInt(2)).Match(lot, product, sale) {
		t.Fatal("1.5 gap should pass a tolerance of 2")
	}
	if traceability.NewMatcher(decimal.NewFromInt(1)).Match(lot, product, sale) {
		t.Fatal("1.5 gap should fail a tolerance of 1")
	}
	if got := traceability.NewMatcher(decimal.NewFromInt(-1)).PriceTolerance; !got.Equal(traceability.DefaultPriceTolerance) {
		t.Fatalf("negative tolerance = %s, want default", got)
	}
}
