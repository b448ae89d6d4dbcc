package reporting

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/service/traceability"
	"github.com/mamadbah2/apigest/pkg/textnorm"
)

const (
	otherLabel   = "Autre"
	otherPayment = "Autre"
)

// ComputeYearFinancials totals the sales and expenses dated in year and splits
// sales revenue by product label and by payment method. Donations are left out
// of the payment split only.
func ComputeYearFinancials(sales []models.Sale, expenses []models.Expense, products []models.Product, lots []models.Packaging, year int) models.YearFinancials {
	out := models.YearFinancials{
		Year:          year,
		TotalSales:    decimal.Zero,
		TotalExpenses: decimal.Zero,
		ByLabel:       make([]models.LabelAmount, 0),
		ByPayment:     make([]models.PaymentAmount, 0),
	}

	for _, e := range expenses {
		if y, ok := models.YearOf(e.Date); ok && y == year {
			out.TotalExpenses = out.TotalExpenses.Add(e.Amount)
		}
	}

	resolver := traceability.NewFormatResolver(products, lots)
	labelIdx := make(map[string]int)
	paymentIdx := make(map[string]int)

	for _, s := range sales {
		if y, ok := models.YearOf(s.Date); !ok || y != year {
			continue
		}
		out.TotalSales = out.TotalSales.Add(s.TotalPrice)

		label := SaleLabel(s, resolver)
		key := textnorm.Key(label)
		if i, ok := labelIdx[key]; ok {
			out.ByLabel[i].Value = out.ByLabel[i].Value.Add(s.TotalPrice)
		} else {
			labelIdx[key] = len(out.ByLabel)
			out.ByLabel = append(out.ByLabel, models.LabelAmount{Label: label, Value: s.TotalPrice})
		}

		method := string(s.PaymentMethod)
		if method == "" {
			method = otherPayment
		}
		if method == string(models.PaymentDonation) {
			continue
		}
		if i, ok := paymentIdx[method]; ok {
			out.ByPayment[i].Value = out.ByPayment[i].Value.Add(s.TotalPrice)
		} else {
			paymentIdx[method] = len(out.ByPayment)
			out.ByPayment = append(out.ByPayment, models.PaymentAmount{Method: method, Value: s.TotalPrice})
		}
	}
	return out
}

// SaleLabel is the display label of a sale: its product name, or "Autre",
// followed by its effective format.
func SaleLabel(s models.Sale, resolver *traceability.FormatResolver) string {
	label := s.ProductName
	if label == "" {
		label = otherLabel
	}
	if format, _ := resolver.Resolve(s); format != "" {
		label += " " + format
	}
	return strings.TrimSpace(label)
}
