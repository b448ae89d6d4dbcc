package traceability

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
)

// stockEpsilon hides float residue left after fractional sales.
const stockEpsilon = 0.001

// ActiveLot returns the lot product currently draws from.
func ActiveLot(product models.Product, lots []models.Packaging) (models.Packaging, bool) {
	if product.CurrentBatchID == "" {
		return models.Packaging{}, false
	}
	for _, lot := range lots {
		if lot.ID == product.CurrentBatchID {
			return lot, true
		}
	}
	return models.Packaging{}, false
}

// SoldQuantity sums the quantity of every sale matched to lot.
func SoldQuantity(m Matcher, lot models.Packaging, product models.Product, sales []models.Sale) float64 {
	var sold float64
	for _, sale := range sales {
		if m.Match(lot, product, sale) {
			sold += sale.QuantitySold
		}
	}
	return sold
}

// RemainingForProduct is the number of pots left in product's active lot. A
// product without a resolvable lot has none.
func RemainingForProduct(m Matcher, product models.Product, lots []models.Packaging, sales []models.Sale) float64 {
	lot, ok := ActiveLot(product, lots)
	if !ok {
		return 0
	}
	return math.Max(0, lot.QuantityPots-SoldQuantity(m, lot, product, sales))
}

// LotYearLabel is the packaging year of lot as displayed, "?" when the date
// is unreadable.
func LotYearLabel(lot models.Packaging) string {
	if year, ok := models.YearOf(lot.Date); ok {
		return strconv.Itoa(year)
	}
	return "?"
}

// ComputeStock values the remaining pots of every product's active lot.
func ComputeStock(m Matcher, products []models.Product, lots []models.Packaging, sales []models.Sale) models.StockReport {
	report := models.StockReport{TotalValue: decimal.Zero, Items: make([]models.StockItem, 0)}

	for _, product := range products {
		lot, ok := ActiveLot(product, lots)
		if !ok {
			continue
		}
		remaining := math.Max(0, lot.QuantityPots-SoldQuantity(m, lot, product, sales))
		if remaining <= stockEpsilon {
			continue
		}

		item := models.StockItem{
			ProductID: product.ID,
			Label:     fmt.Sprintf("%s %s (%s)", product.Name, product.PotSize, LotYearLabel(lot)),
			Quantity:  remaining,
			Value:     decimal.NewFromFloat(remaining).Mul(product.Price),
		}
		report.Items = append(report.Items, item)
		report.TotalValue = report.TotalValue.Add(item.Value)
	}
	return report
}
