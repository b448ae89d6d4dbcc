// Package traceability links sales back to the packaging lots they depleted
// and prices those lots.
package traceability

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/pkg/textnorm"
)

const (
	unknownLabelMarker = "inconnu"
	bulkLabel          = "vrac"
)

// DefaultPriceTolerance is the largest gap between a sale's implied unit price
// and the product price for which a same-label sale still counts.
var DefaultPriceTolerance = decimal.NewFromInt(2)

// Matcher decides whether a sale depleted a given lot. Sales reference lots
// only through free text, so the decision walks from the strongest signal
// (batch label) down to product names.
type Matcher struct {
	PriceTolerance decimal.Decimal
}

// NewMatcher returns a matcher using tolerance, or DefaultPriceTolerance when
// tolerance is negative.
func NewMatcher(tolerance decimal.Decimal) Matcher {
	if tolerance.IsNegative() {
		tolerance = DefaultPriceTolerance
	}
	return Matcher{PriceTolerance: tolerance}
}

// Match reports whether sale counts against lot, owned by product.
func (m Matcher) Match(lot models.Packaging, product models.Product, sale models.Sale) bool {
	saleLabel := textnorm.Key(sale.FinalBatchNumber)
	lotLabel := textnorm.Key(lot.FinalBatchNumber)
	saleName := textnorm.Key(sale.ProductName)
	productName := textnorm.Key(product.Name)
	saleFormat := textnorm.Key(sale.Format)
	productFormat := textnorm.Key(product.PotSize)

	// A sale naming another lot explicitly belongs to that lot.
	if saleLabel != "" && saleLabel != lotLabel &&
		!strings.Contains(saleLabel, unknownLabelMarker) && saleLabel != bulkLabel {
		return false
	}

	if saleLabel != "" && saleLabel == lotLabel {
		if saleFormat != "" {
			return saleFormat == productFormat
		}
		return m.priceAgrees(product, sale)
	}

	if saleName == productName {
		if saleFormat != "" {
			return saleFormat == productFormat
		}
		return true
	}

	return saleName == productName+productFormat
}

// priceAgrees is true when the sale carries no usable price or its unit price
// is within the tolerance of the product price.
func (m Matcher) priceAgrees(product models.Product, sale models.Sale) bool {
	if sale.QuantitySold <= 0 || !sale.TotalPrice.IsPositive() {
		return true
	}
	unit := sale.TotalPrice.Div(decimal.NewFromFloat(sale.QuantitySold))
	return !unit.Sub(product.Price).Abs().GreaterThan(m.PriceTolerance)
}
