package traceability

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
)

// LotInput is the part of a lot that drives its cost. It can describe a lot
// that has not been saved yet.
type LotInput struct {
	Date         string  `json:"date"`
	QuantityPots float64 `json:"quantityPots"`
	PotSize      string  `json:"potSize"`
}

// LotInputFrom extracts the cost inputs of a stored lot.
func LotInputFrom(lot models.Packaging) LotInput {
	return LotInput{Date: lot.Date, QuantityPots: lot.QuantityPots, PotSize: lot.PotSize}
}

// CostAllocator prices lots: jars, labels and lids directly, plus a share of
// the annual feeding and treatment overhead prorated by harvested weight.
type CostAllocator struct {
	now func() time.Time
}

// NewCostAllocator returns an allocator dating undated lots with the wall clock.
func NewCostAllocator() *CostAllocator {
	return &CostAllocator{now: time.Now}
}

// HarvestKgForYear sums the kilograms harvested during year.
func HarvestKgForYear(harvests []models.Harvest, year int) float64 {
	var total float64
	for _, h := range harvests {
		if y, ok := models.YearOf(h.Date); ok && y == year {
			total += h.QuantityKg
		}
	}
	return total
}

// LotCost computes the cost of lot against the harvests and unit costs given.
func (a *CostAllocator) LotCost(lot LotInput, harvests []models.Harvest, cfg models.UnitCostConfig) models.LotCost {
	year, ok := models.YearOf(lot.Date)
	if !ok {
		year = a.now().Year()
	}
	if lot.QuantityPots <= 0 {
		return models.LotCost{Year: year}
	}

	qty := decimal.NewFromFloat(lot.QuantityPots)
	jar, label := unitPrices(BucketOf(lot.PotSize), cfg)
	material := qty.Mul(jar.Add(label).Add(cfg.Lid))

	harvestKg := HarvestKgForYear(harvests, year)
	overhead := cfg.AnnualOverhead()
	indirect := decimal.Zero
	if harvestKg > 0 {
		weightKg := decimal.NewFromFloat(lot.QuantityPots * WeightKg(lot.PotSize))
		indirect = weightKg.Mul(overhead).Div(decimal.NewFromFloat(harvestKg))
	}

	return models.LotCost{
		Material:       material,
		Indirect:       indirect,
		Total:          material.Add(indirect),
		Year:           year,
		HarvestKg:      harvestKg,
		AnnualOverhead: overhead,
	}
}

func unitPrices(b Bucket, cfg models.UnitCostConfig) (jar, label decimal.Decimal) {
	switch b {
	case Bucket250g:
		return cfg.Jar250, cfg.Label250
	case Bucket500g:
		return cfg.Jar500, cfg.Label500
	case Bucket1kg:
		return cfg.Jar1kg, cfg.Label1kg
	default:
		return decimal.Zero, decimal.Zero
	}
}
