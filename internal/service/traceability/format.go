package traceability

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/pkg/textnorm"
)

// FormatSource tells where the effective format of a sale was read from.
type FormatSource int

const (
	FormatNone FormatSource = iota
	// FormatStored is the format snapshot saved on the sale itself.
	FormatStored
	// FormatFromProduct comes from the first product carrying the sale's name.
	FormatFromProduct
	// FormatFromLot comes from the first lot carrying the sale's batch label.
	FormatFromLot
)

// FormatResolver derives the effective pot format of a sale. It is built once
// per snapshot of products and lots and shared by every consumer that must
// agree on the same answer.
type FormatResolver struct {
	byProduct map[string]string
	byLot     map[string]string
}

// NewFormatResolver indexes the first product per name and the first lot per
// label, both keyed by their normalized text.
func NewFormatResolver(products []models.Product, lots []models.Packaging) *FormatResolver {
	r := &FormatResolver{
		byProduct: make(map[string]string, len(products)),
		byLot:     make(map[string]string, len(lots)),
	}
	for _, p := range products {
		key := textnorm.Key(p.Name)
		if _, seen := r.byProduct[key]; key != "" && !seen {
			r.byProduct[key] = strings.TrimSpace(p.PotSize)
		}
	}
	for _, lot := range lots {
		key := textnorm.Key(lot.FinalBatchNumber)
		if _, seen := r.byLot[key]; key != "" && !seen {
			r.byLot[key] = strings.TrimSpace(lot.PotSize)
		}
	}
	return r
}

// Resolve returns the sale's format and its origin. Precedence is the stored
// format, then the product with the same name, then the lot with the same label.
func (r *FormatResolver) Resolve(sale models.Sale) (string, FormatSource) {
	if format := strings.TrimSpace(sale.Format); format != "" {
		return format, FormatStored
	}
	if r == nil {
		return "", FormatNone
	}
	if format := r.byProduct[textnorm.Key(sale.ProductName)]; format != "" {
		return format, FormatFromProduct
	}
	if format := r.byLot[textnorm.Key(sale.FinalBatchNumber)]; format != "" {
		return format, FormatFromLot
	}
	return "", FormatNone
}

// Bucket is a jar size with its own jar and label prices.
type Bucket int

const (
	BucketNone Bucket = iota
	Bucket250g
	Bucket500g
	Bucket1kg
)

// BucketOf maps a free-text pot format to a priced jar size. Unknown formats
// return BucketNone and only pay for the lid.
func BucketOf(format string) Bucket {
	key := textnorm.Key(format)
	switch {
	case strings.Contains(key, "250"):
		return Bucket250g
	case strings.Contains(key, "500"):
		return Bucket500g
	case strings.Contains(key, "1kg"), strings.Contains(key, "1000"):
		return Bucket1kg
	default:
		return BucketNone
	}
}

var weightPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)(kg|g)`)

// WeightKg returns the honey weight of one pot of the given format, or 0 when
// the format carries no readable weight.
func WeightKg(format string) float64 {
	s := textnorm.Key(format)
	switch {
	case s == "":
		return 0
	case strings.Contains(s, "1kg"), strings.Contains(s, "1000g"):
		return 1
	case strings.Contains(s, "500g"), strings.Contains(s, "0.5kg"):
		return 0.5
	case strings.Contains(s, "250g"), strings.Contains(s, "0.25kg"):
		return 0.25
	case strings.Contains(s, "125g"):
		return 0.125
	}

	m := weightPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	if m[2] == "g" {
		value /= 1000
	}
	return value
}
