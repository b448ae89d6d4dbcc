package reporting

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

const (
	unknownBuyer  = "Inconnu"
	directSale    = "Vente Directe"
	unknownStore  = "Divers"
	defaultMethod = models.PaymentCash
)

// SortKey selects the ordering of the sales book.
type SortKey string

const (
	SortByDate    SortKey = "date"
	SortByClient  SortKey = "client"
	SortByPayment SortKey = "payment"
	SortByTotal   SortKey = "total"
	SortByItems   SortKey = "product"
)

// ClientTotals ranks clients by the revenue of sales linked to them by ID, or
// by buyer name for sales recorded before clients had IDs.
func ClientTotals(clients []models.Client, sales []models.Sale) []models.ClientTotal {
	out := make([]models.ClientTotal, 0, len(clients))
	for _, c := range clients {
		total := decimal.Zero
		for _, s := range sales {
			if (c.ID != "" && s.ClientID == c.ID) || (c.Name != "" && s.BuyerName == c.Name) {
				total = total.Add(s.TotalPrice)
			}
		}
		out = append(out, models.ClientTotal{Client: c, TotalSpent: total})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSpent.GreaterThan(out[j].TotalSpent)
	})
	return out
}

// GroupSales folds sale lines into transactions keyed by date, buyer and
// payment method, newest first.
func GroupSales(sales []models.Sale, resolver *traceability.FormatResolver) []models.SaleGroup {
	idx := make(map[string]int)
	groups := make([]models.SaleGroup, 0)

	for _, s := range sales {
		buyer := strings.TrimSpace(s.BuyerName)
		key := s.Date + "-" + orDefault(buyer, unknownBuyer) + "-" + string(s.PaymentMethod)

		i, ok := idx[key]
		if !ok {
			method := s.PaymentMethod
			if method == "" {
				method = defaultMethod
			}
			i = len(groups)
			idx[key] = i
			groups = append(groups, models.SaleGroup{
				Key:           key,
				Date:          s.Date,
				BuyerName:     orDefault(s.BuyerName, directSale),
				PaymentMethod: method,
				TotalPrice:    decimal.Zero,
			})
		}

		format, _ := resolver.Resolve(s)
		groups[i].Items = append(groups[i].Items, models.SaleLine{Sale: s, EffectiveFormat: format})
		groups[i].TotalPrice = groups[i].TotalPrice.Add(s.TotalPrice)
	}

	SortSaleGroups(groups, SortByDate, false)
	return groups
}

// SortSaleGroups orders groups in place by key. Unknown keys keep the order.
func SortSaleGroups(groups []models.SaleGroup, key SortKey, ascending bool) {
	var less func(a, b models.SaleGroup) bool
	switch key {
	case SortByDate:
		less = func(a, b models.SaleGroup) bool { return a.Date < b.Date }
	case SortByClient:
		less = func(a, b models.SaleGroup) bool { return strings.ToLower(a.BuyerName) < strings.ToLower(b.BuyerName) }
	case SortByPayment:
		less = func(a, b models.SaleGroup) bool { return a.PaymentMethod < b.PaymentMethod }
	case SortByTotal:
		less = func(a, b models.SaleGroup) bool { return a.TotalPrice.LessThan(b.TotalPrice) }
	case SortByItems:
		less = func(a, b models.SaleGroup) bool { return len(a.Items) < len(b.Items) }
	default:
		return
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if ascending {
			return less(groups[i], groups[j])
		}
		return less(groups[j], groups[i])
	})
}

// GroupExpenses folds expenses into receipts keyed by date and store, newest first.
func GroupExpenses(expenses []models.Expense) []models.ExpenseGroup {
	idx := make(map[string]int)
	groups := make([]models.ExpenseGroup, 0)

	for _, e := range expenses {
		store := orDefault(strings.TrimSpace(e.Store), unknownStore)
		key := e.Date + "-" + strings.ToLower(store)
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, models.ExpenseGroup{Key: key, Date: e.Date, Store: store, Total: decimal.Zero})
		}
		groups[i].Items = append(groups[i].Items, e)
		groups[i].Total = groups[i].Total.Add(e.Amount)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
