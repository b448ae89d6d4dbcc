package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

const (
	noLotYear      = "Sans Lot / Année inconnue"
	missingLotYear = "Lot introuvable"
	topLabels      = 3
)

// Service derives dashboard figures from a snapshot of the store.
type Service struct {
	store     repository.Store
	matcher   traceability.Matcher
	allocator *traceability.CostAllocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store repository.Store, matcher traceability.Matcher, allocator *traceability.CostAllocator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if allocator == nil {
		allocator = traceability.NewCostAllocator()
	}
	return &Service{store: store, matcher: matcher, allocator: allocator, logger: logger, now: time.Now}
}

// Dashboard returns the stock report and the financials of year, or of the
// current year when year is zero.
func (s *Service) Dashboard(ctx context.Context, year int) (models.Dashboard, error) {
	snap, err := repository.LoadSnapshot(ctx, s.store)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("load snapshot: %w", err)
	}
	if year <= 0 {
		year = s.now().Year()
	}
	return models.Dashboard{
		Stock:      traceability.ComputeStock(s.matcher, snap.Products, snap.Packaging, snap.Sales),
		Financials: ComputeYearFinancials(snap.Sales, snap.Expenses, snap.Products, snap.Packaging, year),
	}, nil
}

// Stock returns the valued inventory.
func (s *Service) Stock(ctx context.Context) (models.StockReport, error) {
	snap, err := repository.LoadSnapshot(ctx, s.store)
	if err != nil {
		return models.StockReport{}, fmt.Errorf("load snapshot: %w", err)
	}
	return traceability.ComputeStock(s.matcher, snap.Products, snap.Packaging, snap.Sales), nil
}

// Catalog lists every product with its remaining pots, its lot year and the
// current cost estimate of its active lot.
func (s *Service) Catalog(ctx context.Context) ([]models.CatalogEntry, error) {
	snap, err := repository.LoadSnapshot(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(snap.Products))
	for _, p := range snap.Products {
		entry := models.CatalogEntry{Product: p, Year: noLotYear}
		if p.CurrentBatchID != "" {
			lot, ok := traceability.ActiveLot(p, snap.Packaging)
			if !ok {
				entry.Year = missingLotYear
				s.logger.Debug("product points at a missing lot", zap.String("product_id", p.ID), zap.String("lot_id", p.CurrentBatchID))
			} else {
				cost := s.allocator.LotCost(traceability.LotInputFrom(lot), snap.Harvests, snap.Costs)
				entry.Year = traceability.LotYearLabel(lot)
				entry.Lot = &lot
				entry.Cost = &cost
				entry.Remaining = traceability.RemainingForProduct(s.matcher, p, snap.Packaging, snap.Sales)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SalesBook returns the sales grouped into transactions, sorted by key.
func (s *Service) SalesBook(ctx context.Context, key SortKey, ascending bool) ([]models.SaleGroup, error) {
	snap, err := repository.LoadSnapshot(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	groups := GroupSales(snap.Sales, traceability.NewFormatResolver(snap.Products, snap.Packaging))
	if key != "" && (key != SortByDate || ascending) {
		SortSaleGroups(groups, key, ascending)
	}
	return groups, nil
}

// ExpenseBook returns the expenses grouped into receipts.
func (s *Service) ExpenseBook(ctx context.Context) ([]models.ExpenseGroup, error) {
	expenses, err := s.store.Expenses().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return GroupExpenses(expenses), nil
}

// ClientRanking returns clients sorted by total spend.
func (s *Service) ClientRanking(ctx context.Context) ([]models.ClientTotal, error) {
	clients, err := s.store.Clients().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	sales, err := s.store.Sales().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return ClientTotals(clients, sales), nil
}

// WeeklySummary renders a short text digest for the week ending at now.
func (s *Service) WeeklySummary(ctx context.Context, now time.Time) (string, error) {
	snap, err := repository.LoadSnapshot(ctx, s.store)
	if err != nil {
		return "", fmt.Errorf("load snapshot: %w", err)
	}

	end := now.Format(models.DateLayout)
	start := now.AddDate(0, 0, -6).Format(models.DateLayout)

	weekSales := decimal.Zero
	var weekPots float64
	for _, sale := range snap.Sales {
		day := sale.Date
		if len(day) > len(models.DateLayout) {
			day = day[:len(models.DateLayout)]
		}
		if day >= start && day <= end {
			weekSales = weekSales.Add(sale.TotalPrice)
			weekPots += sale.QuantitySold
		}
	}

	stock := traceability.ComputeStock(s.matcher, snap.Products, snap.Packaging, snap.Sales)
	fin := ComputeYearFinancials(snap.Sales, snap.Expenses, snap.Products, snap.Packaging, now.Year())

	var b strings.Builder
	fmt.Fprintf(&b, "Semaine du %s au %s\n", start, end)
	fmt.Fprintf(&b, "Ventes: %s € (%g pots)\n", weekSales.StringFixed(2), weekPots)
	fmt.Fprintf(&b, "Stock: %s € sur %d références\n", stock.TotalValue.StringFixed(2), len(stock.Items))
	fmt.Fprintf(&b, "%d: %s € de ventes, %s € de dépenses", fin.Year, fin.TotalSales.StringFixed(2), fin.TotalExpenses.StringFixed(2))

	for i, l := range TopLabels(fin.ByLabel, topLabels) {
		fmt.Fprintf(&b, "\n%d. %s: %s €", i+1, l.Label, l.Value.StringFixed(2))
	}

	s.logger.Debug("weekly summary computed", zap.String("start", start), zap.String("end", end))
	return b.String(), nil
}

// TopLabels returns up to n label buckets by decreasing revenue.
func TopLabels(labels []models.LabelAmount, n int) []models.LabelAmount {
	sorted := append([]models.LabelAmount(nil), labels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value.GreaterThan(sorted[j].Value) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
