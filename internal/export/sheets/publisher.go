// Package sheets publishes stock and financial figures to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
)

// Default tab names.
const (
	StockSheet   = "Stock"
	SummarySheet = "Resume"
)

// Publisher renders reports into spreadsheet rows.
type Publisher struct {
	repo         Repository
	stockRange   string
	summaryRange string
	logger       *zap.Logger
}

// NewPublisher wires a publisher writing the stock table to the Stock tab and
// one summary row per run to the Resume tab.
func NewPublisher(repo Repository, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		repo:         repo,
		stockRange:   StockSheet,
		summaryRange: SummarySheet + "!A:E",
		logger:       logger,
	}
}

// PublishStock overwrites the stock tab with the current valued inventory.
func (p *Publisher) PublishStock(ctx context.Context, report models.StockReport) error {
	rows := make([][]interface{}, 0, len(report.Items)+2)
	rows = append(rows, []interface{}{"Produit", "Quantité", "Valeur"})
	for _, item := range report.Items {
		rows = append(rows, []interface{}{item.Label, item.Quantity, item.Value.StringFixed(2)})
	}
	rows = append(rows, []interface{}{"Total", "", report.TotalValue.StringFixed(2)})

	if err := p.repo.ReplaceRange(ctx, p.stockRange, rows); err != nil {
		return fmt.Errorf("publish stock: %w", err)
	}
	p.logger.Info("stock published", zap.Int("items", len(report.Items)))
	return nil
}

// AppendSummary adds one dated row with the dashboard headline figures. A date
// that already has a row is left alone so reruns do not duplicate it.
func (p *Publisher) AppendSummary(ctx context.Context, date string, d models.Dashboard) error {
	existing, err := p.repo.ReadRange(ctx, p.summaryRange)
	if err != nil {
		return fmt.Errorf("read summary: %w", err)
	}
	for _, r := range existing {
		if len(r) > 0 && fmt.Sprint(r[0]) == date {
			p.logger.Debug("summary row already present", zap.String("date", date))
			return nil
		}
	}

	row := []interface{}{
		date,
		d.Financials.Year,
		d.Stock.TotalValue.StringFixed(2),
		d.Financials.TotalSales.StringFixed(2),
		d.Financials.TotalExpenses.StringFixed(2),
	}
	if err := p.repo.WriteRow(ctx, p.summaryRange, row); err != nil {
		return fmt.Errorf("append summary: %w", err)
	}
	return nil
}
