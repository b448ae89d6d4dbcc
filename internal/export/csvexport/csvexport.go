// Package csvexport renders the sales book, the expense book and the stock
// report as CSV tables.
package csvexport

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/mamadbah2/apigest/internal/domain/models"
)

// SaleRow is one sale line of the sales book.
type SaleRow struct {
	Date          string  `csv:"date"`
	Buyer         string  `csv:"buyer"`
	PaymentMethod string  `csv:"payment_method"`
	Lot           string  `csv:"lot"`
	Product       string  `csv:"product"`
	Format        string  `csv:"format"`
	Quantity      float64 `csv:"quantity"`
	Total         string  `csv:"total"`
}

// ExpenseRow is one expense line of the expense book.
type ExpenseRow struct {
	Date        string `csv:"date"`
	Store       string `csv:"store"`
	Category    string `csv:"category"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
}

// StockRow is one product of the stock report.
type StockRow struct {
	ProductID string  `csv:"product_id"`
	Label     string  `csv:"label"`
	Quantity  float64 `csv:"quantity"`
	Value     string  `csv:"value"`
}

// SaleRows flattens groups in their given order.
func SaleRows(groups []models.SaleGroup) []SaleRow {
	rows := make([]SaleRow, 0, len(groups))
	for _, g := range groups {
		for _, line := range g.Items {
			rows = append(rows, SaleRow{
				Date:          g.Date,
				Buyer:         g.BuyerName,
				PaymentMethod: string(g.PaymentMethod),
				Lot:           line.FinalBatchNumber,
				Product:       line.ProductName,
				Format:        line.EffectiveFormat,
				Quantity:      line.QuantitySold,
				Total:         line.TotalPrice.StringFixed(2),
			})
		}
	}
	return rows
}

// WriteSales writes the sales book.
func WriteSales(w io.Writer, groups []models.SaleGroup) error {
	return write(w, SaleRows(groups), "sales")
}

// WriteExpenses writes the expense book.
func WriteExpenses(w io.Writer, groups []models.ExpenseGroup) error {
	rows := make([]ExpenseRow, 0, len(groups))
	for _, g := range groups {
		for _, e := range g.Items {
			rows = append(rows, ExpenseRow{
				Date:        e.Date,
				Store:       g.Store,
				Category:    string(e.Category),
				Description: e.Description,
				Amount:      e.Amount.StringFixed(2),
			})
		}
	}
	return write(w, rows, "expenses")
}

// WriteStock writes the stock report.
func WriteStock(w io.Writer, report models.StockReport) error {
	rows := make([]StockRow, 0, len(report.Items))
	for _, item := range report.Items {
		rows = append(rows, StockRow{
			ProductID: item.ProductID,
			Label:     item.Label,
			Quantity:  item.Quantity,
			Value:     item.Value.StringFixed(2),
		})
	}
	return write(w, rows, "stock")
}

func write[T any](w io.Writer, rows []T, name string) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write %s csv: %w", name, err)
	}
	return nil
}
