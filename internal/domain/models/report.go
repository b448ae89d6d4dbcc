package models

import "github.com/shopspring/decimal"

// StockItem is the remaining stock of one product's active lot.
type StockItem struct {
	ProductID string          `json:"productId"`
	Label     string          `json:"label"`
	Quantity  float64         `json:"quantity"`
	Value     decimal.Decimal `json:"value"`
}

// StockReport is the valued inventory. TotalValue is the sum of Items values.
type StockReport struct {
	TotalValue decimal.Decimal `json:"totalValue"`
	Items      []StockItem     `json:"items"`
}

// LotCost splits the production cost of a lot into direct and allocated parts.
type LotCost struct {
	Material       decimal.Decimal `json:"material"`
	Indirect       decimal.Decimal `json:"indirect"`
	Total          decimal.Decimal `json:"total"`
	Year           int             `json:"year"`
	HarvestKg      float64         `json:"harvestKg"`
	AnnualOverhead decimal.Decimal `json:"annualOverhead"`
}

// LabelAmount is a revenue bucket keyed by product label.
type LabelAmount struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// PaymentAmount is a revenue bucket keyed by payment method.
type PaymentAmount struct {
	Method string          `json:"method"`
	Value  decimal.Decimal `json:"value"`
}

// YearFinancials holds the dashboard figures of one calendar year.
type YearFinancials struct {
	Year          int             `json:"year"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	ByLabel       []LabelAmount   `json:"byLabel"`
	ByPayment     []PaymentAmount `json:"byPayment"`
}

// Dashboard aggregates the figures refreshed on every view.
type Dashboard struct {
	Stock      StockReport    `json:"stock"`
	Financials YearFinancials `json:"financials"`
}

// ClientTotal is a client ranked by cumulated spend.
type ClientTotal struct {
	Client     Client          `json:"client"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// SaleLine is a sale with its effective format resolved for display.
type SaleLine struct {
	Sale
	EffectiveFormat string `json:"effectiveFormat"`
}

// SaleGroup gathers the lines of one transaction: same day, buyer and payment.
type SaleGroup struct {
	Key           string          `json:"id"`
	Date          string          `json:"date"`
	BuyerName     string          `json:"buyerName"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Items         []SaleLine      `json:"items"`
}

// ExpenseGroup gathers the expenses of one receipt: same day and store.
type ExpenseGroup struct {
	Key   string          `json:"id"`
	Date  string          `json:"date"`
	Store string          `json:"store"`
	Total decimal.Decimal `json:"total"`
	Items []Expense       `json:"items"`
}

// CatalogEntry is a product with the state of its active lot.
type CatalogEntry struct {
	Product   Product    `json:"product"`
	Year      string     `json:"year"`
	Remaining float64    `json:"remaining"`
	Lot       *Packaging `json:"lot,omitempty"`
	Cost      *LotCost   `json:"cost,omitempty"`
}
