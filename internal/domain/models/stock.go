package models

import "github.com/shopspring/decimal"

// Record is implemented by every persisted list item. WithID returns a copy
// carrying the store-assigned identifier.
type Record[T any] interface {
	RecordID() string
	WithID(id string) T
}

// Packaging is a lot of jars filled on one date. FinalBatchNumber is the
// free-text label printed on the jars and is not guaranteed unique.
type Packaging struct {
	ID               string          `json:"id" bson:"_id"`
	Date             string          `json:"date" bson:"date"`
	HarvestBatchIDs  []string        `json:"harvestBatchIds" bson:"harvestBatchIds"`
	QuantityPots     float64         `json:"quantityPots" bson:"quantityPots"`
	PotSize          string          `json:"potSize" bson:"potSize"`
	FinalBatchNumber string          `json:"finalBatchNumber" bson:"finalBatchNumber"`
	DDM              string          `json:"ddm" bson:"ddm"`
	HoneyType        string          `json:"honeyType,omitempty" bson:"honeyType,omitempty"`
	CalculatedCost   decimal.Decimal `json:"calculatedCost" bson:"calculatedCost"`
}

// Product is a sellable catalog entry pointing at its currently active lot.
type Product struct {
	ID             string          `json:"id" bson:"_id"`
	Name           string          `json:"name" bson:"name"`
	PotSize        string          `json:"potSize" bson:"potSize"`
	Price          decimal.Decimal `json:"price" bson:"price"`
	ImageURL       string          `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CurrentBatchID string          `json:"currentBatchId,omitempty" bson:"currentBatchId,omitempty"`
}

// Client is a registered buyer.
type Client struct {
	ID      string `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	Notes   string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// BuyerType is kept for compatibility with older sale records.
type BuyerType string

const (
	BuyerDirect    BuyerType = "DIRECT"
	BuyerWholesale BuyerType = "WHOLESALE"
)

// PaymentMethod identifies how a sale was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "ESPECES"
	PaymentCard     PaymentMethod = "CB"
	PaymentCheque   PaymentMethod = "CHEQUE"
	PaymentTransfer PaymentMethod = "VIREMENT"
	PaymentDonation PaymentMethod = "DON"
	PaymentOther    PaymentMethod = "AUTRE"
)

// Sale is one line of a transaction. Its link to a lot is inferred from the
// free-text FinalBatchNumber, ProductName and Format snapshots.
type Sale struct {
	ID               string          `json:"id" bson:"_id"`
	Date             string          `json:"date" bson:"date"`
	FinalBatchNumber string          `json:"finalBatchNumber" bson:"finalBatchNumber"`
	QuantitySold     float64         `json:"quantitySold" bson:"quantitySold"`
	BuyerType        BuyerType       `json:"buyerType,omitempty" bson:"buyerType,omitempty"`
	BuyerName        string          `json:"buyerName,omitempty" bson:"buyerName,omitempty"`
	ClientID         string          `json:"clientId,omitempty" bson:"clientId,omitempty"`
	PaymentMethod    PaymentMethod   `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	TotalPrice       decimal.Decimal `json:"totalPrice" bson:"totalPrice"`
	ProductName      string          `json:"productName,omitempty" bson:"productName,omitempty"`
	Format           string          `json:"format,omitempty" bson:"format,omitempty"`
}

// ExpenseCategory buckets operating expenses.
type ExpenseCategory string

const (
	ExpenseEquipment ExpenseCategory = "MATERIEL"
	ExpenseFeeding   ExpenseCategory = "NOURRISSEMENT"
	ExpenseCare      ExpenseCategory = "SOIN"
	ExpensePackaging ExpenseCategory = "CONDITIONNEMENT"
	ExpenseAdmin     ExpenseCategory = "ADMINISTRATIF"
	ExpenseOther     ExpenseCategory = "AUTRE"
)

// Expense captures an operating expense.
type Expense struct {
	ID          string          `json:"id" bson:"_id"`
	Date        string          `json:"date" bson:"date"`
	Store       string          `json:"store,omitempty" bson:"store,omitempty"`
	Description string          `json:"description" bson:"description"`
	Category    ExpenseCategory `json:"category" bson:"category"`
	Amount      decimal.Decimal `json:"amount" bson:"amount"`
}

// UnitCostConfig holds unit supply prices and the two global annual overheads.
type UnitCostConfig struct {
	Jar250          decimal.Decimal `json:"jar250" bson:"jar250"`
	Jar500          decimal.Decimal `json:"jar500" bson:"jar500"`
	Jar1kg          decimal.Decimal `json:"jar1kg" bson:"jar1kg"`
	Lid             decimal.Decimal `json:"lid" bson:"lid"`
	Label250        decimal.Decimal `json:"label250" bson:"label250"`
	Label500        decimal.Decimal `json:"label500" bson:"label500"`
	Label1kg        decimal.Decimal `json:"label1kg" bson:"label1kg"`
	FeedingYearly   decimal.Decimal `json:"feedingYearly" bson:"feedingYearly"`
	TreatmentYearly decimal.Decimal `json:"treatmentYearly" bson:"treatmentYearly"`
}

// AnnualOverhead is the global feeding plus treatment figure.
func (c UnitCostConfig) AnnualOverhead() decimal.Decimal {
	return c.FeedingYearly.Add(c.TreatmentYearly)
}

func (p Packaging) RecordID() string { return p.ID }

func (p Packaging) WithID(id string) Packaging { p.ID = id; return p }

func (p Product) RecordID() string { return p.ID }

func (p Product) WithID(id string) Product { p.ID = id; return p }

func (c Client) RecordID() string { return c.ID }

func (c Client) WithID(id string) Client { c.ID = id; return c }

func (s Sale) RecordID() string { return s.ID }

func (s Sale) WithID(id string) Sale { s.ID = id; return s }

func (e Expense) RecordID() string { return e.ID }

func (e Expense) WithID(id string) Expense { e.ID = id; return e }
