// Package sales records point-of-sale transactions.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/service/traceability"
)

var (
	// ErrEmptyCart is returned when a checkout has no positive line.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMissingClient is returned when neither a client nor a buyer name is given.
	ErrMissingClient = errors.New("a client or a buyer name is required")
)

// unknownLot labels sales of products that have no resolvable lot.
const unknownLot = "LOT-INCONNU"

// CartLine is one product in the basket.
type CartLine struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// CheckoutRequest is a basket paid in one go.
type CheckoutRequest struct {
	Date           string               `json:"date"`
	Cart           []CartLine           `json:"cart"`
	ClientID       string               `json:"clientId,omitempty"`
	ClientName     string               `json:"clientName,omitempty"`
	ClientLocation string               `json:"clientLocation,omitempty"`
	PaymentMethod  models.PaymentMethod `json:"paymentMethod"`
}

// CheckoutResult lists what was stored.
type CheckoutResult struct {
	Sales         []models.Sale   `json:"sales"`
	Client        models.Client   `json:"client"`
	ClientCreated bool            `json:"clientCreated"`
	Total         decimal.Decimal `json:"total"`
}

// Service turns baskets into sale records.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new checkout service.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Checkout records one sale per cart line. A buyer typed by hand becomes a new
// client. Donations are recorded at zero price but still take stock.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	lines := make([]CartLine, 0, len(req.Cart))
	for _, line := range req.Cart {
		if line.ProductID != "" && line.Quantity > 0 {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	clientID := strings.TrimSpace(req.ClientID)
	clientName := strings.TrimSpace(req.ClientName)
	if clientID == "" && clientName == "" {
		return CheckoutResult{}, ErrMissingClient
	}

	products, err := s.store.Products().GetAll(ctx)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("load products: %w", err)
	}
	lots, err := s.store.Packaging().GetAll(ctx)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("load packaging: %w", err)
	}

	// Resolve every line before writing anything.
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, line := range lines {
		if _, ok := byID[line.ProductID]; !ok {
			return CheckoutResult{}, fmt.Errorf("product %s: %w", line.ProductID, repository.ErrNotFound)
		}
	}

	result := CheckoutResult{Total: decimal.Zero}
	if clientID != "" {
		client, err := s.store.Clients().Get(ctx, clientID)
		if err != nil {
			return CheckoutResult{}, fmt.Errorf("load client: %w", err)
		}
		result.Client = client
	} else {
		client, err := s.store.Clients().Add(ctx, models.Client{Name: clientName, Address: strings.TrimSpace(req.ClientLocation)})
		if err != nil {
			return CheckoutResult{}, fmt.Errorf("create client: %w", err)
		}
		result.Client = client
		result.ClientCreated = true
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	date := req.Date
	if date == "" {
		date = s.now().Format(models.DateLayout)
	}

	for _, line := range lines {
		product := byID[line.ProductID]
		label := unknownLot
		if lot, ok := traceability.ActiveLot(product, lots); ok {
			label = lot.FinalBatchNumber
		}
		total := decimal.Zero
		if method != models.PaymentDonation {
			total = product.Price.Mul(decimal.NewFromFloat(line.Quantity))
		}

		sale, err := s.store.Sales().Add(ctx, models.Sale{
			Date:             date,
			FinalBatchNumber: label,
			QuantitySold:     line.Quantity,
			BuyerType:        models.BuyerDirect,
			BuyerName:        result.Client.Name,
			ClientID:         result.Client.ID,
			PaymentMethod:    method,
			TotalPrice:       total,
			ProductName:      product.Name,
			Format:           product.PotSize,
		})
		if err != nil {
			return result, fmt.Errorf("save sale for %s: %w", product.Name, err)
		}
		result.Sales = append(result.Sales, sale)
		result.Total = result.Total.Add(total)
	}

	s.logger.Info("checkout recorded",
		zap.String("client_id", result.Client.ID),
		zap.Int("lines", len(result.Sales)),
		zap.String("payment", string(method)),
		zap.String("total", result.Total.StringFixed(2)),
	)
	return result, nil
}
