package traceability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/pkg/textnorm"
)

// ErrInvalidPackaging is returned when a lot misses its label or quantity.
var ErrInvalidPackaging = errors.New("invalid packaging lot")

// ErrInvalidHarvest is returned when a harvest has no honey type or weight.
var ErrInvalidHarvest = errors.New("invalid harvest")

const (
	defaultPotSize = "500g"
	// ddmYears is the shelf life printed on jars.
	ddmYears = 2
)

// PackagingRequest registers a lot and optionally publishes it in the catalog.
type PackagingRequest struct {
	Lot         models.Packaging `json:"lot"`
	ProductName string           `json:"productName,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	ImageURL    string           `json:"imageUrl,omitempty"`
}

// PackagingResult is what Register stored.
type PackagingResult struct {
	Lot     models.Packaging `json:"lot"`
	Product *models.Product  `json:"product,omitempty"`
	Created bool             `json:"productCreated"`
}

// PackagingService records harvests and conditioning events and keeps the
// catalog pointing at the newest lot of each product.
type PackagingService struct {
	store     repository.Store
	allocator *CostAllocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewPackagingService wires the service on store.
func NewPackagingService(store repository.Store, allocator *CostAllocator, logger *zap.Logger) *PackagingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if allocator == nil {
		allocator = NewCostAllocator()
	}
	return &PackagingService{store: store, allocator: allocator, logger: logger, now: time.Now}
}

// Register validates and stores a lot with its computed cost, then updates or
// creates the matching product when a product name and a positive price are given.
func (s *PackagingService) Register(ctx context.Context, req PackagingRequest) (PackagingResult, error) {
	lot := req.Lot
	lot.FinalBatchNumber = strings.TrimSpace(lot.FinalBatchNumber)
	if lot.FinalBatchNumber == "" {
		return PackagingResult{}, fmt.Errorf("%w: batch number is required", ErrInvalidPackaging)
	}
	if lot.QuantityPots <= 0 {
		return PackagingResult{}, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidPackaging)
	}
	if lot.Date == "" {
		lot.Date = s.now().Format(models.DateLayout)
	}
	if lot.DDM == "" {
		lot.DDM = models.AddYears(lot.Date, ddmYears)
	}
	if lot.HarvestBatchIDs == nil {
		lot.HarvestBatchIDs = []string{}
	}

	if err := s.rememberHoneyType(ctx, lot.HoneyType); err != nil {
		return PackagingResult{}, err
	}

	harvests, err := s.store.Harvests().GetAll(ctx)
	if err != nil {
		return PackagingResult{}, fmt.Errorf("load harvests: %w", err)
	}
	costs, err := repository.LoadCostConfig(ctx, s.store)
	if err != nil {
		return PackagingResult{}, err
	}
	lot.CalculatedCost = s.allocator.LotCost(LotInputFrom(lot), harvests, costs).Total

	lot, err = s.store.Packaging().Add(ctx, lot)
	if err != nil {
		return PackagingResult{}, fmt.Errorf("save packaging lot: %w", err)
	}
	result := PackagingResult{Lot: lot}

	name := strings.TrimSpace(req.ProductName)
	if name == "" || !req.Price.IsPositive() {
		return result, nil
	}

	product, created, err := s.upsertProduct(ctx, lot, name, req.Price, req.ImageURL)
	if err != nil {
		return result, err
	}
	result.Product = &product
	result.Created = created

	s.logger.Info("packaging lot registered",
		zap.String("lot_id", lot.ID),
		zap.String("batch", lot.FinalBatchNumber),
		zap.String("product_id", product.ID),
		zap.Bool("product_created", created),
	)
	return result, nil
}

// upsertProduct repoints the first product of the same name and format whose
// active lot dates from the new lot's year, or which has no lot yet.
func (s *PackagingService) upsertProduct(ctx context.Context, lot models.Packaging, name string, price decimal.Decimal, imageURL string) (models.Product, bool, error) {
	products, err := s.store.Products().GetAll(ctx)
	if err != nil {
		return models.Product{}, false, fmt.Errorf("load products: %w", err)
	}
	lots, err := s.store.Packaging().GetAll(ctx)
	if err != nil {
		return models.Product{}, false, fmt.Errorf("load packaging: %w", err)
	}

	year, ok := models.YearOf(lot.Date)
	if !ok {
		year = s.now().Year()
	}
	nameKey, formatKey := textnorm.Key(name), textnorm.Key(lot.PotSize)

	for _, p := range products {
		if textnorm.Key(p.Name) != nameKey || textnorm.Key(p.PotSize) != formatKey {
			continue
		}
		if p.CurrentBatchID != "" {
			active, found := ActiveLot(p, lots)
			if !found {
				continue
			}
			if y, ok := models.YearOf(active.Date); !ok || y != year {
				continue
			}
		}

		p.Price = price
		if imageURL != "" {
			p.ImageURL = imageURL
		}
		p.CurrentBatchID = lot.ID
		if err := s.store.Products().Update(ctx, p); err != nil {
			return models.Product{}, false, fmt.Errorf("update product %s: %w", p.ID, err)
		}
		return p, false, nil
	}

	potSize := lot.PotSize
	if strings.TrimSpace(potSize) == "" {
		potSize = defaultPotSize
	}
	created, err := s.store.Products().Add(ctx, models.Product{
		Name:           name,
		PotSize:        potSize,
		Price:          price,
		ImageURL:       imageURL,
		CurrentBatchID: lot.ID,
	})
	if err != nil {
		return models.Product{}, false, fmt.Errorf("create product: %w", err)
	}
	return created, true, nil
}

// UpdateProduct saves product and, when lotQuantity is given and differs from
// the active lot's quantity, corrects that lot.
func (s *PackagingService) UpdateProduct(ctx context.Context, product models.Product, lotQuantity *float64) error {
	if err := s.store.Products().Update(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if lotQuantity == nil || product.CurrentBatchID == "" {
		return nil
	}

	lot, err := s.store.Packaging().Get(ctx, product.CurrentBatchID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug("product points at a missing lot", zap.String("product_id", product.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load active lot: %w", err)
	}
	if lot.QuantityPots == *lotQuantity {
		return nil
	}

	s.logger.Info("correcting lot quantity",
		zap.String("lot_id", lot.ID),
		zap.Float64("from", lot.QuantityPots),
		zap.Float64("to", *lotQuantity),
	)
	lot.QuantityPots = *lotQuantity
	if err := s.store.Packaging().Update(ctx, lot); err != nil {
		return fmt.Errorf("update lot quantity: %w", err)
	}
	return nil
}

// RecordHarvest stores a harvest with a generated bulk batch identifier.
func (s *PackagingService) RecordHarvest(ctx context.Context, harvest models.Harvest) (models.Harvest, error) {
	harvest.HoneyType = strings.TrimSpace(harvest.HoneyType)
	if harvest.HoneyType == "" || harvest.QuantityKg <= 0 {
		return models.Harvest{}, fmt.Errorf("%w: honey type and weight are required", ErrInvalidHarvest)
	}
	if harvest.Date == "" {
		harvest.Date = s.now().Format(models.DateLayout)
	}
	if harvest.BatchID == "" {
		harvest.BatchID = fmt.Sprintf("VRAC-%d-%s", s.now().Year(), strings.ToUpper(uuid.NewString()[:6]))
	}
	if err := s.rememberHoneyType(ctx, harvest.HoneyType); err != nil {
		return models.Harvest{}, err
	}

	saved, err := s.store.Harvests().Add(ctx, harvest)
	if err != nil {
		return models.Harvest{}, fmt.Errorf("save harvest: %w", err)
	}
	return saved, nil
}

// LotCost prices a stored lot with the current unit costs.
func (s *PackagingService) LotCost(ctx context.Context, lotID string) (models.LotCost, models.Packaging, error) {
	lot, err := s.store.Packaging().Get(ctx, lotID)
	if err != nil {
		return models.LotCost{}, models.Packaging{}, err
	}
	cost, err := s.EstimateCost(ctx, LotInputFrom(lot))
	return cost, lot, err
}

// EstimateCost prices a lot that may not exist yet.
func (s *PackagingService) EstimateCost(ctx context.Context, input LotInput) (models.LotCost, error) {
	harvests, err := s.store.Harvests().GetAll(ctx)
	if err != nil {
		return models.LotCost{}, fmt.Errorf("load harvests: %w", err)
	}
	costs, err := repository.LoadCostConfig(ctx, s.store)
	if err != nil {
		return models.LotCost{}, err
	}
	return s.allocator.LotCost(input, harvests, costs), nil
}

// rememberHoneyType appends a new honey type to the saved picker list.
func (s *PackagingService) rememberHoneyType(ctx context.Context, honeyType string) error {
	honeyType = strings.TrimSpace(honeyType)
	if honeyType == "" {
		return nil
	}
	types, err := repository.LoadStringList(ctx, s.store, repository.SettingHoneyTypes, repository.DefaultHoneyTypes)
	if err != nil {
		return err
	}
	key := textnorm.Key(honeyType)
	for _, t := range types {
		if textnorm.Key(t) == key {
			return nil
		}
	}
	if err := s.store.SaveSetting(ctx, repository.SettingHoneyTypes, append(types, honeyType)); err != nil {
		return fmt.Errorf("save honey types: %w", err)
	}
	return nil
}
