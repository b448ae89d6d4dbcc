// Package repository defines the record store contract shared by every backend.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/domain/models"
)

// ErrNotFound is returned when an identifier does not exist in a collection.
var ErrNotFound = errors.New("record not found")

// ErrQuotaExceeded is returned when a write would exceed the storage capacity.
// Callers must surface it to the user rather than retry.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Collection names, also used as bucket and collection identifiers by the backends.
const (
	CollectionApiaries      = "apiaries"
	CollectionHives         = "hives"
	CollectionMovements     = "movements"
	CollectionInterventions = "interventions"
	CollectionFeedings      = "feedings"
	CollectionHarvests      = "harvests"
	CollectionPackaging     = "packaging"
	CollectionProducts      = "products"
	CollectionSales         = "sales"
	CollectionExpenses      = "expenses"
	CollectionClients       = "clients"
)

// Setting keys for singleton values.
const (
	SettingProfile    = "profile"
	SettingCostConfig = "cost_config"
	SettingHoneyTypes = "honey_types"
	SettingFoodTypes  = "food_types"
)

// Collection is an ordered list of records of one type. GetAll returns items
// in insertion order.
type Collection[T models.Record[T]] interface {
	GetAll(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// Add stores item, assigning a new identifier when item has none.
	Add(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	// Replace drops every record and stores items in order.
	Replace(ctx context.Context, items []T) error
}

// Settings persists singleton values under a key.
type Settings interface {
	// LoadSetting decodes the value stored under key into dst and reports
	// whether a value was present.
	LoadSetting(ctx context.Context, key string, dst any) (bool, error)
	SaveSetting(ctx context.Context, key string, value any) error
	DeleteSetting(ctx context.Context, key string) error
}

// Store groups every collection of the application.
type Store interface {
	Settings

	Apiaries() Collection[models.Apiary]
	Hives() Collection[models.Hive]
	Movements() Collection[models.ColonyMovement]
	Interventions() Collection[models.SanitaryIntervention]
	Feedings() Collection[models.Feeding]
	Harvests() Collection[models.Harvest]
	Packaging() Collection[models.Packaging]
	Products() Collection[models.Product]
	Sales() Collection[models.Sale]
	Expenses() Collection[models.Expense]
	Clients() Collection[models.Client]

	Close(ctx context.Context) error
}

// DefaultHoneyTypes seeds the honey type picker.
var DefaultHoneyTypes = []string{"Toutes fleurs", "Acacia", "Châtaignier", "Printemps", "Été", "Forêt", "Lavande", "Sapin"}

// DefaultFoodTypes seeds the feeding picker.
var DefaultFoodTypes = []string{"Sirop 50/50", "Sirop 70/30", "Sirop de stimulation", "Candi", "Candi Protéiné", "Sucre"}

// DefaultCostConfig is used until the beekeeper saves their own unit costs.
func DefaultCostConfig() models.UnitCostConfig {
	return models.UnitCostConfig{
		Jar250:          decimal.RequireFromString("0.30"),
		Jar500:          decimal.RequireFromString("0.45"),
		Jar1kg:          decimal.RequireFromString("0.60"),
		Lid:             decimal.RequireFromString("0.15"),
		Label250:        decimal.RequireFromString("0.10"),
		Label500:        decimal.RequireFromString("0.10"),
		Label1kg:        decimal.RequireFromString("0.12"),
		FeedingYearly:   decimal.NewFromInt(300),
		TreatmentYearly: decimal.NewFromInt(150),
	}
}

// LoadCostConfig returns the saved unit costs or the defaults.
func LoadCostConfig(ctx context.Context, s Settings) (models.UnitCostConfig, error) {
	cfg := DefaultCostConfig()
	if _, err := s.LoadSetting(ctx, SettingCostConfig, &cfg); err != nil {
		return models.UnitCostConfig{}, fmt.Errorf("load cost config: %w", err)
	}
	return cfg, nil
}

// LoadProfile returns the saved beekeeper profile, zero-valued when absent.
func LoadProfile(ctx context.Context, s Settings) (models.Profile, error) {
	var profile models.Profile
	if _, err := s.LoadSetting(ctx, SettingProfile, &profile); err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

// LoadStringList returns the list stored under key, or fallback when absent or empty.
func LoadStringList(ctx context.Context, s Settings, key string, fallback []string) ([]string, error) {
	var list []string
	found, err := s.LoadSetting(ctx, key, &list)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(list) == 0 {
		return append([]string(nil), fallback...), nil
	}
	return list, nil
}

// Snapshot is a consistent read of the records used by the derived views.
type Snapshot struct {
	Products  []models.Product
	Packaging []models.Packaging
	Sales     []models.Sale
	Harvests  []models.Harvest
	Expenses  []models.Expense
	Clients   []models.Client
	Costs     models.UnitCostConfig
}

// LoadSnapshot reads every collection needed by the dashboard in one pass.
func LoadSnapshot(ctx context.Context, s Store) (*Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Products, err = s.Products().GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if snap.Packaging, err = s.Packaging().GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load packaging: %w", err)
	}
	if snap.Sales, err = s.Sales().GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	if snap.Harvests, err = s.Harvests().GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load harvests: %w", err)
	}
	if snap.Expenses, err = s.Expenses().GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	if snap.Clients, err = s.Clients().GetAll(ctx); err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	if snap.Costs, err = LoadCostConfig(ctx, s); err != nil {
		return nil, err
	}
	return &snap, nil
}
