// Package backup exports and restores the whole record store as one JSON document.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Version is written in every export.
const Version = "1.20"

// ErrInvalidBackup is returned when a document has no data section.
var ErrInvalidBackup = errors.New("invalid backup file")

// Backup is the export document.
type Backup struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Data      *Data  `json:"data"`
}

// Data holds every collection and setting. Sections missing from an imported
// document are left empty.
type Data struct {
	Profile       *models.Profile               `json:"profile,omitempty"`
	Apiaries      []models.Apiary               `json:"apiaries"`
	Hives         []models.Hive                 `json:"hives"`
	Movements     []models.ColonyMovement       `json:"movements"`
	Interventions []models.SanitaryIntervention `json:"interventions"`
	Feedings      []models.Feeding              `json:"feedings"`
	Harvests      []models.Harvest              `json:"harvests"`
	Packaging     []models.Packaging            `json:"packaging"`
	Sales         []models.Sale                 `json:"sales"`
	Products      []models.Product              `json:"products"`
	HoneyTypes    []string                      `json:"honeyTypes"`
	FoodTypes     []string                      `json:"foodTypes,omitempty"`
	Expenses      []models.Expense              `json:"expenses"`
	Clients       []models.Client               `json:"clients"`
	CostConfig    *models.UnitCostConfig        `json:"costConfig,omitempty"`
}

// Service reads and rewrites the whole store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a backup service on store.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Export snapshots every collection and setting.
func (s *Service) Export(ctx context.Context) (Backup, error) {
	var (
		data Data
		err  error
	)

	profile, err := repository.LoadProfile(ctx, s.store)
	if err != nil {
		return Backup{}, err
	}
	data.Profile = &profile
	costs, err := repository.LoadCostConfig(ctx, s.store)
	if err != nil {
		return Backup{}, err
	}
	data.CostConfig = &costs
	if data.HoneyTypes, err = repository.LoadStringList(ctx, s.store, repository.SettingHoneyTypes, repository.DefaultHoneyTypes); err != nil {
		return Backup{}, err
	}
	if data.FoodTypes, err = repository.LoadStringList(ctx, s.store, repository.SettingFoodTypes, repository.DefaultFoodTypes); err != nil {
		return Backup{}, err
	}

	if data.Apiaries, err = s.store.Apiaries().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export apiaries: %w", err)
	}
	if data.Hives, err = s.store.Hives().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export hives: %w", err)
	}
	if data.Movements, err = s.store.Movements().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export movements: %w", err)
	}
	if data.Interventions, err = s.store.Interventions().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export interventions: %w", err)
	}
	if data.Feedings, err = s.store.Feedings().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export feedings: %w", err)
	}
	if data.Harvests, err = s.store.Harvests().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export harvests: %w", err)
	}
	if data.Packaging, err = s.store.Packaging().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export packaging: %w", err)
	}
	if data.Sales, err = s.store.Sales().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export sales: %w", err)
	}
	if data.Products, err = s.store.Products().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export products: %w", err)
	}
	if data.Expenses, err = s.store.Expenses().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export expenses: %w", err)
	}
	if data.Clients, err = s.store.Clients().GetAll(ctx); err != nil {
		return Backup{}, fmt.Errorf("export clients: %w", err)
	}

	return Backup{
		Version:   Version,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Data:      &data,
	}, nil
}

// Encode writes b as indented JSON.
func Encode(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// Decode reads a backup document.
func Decode(r io.Reader) (Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if b.Data == nil {
		return Backup{}, ErrInvalidBackup
	}
	return b, nil
}

// Import replaces the content of the store with b. Every collection and
// setting is cleared first, then the sections present in b are restored.
func (s *Service) Import(ctx context.Context, b Backup) error {
	if b.Data == nil {
		return ErrInvalidBackup
	}
	d := b.Data

	for _, key := range []string{repository.SettingProfile, repository.SettingCostConfig, repository.SettingHoneyTypes, repository.SettingFoodTypes} {
		if err := s.store.DeleteSetting(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}

	for i := range d.Interventions {
		d.Interventions[i].HiveIDs = foldHiveID(d.Interventions[i].HiveIDs, d.Interventions[i].LegacyHiveID)
		d.Interventions[i].LegacyHiveID = ""
	}
	for i := range d.Feedings {
		d.Feedings[i].HiveIDs = foldHiveID(d.Feedings[i].HiveIDs, d.Feedings[i].LegacyHiveID)
		d.Feedings[i].LegacyHiveID = ""
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{repository.CollectionApiaries, func() error { return s.store.Apiaries().Replace(ctx, d.Apiaries) }},
		{repository.CollectionHives, func() error { return s.store.Hives().Replace(ctx, d.Hives) }},
		{repository.CollectionMovements, func() error { return s.store.Movements().Replace(ctx, d.Movements) }},
		{repository.CollectionInterventions, func() error { return s.store.Interventions().Replace(ctx, d.Interventions) }},
		{repository.CollectionFeedings, func() error { return s.store.Feedings().Replace(ctx, d.Feedings) }},
		{repository.CollectionHarvests, func() error { return s.store.Harvests().Replace(ctx, d.Harvests) }},
		{repository.CollectionPackaging, func() error { return s.store.Packaging().Replace(ctx, d.Packaging) }},
		{repository.CollectionSales, func() error { return s.store.Sales().Replace(ctx, d.Sales) }},
		{repository.CollectionProducts, func() error { return s.store.Products().Replace(ctx, d.Products) }},
		{repository.CollectionExpenses, func() error { return s.store.Expenses().Replace(ctx, d.Expenses) }},
		{repository.CollectionClients, func() error { return s.store.Clients().Replace(ctx, d.Clients) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("restore %s: %w", step.name, err)
		}
	}

	if d.Profile != nil {
		if err := s.store.SaveSetting(ctx, repository.SettingProfile, d.Profile); err != nil {
			return fmt.Errorf("restore profile: %w", err)
		}
	}
	if len(d.HoneyTypes) > 0 {
		if err := s.store.SaveSetting(ctx, repository.SettingHoneyTypes, d.HoneyTypes); err != nil {
			return fmt.Errorf("restore honey types: %w", err)
		}
	}
	if len(d.FoodTypes) > 0 {
		if err := s.store.SaveSetting(ctx, repository.SettingFoodTypes, d.FoodTypes); err != nil {
			return fmt.Errorf("restore food types: %w", err)
		}
	}
	if d.CostConfig != nil {
		if err := s.store.SaveSetting(ctx, repository.SettingCostConfig, d.CostConfig); err != nil {
			return fmt.Errorf("restore cost config: %w", err)
		}
	}

	s.logger.Info("backup imported",
		zap.String("version", b.Version),
		zap.String("timestamp", b.Timestamp),
		zap.Int("sales", len(d.Sales)),
		zap.Int("packaging", len(d.Packaging)),
	)
	return nil
}

func foldHiveID(ids []string, legacy string) []string {
	if legacy == "" {
		return ids
	}
	for _, id := range ids {
		if id == legacy {
			return ids
		}
	}
	return append(ids, legacy)
}
