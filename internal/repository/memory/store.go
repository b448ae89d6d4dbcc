// Package memory provides an in-process implementation of the record store
// used for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ repository.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithMaxRecords caps the total number of records across collections.
// Writes beyond the cap fail with repository.ErrQuotaExceeded.
func WithMaxRecords(n int) Option {
	return func(s *Store) { s.maxRecords = n }
}

// Store keeps every collection in memory behind a single lock.
type Store struct {
	mu         sync.RWMutex
	maxRecords int
	counters   []func() int
	settings   map[string][]byte

	apiaries      *collection[models.Apiary]
	hives         *collection[models.Hive]
	movements     *collection[models.ColonyMovement]
	interventions *collection[models.SanitaryIntervention]
	feedings      *collection[models.Feeding]
	harvests      *collection[models.Harvest]
	packaging     *collection[models.Packaging]
	products      *collection[models.Product]
	sales         *collection[models.Sale]
	expenses      *collection[models.Expense]
	clients       *collection[models.Client]
}

// New builds an empty store.
func New(opts ...Option) *Store {
	s := &Store{settings: make(map[string][]byte)}
	for _, opt := range opts {
		opt(s)
	}

	s.apiaries = newCollection[models.Apiary](s, repository.CollectionApiaries)
	s.hives = newCollection[models.Hive](s, repository.CollectionHives)
	s.movements = newCollection[models.ColonyMovement](s, repository.CollectionMovements)
	s.interventions = newCollection[models.SanitaryIntervention](s, repository.CollectionInterventions)
	s.feedings = newCollection[models.Feeding](s, repository.CollectionFeedings)
	s.harvests = newCollection[models.Harvest](s, repository.CollectionHarvests)
	s.packaging = newCollection[models.Packaging](s, repository.CollectionPackaging)
	s.products = newCollection[models.Product](s, repository.CollectionProducts)
	s.sales = newCollection[models.Sale](s, repository.CollectionSales)
	s.expenses = newCollection[models.Expense](s, repository.CollectionExpenses)
	s.clients = newCollection[models.Client](s, repository.CollectionClients)
	return s
}

func (s *Store) Apiaries() repository.Collection[models.Apiary] { return s.apiaries }

func (s *Store) Hives() repository.Collection[models.Hive] { return s.hives }

func (s *Store) Harvests() repository.Collection[models.Harvest] { return s.harvests }

func (s *Store) Products() repository.Collection[models.Product] { return s.products }

func (s *Store) Sales() repository.Collection[models.Sale] { return s.sales }

func (s *Store) Expenses() repository.Collection[models.Expense] { return s.expenses }

func (s *Store) Clients() repository.Collection[models.Client] { return s.clients }

func (s *Store) Feedings() repository.Collection[models.Feeding] { return s.feedings }

func (s *Store) Packaging() repository.Collection[models.Packaging] { return s.packaging }

func (s *Store) Movements() repository.Collection[models.ColonyMovement] {
	return s.movements
}

func (s *Store) Interventions() repository.Collection[models.SanitaryIntervention] {
	return s.interventions
}

// LoadSetting decodes the stored value into dst.
func (s *Store) LoadSetting(_ context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.settings[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

// SaveSetting stores an encoded copy of value.
func (s *Store) SaveSetting(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = raw
	return nil
}

// DeleteSetting removes key if present.
func (s *Store) DeleteSetting(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// total must be called with s.mu held.
func (s *Store) total() int {
	n := 0
	for _, count := range s.counters {
		n += count()
	}
	return n
}

func (s *Store) checkQuota(delta int) error {
	if s.maxRecords > 0 && s.total()+delta > s.maxRecords {
		return repository.ErrQuotaExceeded
	}
	return nil
}

type collection[T models.Record[T]] struct {
	store *Store
	name  string
	items []T
}

func newCollection[T models.Record[T]](s *Store, name string) *collection[T] {
	c := &collection[T]{store: s, name: name}
	s.counters = append(s.counters, func() int { return len(c.items) })
	return c
}

func (c *collection[T]) GetAll(_ context.Context) ([]T, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, nil
}

func (c *collection[T]) Get(_ context.Context, id string) (T, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], nil
	}
	var zero T
	return zero, fmt.Errorf("%s %s: %w", c.name, id, repository.ErrNotFound)
}

func (c *collection[T]) Add(_ context.Context, item T) (T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if item.RecordID() == "" {
		item = item.WithID(uuid.NewString())
	}
	if c.indexOf(item.RecordID()) >= 0 {
		var zero T
		return zero, fmt.Errorf("%s %s already exists", c.name, item.RecordID())
	}
	if err := c.store.checkQuota(1); err != nil {
		var zero T
		return zero, fmt.Errorf("add %s: %w", c.name, err)
	}
	c.items = append(c.items, item)
	return item, nil
}

func (c *collection[T]) Update(_ context.Context, item T) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i := c.indexOf(item.RecordID())
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.name, item.RecordID(), repository.ErrNotFound)
	}
	c.items[i] = item
	return nil
}

func (c *collection[T]) Delete(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.name, id, repository.ErrNotFound)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *collection[T]) Replace(_ context.Context, items []T) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.store.checkQuota(len(items) - len(c.items)); err != nil {
		return fmt.Errorf("replace %s: %w", c.name, err)
	}
	next := make([]T, 0, len(items))
	for _, item := range items {
		if item.RecordID() == "" {
			item = item.WithID(uuid.NewString())
		}
		next = append(next, item)
	}
	c.items = next
	return nil
}

func (c *collection[T]) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}
