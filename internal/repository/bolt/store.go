// Package bolt stores records in a single local bbolt file, one bucket per
// collection.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ repository.Store = (*Store)(nil)

const (
	settingsBucket = "settings"
	indexSuffix    = ".idx"
)

var collectionNames = []string{
	repository.CollectionApiaries,
	repository.CollectionHives,
	repository.CollectionMovements,
	repository.CollectionInterventions,
	repository.CollectionFeedings,
	repository.CollectionHarvests,
	repository.CollectionPackaging,
	repository.CollectionProducts,
	repository.CollectionSales,
	repository.CollectionExpenses,
	repository.CollectionClients,
}

// Store is a bbolt backed repository.Store. Records live in a bucket keyed by
// an insertion sequence; a sibling index bucket maps record IDs to sequence keys.
type Store struct {
	db     *bolt.DB
	quota  int64
	logger *zap.Logger
}

// Open opens or creates the database file at path. A positive quota caps the
// file size in bytes; growing writes beyond it fail with repository.ErrQuotaExceeded.
func Open(path string, quota int64, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(settingsBucket)); err != nil {
			return err
		}
		for _, name := range collectionNames {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucketIfNotExists([]byte(name + indexSuffix)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	logger.Info("bolt store opened", zap.String("path", path), zap.Int64("quota_bytes", quota))
	return &Store{db: db, quota: quota, logger: logger}, nil
}

func (s *Store) Apiaries() repository.Collection[models.Apiary] {
	return &collection[models.Apiary]{store: s, name: repository.CollectionApiaries}
}

func (s *Store) Hives() repository.Collection[models.Hive] {
	return &collection[models.Hive]{store: s, name: repository.CollectionHives}
}

func (s *Store) Movements() repository.Collection[models.ColonyMovement] {
	return &collection[models.ColonyMovement]{store: s, name: repository.CollectionMovements}
}

func (s *Store) Interventions() repository.Collection[models.SanitaryIntervention] {
	return &collection[models.SanitaryIntervention]{store: s, name: repository.CollectionInterventions}
}

func (s *Store) Feedings() repository.Collection[models.Feeding] {
	return &collection[models.Feeding]{store: s, name: repository.CollectionFeedings}
}

func (s *Store) Harvests() repository.Collection[models.Harvest] {
	return &collection[models.Harvest]{store: s, name: repository.CollectionHarvests}
}

func (s *Store) Packaging() repository.Collection[models.Packaging] {
	return &collection[models.Packaging]{store: s, name: repository.CollectionPackaging}
}

func (s *Store) Products() repository.Collection[models.Product] {
	return &collection[models.Product]{store: s, name: repository.CollectionProducts}
}

func (s *Store) Sales() repository.Collection[models.Sale] {
	return &collection[models.Sale]{store: s, name: repository.CollectionSales}
}

func (s *Store) Expenses() repository.Collection[models.Expense] {
	return &collection[models.Expense]{store: s, name: repository.CollectionExpenses}
}

func (s *Store) Clients() repository.Collection[models.Client] {
	return &collection[models.Client]{store: s, name: repository.CollectionClients}
}

// LoadSetting decodes the value stored under key into dst.
func (s *Store) LoadSetting(_ context.Context, key string, dst any) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(settingsBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, dst)
	})
	if err != nil {
		return false, fmt.Errorf("load setting %s: %w", key, err)
	}
	return found, nil
}

// SaveSetting encodes value under key.
func (s *Store) SaveSetting(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return s.update(true, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(key), raw)
	})
}

// DeleteSetting removes key if present.
func (s *Store) DeleteSetting(_ context.Context, key string) error {
	return s.update(false, func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Delete([]byte(key))
	})
}

// Close closes the database file.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// update runs fn in a write transaction. Growing writes are rolled back when
// the file would exceed the quota.
func (s *Store) update(grows bool, fn func(tx *bolt.Tx) error) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		if grows && s.quota > 0 && usedBytes(tx) > s.quota {
			return repository.ErrQuotaExceeded
		}
		return nil
	})
	if errors.Is(err, repository.ErrQuotaExceeded) {
		s.logger.Error("bolt write rejected, quota exceeded", zap.Int64("quota_bytes", s.quota))
	}
	return err
}

// usedBytes is the allocated size of the file minus pages on the freelist,
// so space released by deletes can be written again.
func usedBytes(tx *bolt.Tx) int64 {
	db := tx.DB()
	free := int64(db.Stats().FreePageN) * int64(db.Info().PageSize)
	return tx.Size() - free
}

type collection[T models.Record[T]] struct {
	store *Store
	name  string
}

func (c *collection[T]) GetAll(_ context.Context) ([]T, error) {
	items := make([]T, 0)
	err := c.store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(c.name)).ForEach(func(_, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	return items, nil
}

func (c *collection[T]) Get(_ context.Context, id string) (T, error) {
	var item T
	err := c.store.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket([]byte(c.name + indexSuffix)).Get([]byte(id))
		if key == nil {
			return repository.ErrNotFound
		}
		raw := tx.Bucket([]byte(c.name)).Get(key)
		if raw == nil {
			return repository.ErrNotFound
		}
		return json.Unmarshal(raw, &item)
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", c.name, id, err)
	}
	return item, nil
}

func (c *collection[T]) Add(_ context.Context, item T) (T, error) {
	if item.RecordID() == "" {
		item = item.WithID(uuid.NewString())
	}
	err := c.store.update(true, func(tx *bolt.Tx) error {
		return c.put(tx, item)
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("add %s: %w", c.name, err)
	}
	return item, nil
}

func (c *collection[T]) Update(_ context.Context, item T) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	err = c.store.update(true, func(tx *bolt.Tx) error {
		key := tx.Bucket([]byte(c.name + indexSuffix)).Get([]byte(item.RecordID()))
		if key == nil {
			return repository.ErrNotFound
		}
		return tx.Bucket([]byte(c.name)).Put(append([]byte(nil), key...), raw)
	})
	if err != nil {
		return fmt.Errorf("update %s %s: %w", c.name, item.RecordID(), err)
	}
	return nil
}

func (c *collection[T]) Delete(_ context.Context, id string) error {
	err := c.store.update(false, func(tx *bolt.Tx) error {
		index := tx.Bucket([]byte(c.name + indexSuffix))
		key := index.Get([]byte(id))
		if key == nil {
			return repository.ErrNotFound
		}
		key = append([]byte(nil), key...)
		if err := tx.Bucket([]byte(c.name)).Delete(key); err != nil {
			return err
		}
		return index.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.name, id, err)
	}
	return nil
}

func (c *collection[T]) Replace(_ context.Context, items []T) error {
	err := c.store.update(true, func(tx *bolt.Tx) error {
		for _, name := range []string{c.name, c.name + indexSuffix} {
			if err := tx.DeleteBucket([]byte(name)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		for _, item := range items {
			if item.RecordID() == "" {
				item = item.WithID(uuid.NewString())
			}
			if err := c.put(tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", c.name, err)
	}
	return nil
}

func (c *collection[T]) put(tx *bolt.Tx, item T) error {
	bucket := tx.Bucket([]byte(c.name))
	index := tx.Bucket([]byte(c.name + indexSuffix))
	if index.Get([]byte(item.RecordID())) != nil {
		return fmt.Errorf("%s already exists", item.RecordID())
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	seq, err := bucket.NextSequence()
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	if err := bucket.Put(key, raw); err != nil {
		return err
	}
	return index.Put([]byte(item.RecordID()), key)
}
