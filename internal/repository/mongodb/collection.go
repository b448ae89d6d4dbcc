package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
)

type collection[T models.Record[T]] struct {
	repo *MongoDBRepository
	name string
	coll *mongo.Collection
}

func newCollection[T models.Record[T]](r *MongoDBRepository, name string) *collection[T] {
	return &collection[T]{repo: r, name: name, coll: r.db.Collection(name)}
}

func (c *collection[T]) GetAll(ctx context.Context) ([]T, error) {
	// Natural order follows insertion order for collections that are only
	// appended to or fully replaced.
	cursor, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.name, err)
	}
	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.name, err)
	}
	return items, nil
}

func (c *collection[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, fmt.Errorf("%s %s: %w", c.name, id, repository.ErrNotFound)
	}
	if err != nil {
		return item, fmt.Errorf("failed to get %s %s: %w", c.name, id, err)
	}
	return item, nil
}

func (c *collection[T]) Add(ctx context.Context, item T) (T, error) {
	if item.RecordID() == "" {
		item = item.WithID(uuid.NewString())
	}
	if _, err := c.coll.InsertOne(ctx, item); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to insert into %s: %w", c.name, c.repo.classify(err))
	}
	return item, nil
}

func (c *collection[T]) Update(ctx context.Context, item T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": item.RecordID()}, item)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", c.name, item.RecordID(), c.repo.classify(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", c.name, item.RecordID(), repository.ErrNotFound)
	}
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", c.name, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", c.name, id, repository.ErrNotFound)
	}
	return nil
}

func (c *collection[T]) Replace(ctx context.Context, items []T) error {
	if _, err := c.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.name, err)
	}
	if len(items) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		if item.RecordID() == "" {
			item = item.WithID(uuid.NewString())
		}
		docs = append(docs, item)
	}
	if _, err := c.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to restore %s: %w", c.name, c.repo.classify(err))
	}
	return nil
}
