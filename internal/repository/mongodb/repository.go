package mongodb

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/domain/models"
	"github.com/mamadbah2/apigest/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ repository.Store = (*MongoDBRepository)(nil)

const settingsCollection = "settings"

// quotaErrorCode is the server code Atlas returns when a cluster runs out of space.
const quotaErrorCode = 8000

// MongoDBRepository implements repository.Store on top of one MongoDB database.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to uri and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("mongodb store connected", zap.String("database", dbName))
	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

func (r *MongoDBRepository) Apiaries() repository.Collection[models.Apiary] {
	return newCollection[models.Apiary](r, repository.CollectionApiaries)
}

func (r *MongoDBRepository) Hives() repository.Collection[models.Hive] {
	return newCollection[models.Hive](r, repository.CollectionHives)
}

func (r *MongoDBRepository) Movements() repository.Collection[models.ColonyMovement] {
	return newCollection[models.ColonyMovement](r, repository.CollectionMovements)
}

func (r *MongoDBRepository) Interventions() repository.Collection[models.SanitaryIntervention] {
	return newCollection[models.SanitaryIntervention](r, repository.CollectionInterventions)
}

func (r *MongoDBRepository) Feedings() repository.Collection[models.Feeding] {
	return newCollection[models.Feeding](r, repository.CollectionFeedings)
}

func (r *MongoDBRepository) Harvests() repository.Collection[models.Harvest] {
	return newCollection[models.Harvest](r, repository.CollectionHarvests)
}

func (r *MongoDBRepository) Packaging() repository.Collection[models.Packaging] {
	return newCollection[models.Packaging](r, repository.CollectionPackaging)
}

func (r *MongoDBRepository) Products() repository.Collection[models.Product] {
	return newCollection[models.Product](r, repository.CollectionProducts)
}

func (r *MongoDBRepository) Sales() repository.Collection[models.Sale] {
	return newCollection[models.Sale](r, repository.CollectionSales)
}

func (r *MongoDBRepository) Expenses() repository.Collection[models.Expense] {
	return newCollection[models.Expense](r, repository.CollectionExpenses)
}

func (r *MongoDBRepository) Clients() repository.Collection[models.Client] {
	return newCollection[models.Client](r, repository.CollectionClients)
}

type settingDocument struct {
	Key  string `bson:"_id"`
	JSON string `bson:"json"`
}

// LoadSetting decodes the setting stored under key into dst.
func (r *MongoDBRepository) LoadSetting(ctx context.Context, key string, dst any) (bool, error) {
	var doc settingDocument
	err := r.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	if err := json.UnmarshalFromString(doc.JSON, dst); err != nil {
		return false, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return true, nil
}

// SaveSetting upserts the setting stored under key.
func (r *MongoDBRepository) SaveSetting(ctx context.Context, key string, value any) error {
	raw, err := json.MarshalToString(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	_, err = r.db.Collection(settingsCollection).ReplaceOne(ctx,
		bson.M{"_id": key},
		settingDocument{Key: key, JSON: raw},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, r.classify(err))
	}
	return nil
}

// DeleteSetting removes the setting stored under key.
func (r *MongoDBRepository) DeleteSetting(ctx context.Context, key string) error {
	if _, err := r.db.Collection(settingsCollection).DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// classify turns a storage-space failure into repository.ErrQuotaExceeded.
func (r *MongoDBRepository) classify(err error) error {
	if !IsQuotaError(err) {
		return err
	}
	r.logger.Error("mongodb write rejected, quota exceeded", zap.Error(err))
	return fmt.Errorf("%w: %v", repository.ErrQuotaExceeded, err)
}

// IsQuotaError reports whether err is a server refusal caused by the storage quota.
func IsQuotaError(err error) bool {
	var serverErr mongo.ServerError
	if !errors.As(err, &serverErr) {
		return false
	}
	return serverErr.HasErrorCode(quotaErrorCode) || serverErr.HasErrorMessage("quota")
}
