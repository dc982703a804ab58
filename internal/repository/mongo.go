package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
	"github.com/cloud-wave-best-zizon/store-service/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultMongoDatabase = "store"

type MongoRepository struct {
	collection *mongo.Collection
	tracer     trace.Tracer
	logger     *zap.Logger
	opts       settings
}

// NewMongoClient connects to uri and pings the primary. The returned database
// name comes from the uri path, "store" when the path is empty.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, "", fmt.Errorf("invalid mongodb uri: %w", err)
	}
	database := cs.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, "", fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, database, nil
}

func NewMongoRepository(db *mongo.Database, collection string, logger *zap.Logger, opts ...Option) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(collection),
		tracer:     otel.Tracer("store-service/repository"),
		logger:     logger,
		opts:       newSettings(opts),
	}
}

// EnsureIndexes creates the unique index on id.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("id_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create id index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Insert(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID))

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to insert product",
			zap.String("product_id", product.ID),
			zap.Error(err))
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

func (r *MongoRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	var product domain.Product
	err := r.collection.FindOne(ctx, byID(id)).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to find product",
			zap.String("product_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return &product, nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to query products", zap.Error(err))
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products := make([]domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to decode products", zap.Error(err))
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

func (r *MongoRepository) UpdateOne(ctx context.Context, id string, changes domain.ProductChanges) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.UpdateOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	set := bson.D{}
	if changes.Quantity != nil {
		set = append(set, bson.E{Key: "quantity", Value: *changes.Quantity})
	}
	if changes.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *changes.Price})
	}
	if changes.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *changes.Status})
	}
	set = append(set, bson.E{Key: "updated_at", Value: domain.Timestamp(r.opts.now())})

	var product domain.Product
	err := r.collection.FindOneAndUpdate(
		ctx,
		byID(id),
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to update product",
			zap.String("product_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

func (r *MongoRepository) DeleteOne(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	result, err := r.collection.DeleteOne(ctx, byID(id))
	if err != nil {
		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to delete product",
			zap.String("product_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

func byID(id string) bson.D {
	return bson.D{{Key: "id", Value: id}}
}
