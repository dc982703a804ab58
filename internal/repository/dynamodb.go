package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cloud-wave-best-zizon/store-service/internal/domain"
	"github.com/cloud-wave-best-zizon/store-service/pkg/logging"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// productItem is the DynamoDB layout of a product. DynamoDB numbers drop
// trailing zeros, so price is kept as its exact decimal text.
type productItem struct {
	ID        string    `dynamodbav:"id"`
	Name      string    `dynamodbav:"name"`
	Quantity  int       `dynamodbav:"quantity"`
	Price     string    `dynamodbav:"price"`
	Status    bool      `dynamodbav:"status"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

func newProductItem(p *domain.Product) productItem {
	return productItem{
		ID:        p.ID,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     p.Price.String(),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (it productItem) product() (*domain.Product, error) {
	price, err := primitive.ParseDecimal128(it.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q for product %s: %w", it.Price, it.ID, err)
	}

	return &domain.Product{
		ID:        it.ID,
		Name:      it.Name,
		Quantity:  it.Quantity,
		Price:     price,
		Status:    it.Status,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}, nil
}

type DynamoDBOptions struct {
	Region          string
	Endpoint        string // DynamoDB Local or another compatible endpoint
	AccessKeyID     string
	SecretAccessKey string
}

func NewDynamoDBClient(ctx context.Context, o DynamoDBOptions) (*dynamodb.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.Region),
	}
	if o.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(opts *dynamodb.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
		}
	}), nil
}

type DynamoRepository struct {
	client    *dynamodb.Client
	tableName string
	tracer    trace.Tracer
	logger    *zap.Logger
	opts      settings
}

func NewDynamoRepository(client *dynamodb.Client, tableName string, logger *zap.Logger, opts ...Option) *DynamoRepository {
	return &DynamoRepository{
		client:    client,
		tableName: tableName,
		tracer:    otel.Tracer("store-service/repository"),
		logger:    logger,
		opts:      newSettings(opts),
	}
}

// EnsureTable creates the on-demand products table when it does not exist.
func (r *DynamoRepository) EnsureTable(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table: %w", err)
	}

	_, err = r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	}, 2*time.Minute)
}

func (r *DynamoRepository) Insert(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID))

	av, err := attributevalue.MarshalMap(newProductItem(product))
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to put item",
			zap.String("product_id", product.ID),
			zap.Error(err))

		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("duplicate product id %s", product.ID)
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *DynamoRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to get item",
			zap.String("product_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProductNotFound
	}

	var item productItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return item.product()
}

func (r *DynamoRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:      aws.String(r.tableName),
		ConsistentRead: aws.Bool(true),
	})

	products := make([]domain.Product, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			logging.Error(ctx, r.logger, "Failed to scan products", zap.Error(err))
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}

		var items []productItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal products: %w", err)
		}

		for _, item := range items {
			p, err := item.product()
			if err != nil {
				return nil, err
			}
			products = append(products, *p)
		}
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

func (r *DynamoRepository) UpdateOne(ctx context.Context, id string, changes domain.ProductChanges) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.UpdateOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	update := expression.Set(
		expression.Name("updated_at"),
		expression.Value(domain.Timestamp(r.opts.now())),
	)
	if changes.Quantity != nil {
		update = update.Set(expression.Name("quantity"), expression.Value(*changes.Quantity))
	}
	if changes.Price != nil {
		update = update.Set(expression.Name("price"), expression.Value(changes.Price.String()))
	}
	if changes.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(*changes.Status))
	}

	// 존재하는 상품만 갱신
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return nil, err
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       itemKey(id),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to update item",
			zap.String("product_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	var item productItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return item.product()
}

func (r *DynamoRepository) DeleteOne(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      itemKey(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductNotFound
		}

		span.RecordError(err)
		logging.Error(ctx, r.logger, "Failed to delete item",
			zap.String("product_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}
