package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type DynamoRepositorySuite struct {
	ContractSuite
	container testcontainers.Container
	client    *dynamodb.Client
	current   *DynamoRepository
}

func TestDynamoRepository(t *testing.T) {
	requireContainers(t)
	suite.Run(t, new(DynamoRepositorySuite))
}

func (s *DynamoRepositorySuite) SetupSuite() {
	s.Ctx = context.Background()

	var err error
	s.container, err = testcontainers.GenericContainer(s.Ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			ExposedPorts: []string{"8000/tcp"},
			WaitingFor:   wait.ForListeningPort("8000/tcp"),
		},
		Started: true,
	})
	s.Require().NoError(err)

	endpoint, err := s.container.PortEndpoint(s.Ctx, "8000/tcp", "http")
	s.Require().NoError(err)

	s.client, err = NewDynamoDBClient(s.Ctx, DynamoDBOptions{
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "local",
		SecretAccessKey: "local",
	})
	s.Require().NoError(err)

	s.newRepo = func(opts ...Option) ProductRepository {
		table := "products_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		repo := NewDynamoRepository(s.client, table, zap.NewNop(), opts...)
		s.Require().NoError(repo.EnsureTable(s.Ctx))
		s.current = repo
		return repo
	}
}

func (s *DynamoRepositorySuite) TearDownSuite() {
	if s.container != nil {
		if err := s.container.Terminate(s.Ctx); err != nil {
			s.T().Logf("failed to terminate dynamodb container: %v", err)
		}
	}
}

func (s *DynamoRepositorySuite) TestEnsureTableIsIdempotent() {
	s.NoError(s.current.EnsureTable(s.Ctx))
}

func (s *DynamoRepositorySuite) TestPriceKeepsTrailingZeros() {
	p := s.insert("pen", "8.500")

	out, err := s.client.GetItem(s.Ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.current.tableName),
		Key:       itemKey(p.ID),
	})
	s.Require().NoError(err)

	price, ok := out.Item["price"].(*types.AttributeValueMemberS)
	s.Require().True(ok, "price should be a string attribute")
	s.Equal("8.500", price.Value)
}
