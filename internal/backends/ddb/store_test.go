package ddb

import (
	"banco/internal/backends/storetest"
	"banco/internal/ports"
	"banco/internal/types"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/suite"
)

// DDBStoreTestSuite needs a local DynamoDB (moto, localstack or dynamodb-local) at DDB_ENDPOINT.
type DDBStoreTestSuite struct {
	storetest.StoreSuite
	cli   *dynamodb.Client
	table string
}

func TestDDBStoreTestSuite(t *testing.T) {
	endpoint := os.Getenv("DDB_ENDPOINT")
	if endpoint == "" {
		t.Skip("DDB_ENDPOINT not set")
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}
	s := new(DDBStoreTestSuite)
	s.cli = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.Region = "us-east-1"
		o.Credentials = credentials.NewStaticCredentialsProvider("test", "test", "")
	})
	s.NewGestores = func() ports.Store[types.Gestor] { return NewStore[types.Gestor](s.table, "GESTORES", s.cli) }
	s.NewClientes = func() ports.Store[types.Cliente] { return NewStore[types.Cliente](s.table, "CLIENTES", s.cli) }
	suite.Run(t, s)
}

func (s *DDBStoreTestSuite) SetupTest() {
	// a fresh table per test keeps the id counters independent
	s.table = fmt.Sprintf("banco_test_%d", time.Now().UnixNano())
	s.Require().NoError(CreateTableIfNotExists(context.Background(), s.cli, s.table))
	s.StoreSuite.SetupTest()
}

func (s *DDBStoreTestSuite) TearDownTest() {
	_, err := s.cli.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{TableName: aws.String(s.table)})
	s.NoError(err)
}
