package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/callsight/backend/internal/types"
	"github.com/rs/zerolog"
)

// DynamoDBStore implements Store using AWS DynamoDB
type DynamoDBStore struct {
	client *dynamodb.Client
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Create tables in local mode
	if cfg.Mode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB store initialized")

	return store, nil
}

func (s *DynamoDBStore) SaveWindowSnapshot(snap types.WindowSnapshot) error {
	item, err := attributevalue.MarshalMap(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal window snapshot: %w", err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.config.SnapshotsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save window snapshot: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) GetWindowSnapshots(window string) ([]types.WindowSnapshot, error) {
	keyCond := expression.Key("Window").Equal(expression.Value(window))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(context.Background(), &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.SnapshotsTable),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query window snapshots: %w", err)
	}

	var snapshots []types.WindowSnapshot
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal window snapshots: %w", err)
	}
	return snapshots, nil
}

// TruncateAll deletes every archived snapshot. Local development helper.
func (s *DynamoDBStore) TruncateAll() error {
	ctx := context.Background()

	scan, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:            aws.String(s.config.SnapshotsTable),
		ProjectionExpression: aws.String("#w, BuiltAt"),
		ExpressionAttributeNames: map[string]string{
			"#w": "Window",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to scan snapshots table: %w", err)
	}

	for _, item := range scan.Items {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.config.SnapshotsTable),
			Key: map[string]dbtypes.AttributeValue{
				"Window":  item["Window"],
				"BuiltAt": item["BuiltAt"],
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
	}

	s.logger.Info().Int("deleted", len(scan.Items)).Msg("snapshots table truncated")
	return nil
}
