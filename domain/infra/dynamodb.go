package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/colecperry/slack-bot/domain/model"
)

// DynamoDB stores standups with user_id as the partition key and the
// UTC timestamp string as the sort key, so a per-user query with
// ScanIndexForward=false yields newest-first without an extra index.
type DynamoDB struct {
	db        *dynamodb.Client
	tableName string
}

func NewDynamoDB(tableName string, local bool) (*DynamoDB, error) {
	var db *dynamodb.Client
	if local {
		cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion("dummy"),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "dummy")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(cfg,
			func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String("http://localhost:8000")
			},
		)
	} else {
		cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(cfg)
	}
	d := &DynamoDB{
		db:        db,
		tableName: tableName,
	}
	if local {
		if err := d.EnsureTable(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

const (
	waitInterval = 2 * time.Second
	maxRetries   = 30
)

func (d *DynamoDB) EnsureTable() error {
	_, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = d.db.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName: aws.String(d.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("ts"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("ts"), KeyType: types.KeyTypeRange},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create table %s: %v", d.tableName, err)
	}

	for i := 0; i < maxRetries; i++ {
		out, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
			TableName: aws.String(d.tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %v", d.tableName, err)
		}

		if out.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		time.Sleep(waitInterval)
	}

	return fmt.Errorf("table %s creation timed out", d.tableName)
}

func (d *DynamoDB) SaveStandup(s *model.Standup) error {
	// PutItem overwrites an existing (user_id, ts) item: last write wins.
	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"user_id":   &types.AttributeValueMemberS{Value: s.UserID},
			"user_name": &types.AttributeValueMemberS{Value: s.UserName},
			"ts":        &types.AttributeValueMemberS{Value: s.Timestamp},
			"message":   &types.AttributeValueMemberS{Value: s.Message},
		},
	}

	_, err := d.db.PutItem(context.TODO(), input)
	return err
}

func (d *DynamoDB) GetLatestStandups(userID string, n int) ([]model.Standup, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(n)),
	}

	result, err := d.db.Query(context.TODO(), input)
	if err != nil {
		return nil, err
	}

	var standups []model.Standup
	for _, item := range result.Items {
		standups = append(standups, itemToStandup(item))
	}
	return standups, nil
}

func (d *DynamoDB) GetStandupsBetween(start, end time.Time) ([]model.Standup, error) {
	// Full-table scan with a ts filter; the digest window cuts across
	// user partitions so a key-condition query cannot serve it.
	input := &dynamodb.ScanInput{
		TableName:        aws.String(d.tableName),
		FilterExpression: aws.String("ts >= :start AND ts < :end"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start": &types.AttributeValueMemberS{Value: model.FormatTimestamp(start)},
			":end":   &types.AttributeValueMemberS{Value: model.FormatTimestamp(end)},
		},
		ProjectionExpression: aws.String("user_id, ts, message, user_name"),
	}

	var standups []model.Standup
	for {
		result, err := d.db.Scan(context.TODO(), input)
		if err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			standups = append(standups, itemToStandup(item))
		}
		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return standups, nil
}

func itemToStandup(item map[string]types.AttributeValue) model.Standup {
	return model.Standup{
		UserID:    getStringValue(item, "user_id"),
		UserName:  getStringValue(item, "user_name"),
		Timestamp: getStringValue(item, "ts"),
		Message:   getStringValue(item, "message"),
	}
}

func getStringValue(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
