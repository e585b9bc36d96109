package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/imrishuroy/landing-checkout/internal/aws"
)

// ErrDuplicateID is returned when a generated id already exists. With
// random UUIDs this indicates a broken generator rather than a retryable race.
var ErrDuplicateID = errors.New("order id already exists")

// DynamoStore keeps orders in a DynamoDB table keyed by id.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	newID     func() string
}

// NewDynamoStore creates a store bound to tableName.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// EnsureSchema checks that the table exists and is ACTIVE. Tables are
// provisioned outside the application.
func (s *DynamoStore) EnsureSchema(ctx context.Context) error {
	out, err := s.client.DescribeTable(ctx, &dyn.DescribeTableInput{TableName: sdkaws.String(s.tableName)})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return fmt.Errorf("table %s does not exist: %w", s.tableName, err)
		}
		return fmt.Errorf("describe table %s: %w", s.tableName, err)
	}
	if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
		return fmt.Errorf("table %s is not active", s.tableName)
	}
	return nil
}

// Create writes the order with a condition that the id is unused.
func (s *DynamoStore) Create(ctx context.Context, o *Order) error {
	o.ID = s.newID()
	o.CreatedAt = s.nowFunc().UTC()

	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           sdkaws.String(s.tableName),
		Item:                item,
		ConditionExpression: sdkaws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return fmt.Errorf("put order %s: %w", o.ID, ErrDuplicateID)
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Get fetches an order by id. Returns (nil, nil) if not found.
func (s *DynamoStore) Get(ctx context.Context, id string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: sdkaws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// Health describes the table; the reported version is the table status.
func (s *DynamoStore) Health(ctx context.Context) (HealthStatus, error) {
	out, err := s.client.DescribeTable(ctx, &dyn.DescribeTableInput{TableName: sdkaws.String(s.tableName)})
	if err != nil {
		return HealthStatus{}, fmt.Errorf("describe table %s: %w", s.tableName, err)
	}
	status := "UNKNOWN"
	if out.Table != nil {
		status = string(out.Table.TableStatus)
	}
	return HealthStatus{Now: s.nowFunc().UTC(), Version: "DynamoDB " + status}, nil
}
