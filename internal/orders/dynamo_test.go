package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDynamo stores items of a single table keyed by "id".
type mockDynamo struct {
	mu          sync.Mutex
	items       map[string]map[string]types.AttributeValue
	tableStatus types.TableStatus
	describeErr error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		items:       map[string]map[string]types.AttributeValue{},
		tableStatus: types.TableStatusActive,
	}
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := params.Item["id"]
	if !ok {
		return nil, errors.New("no primary key in put item")
	}
	pk := v.(*types.AttributeValueMemberS).Value
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(id)" {
		if _, exists := m.items[pk]; exists {
			msg := "The conditional request failed"
			return nil, &types.ConditionalCheckFailedException{Message: &msg}
		}
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Key["id"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) DescribeTable(ctx context.Context, params *dyn.DescribeTableInput, optFns ...func(*dyn.Options)) (*dyn.DescribeTableOutput, error) {
	if m.describeErr != nil {
		return nil, m.describeErr
	}
	return &dyn.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   params.TableName,
		TableStatus: m.tableStatus,
	}}, nil
}

func TestDynamoStore_CreateAndGet(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")
	fixed := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	store.nowFunc = func() time.Time { return fixed }

	o := &Order{Name: "Ann", Email: "ann@x.com", Country: "GB", Pin: "NW1 6XE", Qty: 2, UnitPriceCents: 14900, TotalCents: 29800}
	require.NoError(t, store.Create(context.Background(), o))
	require.NotEmpty(t, o.ID)
	assert.Equal(t, fixed, o.CreatedAt)

	got, err := store.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *o, *got)

	missing, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDynamoStore_DuplicateID(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")
	store.newID = func() string { return "fixed-id" }

	require.NoError(t, store.Create(context.Background(), &Order{Name: "a"}))
	err := store.Create(context.Background(), &Order{Name: "b"})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestDynamoStore_EnsureSchema(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")
	require.NoError(t, store.EnsureSchema(context.Background()))

	mock.tableStatus = types.TableStatusCreating
	assert.Error(t, store.EnsureSchema(context.Background()))

	msg := "Requested resource not found"
	mock.describeErr = &types.ResourceNotFoundException{Message: &msg}
	err := store.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestDynamoStore_Health(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")

	status, err := store.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DynamoDB ACTIVE", status.Version)
	assert.False(t, status.Now.IsZero())

	mock.describeErr = errors.New("no route to host")
	_, err = store.Health(context.Background())
	assert.Error(t, err)
}
