package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"pdv_payments/internal/domain/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo stores items by id and answers parent_id queries by scanning.
type fakeDynamo struct {
	items     map[string]map[string]types.AttributeValue
	lastQuery *dynamodb.QueryInput
	lastGet   *dynamodb.GetItemInput
	putErr    error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGet = in
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQuery = in
	pid := in.ExpressionAttributeValues[":pid"].(*types.AttributeValueMemberS).Value
	var out []map[string]types.AttributeValue
	for _, it := range f.items {
		if v, ok := it["parent_id"].(*types.AttributeValueMemberS); ok && v.Value == pid {
			out = append(out, it)
		}
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func sampleOrder() entities.PaymentOrder {
	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	paid := created.Add(2 * time.Minute)
	return entities.PaymentOrder{
		ID:               "ord-1",
		Provider:         "pagarme",
		GatewayOrderID:   "or_123",
		ChargeID:         "ch_456",
		Method:           entities.PaymentMethodPix,
		AmountMinorUnits: 1000,
		Status:           entities.OrderStatusPaid,
		QRPayload:        "00020101021226...",
		CreatedAt:        created,
		UpdatedAt:        paid,
		ExpiresAt:        created.Add(30 * time.Minute),
		PaidAt:           &paid,
		CustomerSnapshot: entities.Customer{
			Name:         "Maria Silva",
			Email:        "maria@example.com",
			Document:     "12345678909",
			DocumentType: entities.TaxDocumentIndividual,
			Address:      entities.Address{Street: "Rua A", Number: "10", Neighborhood: "Centro", City: "Sao Paulo", State: "SP", ZipCode: "01001000"},
		},
		LineItems: []entities.LineItem{{Code: "sku-1", Description: "Cafe", AmountMinorUnits: 500, Quantity: 2}},

		RequestedTTLSeconds: 1800,
		RequestedProvider:   "pagarme",
	}
}

func TestPaymentOrderDynamoRepository_SaveAndGet(t *testing.T) {
	ddb := newFakeDynamo()
	repo := newPaymentOrderDynamoRepository(ddb, "")
	ctx := context.Background()

	want := sampleOrder()
	require.NoError(t, repo.Save(ctx, want))

	_, hasParent := ddb.items["ord-1"]["parent_id"]
	assert.False(t, hasParent, "root orders must stay out of the sparse parent index")

	got, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, defaultOrdersTableName, aws.ToString(ddb.lastGet.TableName))
	assert.True(t, aws.ToBool(ddb.lastGet.ConsistentRead))
}

func TestPaymentOrderDynamoRepository_FailedOrderKeepsLastError(t *testing.T) {
	ddb := newFakeDynamo()
	repo := newPaymentOrderDynamoRepository(ddb, "orders")
	ctx := context.Background()

	o := sampleOrder()
	o.Status = entities.OrderStatusFailed
	o.PaidAt = nil
	o.LastError = entities.NewErrorDetail(entities.ErrorKindGatewayInternalError, "gateway returned 500", true).WithCode("500")
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	require.NotNil(t, got.LastError)
	assert.Equal(t, entities.ErrorKindGatewayInternalError, got.LastError.Kind)
	assert.Equal(t, "500", got.LastError.Code)
	assert.True(t, got.LastError.Retryable)
	assert.Nil(t, got.PaidAt)
}

func TestPaymentOrderDynamoRepository_GetMissingReturnsZero(t *testing.T) {
	repo := newPaymentOrderDynamoRepository(newFakeDynamo(), "")

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got.ID)
}

func TestPaymentOrderDynamoRepository_ListByParentID(t *testing.T) {
	ddb := newFakeDynamo()
	repo := newPaymentOrderDynamoRepository(ddb, "")
	ctx := context.Background()

	root := sampleOrder()
	child := sampleOrder()
	child.ID = "ord-2"
	child.ParentID = root.ID
	child.RetryCount = 1
	require.NoError(t, repo.Save(ctx, root))
	require.NoError(t, repo.Save(ctx, child))

	got, err := repo.ListByParentID(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ord-2", got[0].ID)
	assert.Equal(t, 1, got[0].RetryCount)
	assert.Equal(t, ordersParentIDIndex, aws.ToString(ddb.lastQuery.IndexName))
}

func TestPaymentOrderDynamoRepository_SaveError(t *testing.T) {
	ddb := newFakeDynamo()
	ddb.putErr = errors.New("throttled")
	repo := newPaymentOrderDynamoRepository(ddb, "")

	err := repo.Save(context.Background(), sampleOrder())
	assert.EqualError(t, err, "throttled")
}

func TestPaymentOrderMemoryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("stores copies", func(t *testing.T) {
		repo := NewPaymentOrderMemoryRepository()
		o := sampleOrder()
		require.NoError(t, repo.Save(ctx, o))

		o.LineItems[0].Quantity = 99
		got, err := repo.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.LineItems[0].Quantity)
	})

	t.Run("missing order is zero", func(t *testing.T) {
		repo := NewPaymentOrderMemoryRepository()
		got, err := repo.GetByID(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, got.ID)
	})

	t.Run("children sorted by creation", func(t *testing.T) {
		repo := NewPaymentOrderMemoryRepository()
		root := sampleOrder()
		late := sampleOrder()
		late.ID, late.ParentID, late.CreatedAt = "ord-3", root.ID, root.CreatedAt.Add(time.Hour)
		early := sampleOrder()
		early.ID, early.ParentID, early.CreatedAt = "ord-2", root.ID, root.CreatedAt.Add(time.Minute)
		for _, o := range []entities.PaymentOrder{root, late, early} {
			require.NoError(t, repo.Save(ctx, o))
		}

		got, err := repo.ListByParentID(ctx, root.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "ord-2", got[0].ID)
		assert.Equal(t, "ord-3", got[1].ID)
	})

	t.Run("canceled context", func(t *testing.T) {
		repo := NewPaymentOrderMemoryRepository()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, repo.Save(cctx, sampleOrder()), context.Canceled)
	})
}

func TestPaymentOrderRow_NullableColumns(t *testing.T) {
	t.Run("root order without payment or error", func(t *testing.T) {
		o := sampleOrder()
		o.Status = entities.OrderStatusWaiting
		o.PaidAt = nil

		row, err := toPaymentOrderRow(o)
		require.NoError(t, err)
		assert.False(t, row.ParentID.Valid)
		assert.False(t, row.PaidAt.Valid)
		assert.False(t, row.LastError.Valid)
		assert.Equal(t, int64(1800), row.RequestedTTLSeconds)
		assert.Equal(t, "pagarme", row.RequestedProvider)

		back, err := fromPaymentOrderRow(row)
		require.NoError(t, err)
		assert.Equal(t, o, back)
	})

	t.Run("regenerated failed order", func(t *testing.T) {
		o := sampleOrder()
		o.ID, o.ParentID, o.RetryCount = "ord-2", "ord-1", 1
		o.Status = entities.OrderStatusFailed
		o.PaidAt = nil
		o.LastError = entities.NewErrorDetail(entities.ErrorKindIncompleteGatewayResponse, "no qr code", false)

		row, err := toPaymentOrderRow(o)
		require.NoError(t, err)
		assert.True(t, row.ParentID.Valid)
		assert.JSONEq(t, `{"kind":"incomplete_gateway_response","message":"no qr code","retryable":false}`, string(row.LastError.JSONText))

		back, err := fromPaymentOrderRow(row)
		require.NoError(t, err)
		assert.Equal(t, o, back)
	})

	t.Run("nil line items are stored as an empty array", func(t *testing.T) {
		o := sampleOrder()
		o.LineItems = nil
		row, err := toPaymentOrderRow(o)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(row.LineItems))
	})
}
