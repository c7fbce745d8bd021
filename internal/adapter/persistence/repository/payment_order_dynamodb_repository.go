package repository

import (
	"context"

	"pdv_payments/internal/domain/entities"
	"pdv_payments/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultOrdersTableName = "payment_orders"
	ordersParentIDIndex    = "parent_id-index"
)

type paymentOrderItem struct {
	ID             string `dynamodbav:"id"`
	ParentID       string `dynamodbav:"parent_id,omitempty"`
	Provider       string `dynamodbav:"provider"`
	GatewayOrderID string `dynamodbav:"gateway_order_id,omitempty"`
	ChargeID       string `dynamodbav:"charge_id,omitempty"`
	TransactionID  string `dynamodbav:"transaction_id,omitempty"`
	Method         string `dynamodbav:"method"`

	AmountMinorUnits int64  `dynamodbav:"amount_minor_units"`
	Status           string `dynamodbav:"status"`

	QRPayload  string `dynamodbav:"qr_payload,omitempty"`
	QRImageURL string `dynamodbav:"qr_image_url,omitempty"`
	PaymentURL string `dynamodbav:"payment_url,omitempty"`
	Barcode    string `dynamodbav:"barcode,omitempty"`

	CreatedAt      string `dynamodbav:"created_at"`
	UpdatedAt      string `dynamodbav:"updated_at"`
	ExpiresAt      string `dynamodbav:"expires_at"`
	ExpiryDegraded bool   `dynamodbav:"expiry_degraded"`
	PaidAt         string `dynamodbav:"paid_at,omitempty"`

	Customer   entities.Customer   `dynamodbav:"customer"`
	LineItems  []entities.LineItem `dynamodbav:"line_items"`
	LastError  *errorDetailRecord  `dynamodbav:"last_error,omitempty"`
	RetryCount int                 `dynamodbav:"retry_count"`

	RequestedTTLSeconds int64  `dynamodbav:"requested_ttl_seconds,omitempty"`
	RequestedProvider   string `dynamodbav:"requested_provider,omitempty"`
}

// dynamoAPI is the subset of *dynamodb.Client the repository uses.
type dynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// PaymentOrderDynamoRepository persists PaymentOrder snapshots in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: parent_id-index (PK: parent_id); sparse, only regenerated orders carry it
//
// Save is an unconditional PutItem: the latest snapshot always wins.
type PaymentOrderDynamoRepository struct {
	ddb       dynamoAPI
	tableName string
}

var _ interfaces.IPaymentOrderRepository = (*PaymentOrderDynamoRepository)(nil)

func NewPaymentOrderDynamoRepository(ddb *dynamodb.Client, tableName string) *PaymentOrderDynamoRepository {
	return newPaymentOrderDynamoRepository(ddb, tableName)
}

func newPaymentOrderDynamoRepository(ddb dynamoAPI, tableName string) *PaymentOrderDynamoRepository {
	if tableName == "" {
		tableName = defaultOrdersTableName
	}
	return &PaymentOrderDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *PaymentOrderDynamoRepository) Save(ctx context.Context, o entities.PaymentOrder) error {
	av, err := attributevalue.MarshalMap(toPaymentOrderItem(o))
	if err != nil {
		return err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

func (r *PaymentOrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.PaymentOrder, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentOrder{}, err
	}
	if len(out.Item) == 0 {
		return entities.PaymentOrder{}, nil
	}

	var it paymentOrderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.PaymentOrder{}, err
	}
	return fromPaymentOrderItem(it), nil
}

func (r *PaymentOrderDynamoRepository) ListByParentID(ctx context.Context, parentID string) ([]entities.PaymentOrder, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(ordersParentIDIndex),
		KeyConditionExpression: aws.String("parent_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: parentID},
		},
	})
	if err != nil {
		return nil, err
	}

	orders := make([]entities.PaymentOrder, 0, len(out.Items))
	for _, raw := range out.Items {
		var it paymentOrderItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		orders = append(orders, fromPaymentOrderItem(it))
	}
	return orders, nil
}

func toPaymentOrderItem(o entities.PaymentOrder) paymentOrderItem {
	return paymentOrderItem{
		ID:               o.ID,
		ParentID:         o.ParentID,
		Provider:         o.Provider,
		GatewayOrderID:   o.GatewayOrderID,
		ChargeID:         o.ChargeID,
		TransactionID:    o.TransactionID,
		Method:           string(o.Method),
		AmountMinorUnits: o.AmountMinorUnits,
		Status:           string(o.Status),
		QRPayload:        o.QRPayload,
		QRImageURL:       o.QRImageURL,
		PaymentURL:       o.PaymentURL,
		Barcode:          o.Barcode,
		CreatedAt:        formatTime(o.CreatedAt),
		UpdatedAt:        formatTime(o.UpdatedAt),
		ExpiresAt:        formatTime(o.ExpiresAt),
		ExpiryDegraded:   o.ExpiryDegraded,
		PaidAt:           formatTimePtr(o.PaidAt),
		Customer:         o.CustomerSnapshot,
		LineItems:        o.LineItems,
		LastError:        toErrorDetailRecord(o.LastError),
		RetryCount:       o.RetryCount,

		RequestedTTLSeconds: o.RequestedTTLSeconds,
		RequestedProvider:   o.RequestedProvider,
	}
}

func fromPaymentOrderItem(it paymentOrderItem) entities.PaymentOrder {
	return entities.PaymentOrder{
		ID:               it.ID,
		ParentID:         it.ParentID,
		Provider:         it.Provider,
		GatewayOrderID:   it.GatewayOrderID,
		ChargeID:         it.ChargeID,
		TransactionID:    it.TransactionID,
		Method:           entities.PaymentMethod(it.Method),
		AmountMinorUnits: it.AmountMinorUnits,
		Status:           entities.OrderStatus(it.Status),
		QRPayload:        it.QRPayload,
		QRImageURL:       it.QRImageURL,
		PaymentURL:       it.PaymentURL,
		Barcode:          it.Barcode,
		CreatedAt:        parseTime(it.CreatedAt),
		UpdatedAt:        parseTime(it.UpdatedAt),
		ExpiresAt:        parseTime(it.ExpiresAt),
		ExpiryDegraded:   it.ExpiryDegraded,
		PaidAt:           parseTimePtr(it.PaidAt),
		CustomerSnapshot: it.Customer,
		LineItems:        it.LineItems,
		LastError:        fromErrorDetailRecord(it.LastError),
		RetryCount:       it.RetryCount,

		RequestedTTLSeconds: it.RequestedTTLSeconds,
		RequestedProvider:   it.RequestedProvider,
	}
}
