package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"tripmarket/internal/domain/entities"
	"tripmarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultRefundsTableName = "refunds"
	refundsBookingIDIndex   = "booking_id-index"
)

type refundItem struct {
	ID          string `dynamodbav:"id"`
	BookingID   string `dynamodbav:"booking_id"`
	PaymentRef  string `dynamodbav:"payment_ref"`
	RequestedBy string `dynamodbav:"requested_by"`
	Reason      string `dynamodbav:"reason"`
	Detail      string `dynamodbav:"detail,omitempty"`

	AmountCents int64 `dynamodbav:"amount_cents"`
	IsPartial   bool  `dynamodbav:"is_partial"`

	State                 string `dynamodbav:"state"`
	RequiresAdminApproval bool   `dynamodbav:"requires_admin_approval"`

	DecidedBy  string `dynamodbav:"decided_by,omitempty"`
	DecidedAt  string `dynamodbav:"decided_at,omitempty"`
	DenialNote string `dynamodbav:"denial_note,omitempty"`

	ProcessorRefundRef string `dynamodbav:"processor_refund_ref,omitempty"`
	FailureDetail      string `dynamodbav:"failure_detail,omitempty"`

	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// RefundDynamoRepository persists Refund entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: booking_id-index (PK: booking_id)

type RefundDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IRefundRepository = (*RefundDynamoRepository)(nil)

func NewRefundDynamoRepository(ddb *dynamodb.Client) *RefundDynamoRepository {
	return &RefundDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("REFUNDS_TABLE", defaultRefundsTableName),
	}
}

func (r *RefundDynamoRepository) Create(ctx context.Context, rf entities.Refund) (entities.Refund, error) {
	it := toRefundItem(rf)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Refund{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Refund{}, err
	}
	return rf, nil
}

func (r *RefundDynamoRepository) GetByID(ctx context.Context, id string) (entities.Refund, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Refund{}, err
	}
	if len(out.Item) == 0 {
		return entities.Refund{}, nil
	}

	var it refundItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Refund{}, err
	}
	return fromRefundItem(it), nil
}

// Update follows the same conditional-put contract as the booking repository.
func (r *RefundDynamoRepository) Update(ctx context.Context, rf entities.Refund, expectedVersion int64) (entities.Refund, error) {
	it := toRefundItem(rf)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Refund{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id) AND #version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#id":      "id",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Refund{}, interfaces.ErrVersionConflict
		}
		return entities.Refund{}, err
	}
	return rf, nil
}

func (r *RefundDynamoRepository) ListByBookingID(ctx context.Context, bookingID string) ([]entities.Refund, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(refundsBookingIDIndex),
		KeyConditionExpression: aws.String("booking_id = :bid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":bid": &types.AttributeValueMemberS{Value: bookingID},
		},
	})
	if err != nil {
		return nil, err
	}

	items := make([]entities.Refund, 0, len(out.Items))
	for _, raw := range out.Items {
		var it refundItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		items = append(items, fromRefundItem(it))
	}
	return items, nil
}

func toRefundItem(rf entities.Refund) refundItem {
	return refundItem{
		ID:                    rf.ID,
		BookingID:             rf.BookingID,
		PaymentRef:            rf.PaymentRef,
		RequestedBy:           rf.RequestedBy,
		Reason:                string(rf.Reason),
		Detail:                rf.Detail,
		AmountCents:           rf.AmountCents,
		IsPartial:             rf.IsPartial,
		State:                 string(rf.State),
		RequiresAdminApproval: rf.RequiresAdminApproval,
		DecidedBy:             rf.DecidedBy,
		DecidedAt:             formatOptionalTime(rf.DecidedAt),
		DenialNote:            rf.DenialNote,
		ProcessorRefundRef:    rf.ProcessorRefundRef,
		FailureDetail:         rf.FailureDetail,
		Version:               rf.Version,
		CreatedAt:             rf.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:             rf.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromRefundItem(it refundItem) entities.Refund {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Refund{
		ID:                    it.ID,
		BookingID:             it.BookingID,
		PaymentRef:            it.PaymentRef,
		RequestedBy:           it.RequestedBy,
		Reason:                entities.RefundReason(it.Reason),
		Detail:                it.Detail,
		AmountCents:           it.AmountCents,
		IsPartial:             it.IsPartial,
		State:                 entities.RefundState(it.State),
		RequiresAdminApproval: it.RequiresAdminApproval,
		DecidedBy:             it.DecidedBy,
		DecidedAt:             parseOptionalTime(it.DecidedAt),
		DenialNote:            it.DenialNote,
		ProcessorRefundRef:    it.ProcessorRefundRef,
		FailureDetail:         it.FailureDetail,
		Version:               it.Version,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}
}
