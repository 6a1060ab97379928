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
	defaultBookingsTableName = "bookings"
	bookingsUserIDIndex      = "user_id-index"
)

type bookingItem struct {
	ID            string `dynamodbav:"id"`
	UserID        string `dynamodbav:"user_id"`
	AgentID       string `dynamodbav:"agent_id"`
	TripStart     string `dynamodbav:"trip_start"`
	TripEnd       string `dynamodbav:"trip_end"`
	TravelerCount int    `dynamodbav:"traveler_count"`

	BasePriceCents          int64 `dynamodbav:"base_price_cents"`
	BookingFeeCents         int64 `dynamodbav:"booking_fee_cents"`
	PlatformCommissionCents int64 `dynamodbav:"platform_commission_cents"`
	TotalAmountCents        int64 `dynamodbav:"total_amount_cents"`
	AgentPayoutCents        int64 `dynamodbav:"agent_payout_cents"`

	State string `dynamodbav:"state"`

	ProcessorOrderRef   string `dynamodbav:"processor_order_ref,omitempty"`
	ProcessorPaymentRef string `dynamodbav:"processor_payment_ref,omitempty"`

	AgentConfirmedAt string `dynamodbav:"agent_confirmed_at,omitempty"`

	CancelledBy  string `dynamodbav:"cancelled_by,omitempty"`
	CancelReason string `dynamodbav:"cancel_reason,omitempty"`
	CancelledAt  string `dynamodbav:"cancelled_at,omitempty"`

	DisputeID string `dynamodbav:"dispute_id,omitempty"`

	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// BookingDynamoRepository persists Booking entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: user_id-index (PK: user_id)
//
// Update replaces the whole item conditioned on the stored version matching
// expectedVersion, which is what makes concurrent state transitions safe.

type BookingDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IBookingRepository = (*BookingDynamoRepository)(nil)

func NewBookingDynamoRepository(ddb *dynamodb.Client) *BookingDynamoRepository {
	return &BookingDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("BOOKINGS_TABLE", defaultBookingsTableName),
	}
}

func (r *BookingDynamoRepository) Create(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	it := toBookingItem(b)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Booking{}, err
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
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingDynamoRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Booking{}, err
	}
	if len(out.Item) == 0 {
		return entities.Booking{}, nil
	}

	var it bookingItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Booking{}, err
	}
	return fromBookingItem(it), nil
}

// Update overwrites the item only when the stored version still equals
// expectedVersion. A conditional check failure maps to ErrVersionConflict.
func (r *BookingDynamoRepository) Update(ctx context.Context, b entities.Booking, expectedVersion int64) (entities.Booking, error) {
	it := toBookingItem(b)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Booking{}, err
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
			return entities.Booking{}, interfaces.ErrVersionConflict
		}
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingDynamoRepository) ListByUserID(ctx context.Context, userID string) ([]entities.Booking, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(bookingsUserIDIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}

	items := make([]entities.Booking, 0, len(out.Items))
	for _, raw := range out.Items {
		var it bookingItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		items = append(items, fromBookingItem(it))
	}
	return items, nil
}

func toBookingItem(b entities.Booking) bookingItem {
	return bookingItem{
		ID:                      b.ID,
		UserID:                  b.UserID,
		AgentID:                 b.AgentID,
		TripStart:               b.TripStart,
		TripEnd:                 b.TripEnd,
		TravelerCount:           b.TravelerCount,
		BasePriceCents:          b.BasePriceCents,
		BookingFeeCents:         b.BookingFeeCents,
		PlatformCommissionCents: b.PlatformCommissionCents,
		TotalAmountCents:        b.TotalAmountCents,
		AgentPayoutCents:        b.AgentPayoutCents,
		State:                   string(b.State),
		ProcessorOrderRef:       b.ProcessorOrderRef,
		ProcessorPaymentRef:     b.ProcessorPaymentRef,
		AgentConfirmedAt:        formatOptionalTime(b.AgentConfirmedAt),
		CancelledBy:             b.CancelledBy,
		CancelReason:            b.CancelReason,
		CancelledAt:             formatOptionalTime(b.CancelledAt),
		DisputeID:               b.DisputeID,
		Version:                 b.Version,
		CreatedAt:               b.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:               b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromBookingItem(it bookingItem) entities.Booking {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Booking{
		ID:                      it.ID,
		UserID:                  it.UserID,
		AgentID:                 it.AgentID,
		TripStart:               it.TripStart,
		TripEnd:                 it.TripEnd,
		TravelerCount:           it.TravelerCount,
		BasePriceCents:          it.BasePriceCents,
		BookingFeeCents:         it.BookingFeeCents,
		PlatformCommissionCents: it.PlatformCommissionCents,
		TotalAmountCents:        it.TotalAmountCents,
		AgentPayoutCents:        it.AgentPayoutCents,
		State:                   entities.BookingState(it.State),
		ProcessorOrderRef:       it.ProcessorOrderRef,
		ProcessorPaymentRef:     it.ProcessorPaymentRef,
		AgentConfirmedAt:        parseOptionalTime(it.AgentConfirmedAt),
		CancelledBy:             it.CancelledBy,
		CancelReason:            it.CancelReason,
		CancelledAt:             parseOptionalTime(it.CancelledAt),
		DisputeID:               it.DisputeID,
		Version:                 it.Version,
		CreatedAt:               createdAt,
		UpdatedAt:               updatedAt,
	}
}
