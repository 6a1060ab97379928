package repository

import (
	"context"
	"encoding/json"
	"time"

	"tripmarket/internal/domain/entities"
	"tripmarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultDeadLettersTableName = "dead_letters"
	deadLettersEventTypeIndex   = "event_type-index"
)

type deadLetterItem struct {
	ID        string `dynamodbav:"id"`
	EventType string `dynamodbav:"event_type"`
	Payload   string `dynamodbav:"payload"`

	ErrorDetail string `dynamodbav:"error_detail"`

	AttemptCount  int    `dynamodbav:"attempt_count"`
	FirstFailedAt string `dynamodbav:"first_failed_at"`
	LastFailedAt  string `dynamodbav:"last_failed_at"`

	CorrelationID string `dynamodbav:"correlation_id"`
	SourceService string `dynamodbav:"source_service"`
}

// DeadLetterDynamoRepository persists parked events in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: event_type-index (PK: event_type)
//
// Expected volume is low (dead letters are an exception path), so List and
// PurgeOlderThan scan when no narrower access path applies.

type DeadLetterDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IDeadLetterRepository = (*DeadLetterDynamoRepository)(nil)

func NewDeadLetterDynamoRepository(ddb *dynamodb.Client) *DeadLetterDynamoRepository {
	return &DeadLetterDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("DEAD_LETTERS_TABLE", defaultDeadLettersTableName),
	}
}

func (r *DeadLetterDynamoRepository) Save(ctx context.Context, rec entities.DeadLetterRecord) (entities.DeadLetterRecord, error) {
	it := toDeadLetterItem(rec)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.DeadLetterRecord{}, err
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
		return entities.DeadLetterRecord{}, err
	}
	return rec, nil
}

func (r *DeadLetterDynamoRepository) GetByID(ctx context.Context, id string) (entities.DeadLetterRecord, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.DeadLetterRecord{}, err
	}
	if len(out.Item) == 0 {
		return entities.DeadLetterRecord{}, nil
	}

	var it deadLetterItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.DeadLetterRecord{}, err
	}
	return fromDeadLetterItem(it), nil
}

func (r *DeadLetterDynamoRepository) List(ctx context.Context, eventType string) ([]entities.DeadLetterRecord, error) {
	if eventType != "" {
		return r.listByEventType(ctx, eventType)
	}

	records := make([]entities.DeadLetterRecord, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			var it deadLetterItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			records = append(records, fromDeadLetterItem(it))
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return records, nil
}

func (r *DeadLetterDynamoRepository) listByEventType(ctx context.Context, eventType string) ([]entities.DeadLetterRecord, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(deadLettersEventTypeIndex),
		KeyConditionExpression: aws.String("event_type = :et"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":et": &types.AttributeValueMemberS{Value: eventType},
		},
	})
	if err != nil {
		return nil, err
	}

	records := make([]entities.DeadLetterRecord, 0, len(out.Items))
	for _, raw := range out.Items {
		var it deadLetterItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		records = append(records, fromDeadLetterItem(it))
	}
	return records, nil
}

func (r *DeadLetterDynamoRepository) Update(ctx context.Context, rec entities.DeadLetterRecord) (entities.DeadLetterRecord, error) {
	it := toDeadLetterItem(rec)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.DeadLetterRecord{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.DeadLetterRecord{}, err
	}
	return rec, nil
}

func (r *DeadLetterDynamoRepository) Remove(ctx context.Context, id string) error {
	_, err := r.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	return err
}

func (r *DeadLetterDynamoRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	all, err := r.List(ctx, "")
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, rec := range all {
		if !rec.LastFailedAt.Before(cutoff) {
			continue
		}
		if err := r.Remove(ctx, rec.ID); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

func toDeadLetterItem(rec entities.DeadLetterRecord) deadLetterItem {
	return deadLetterItem{
		ID:            rec.ID,
		EventType:     rec.EventType,
		Payload:       string(rec.Payload),
		ErrorDetail:   rec.ErrorDetail,
		AttemptCount:  rec.AttemptCount,
		FirstFailedAt: rec.FirstFailedAt.UTC().Format(time.RFC3339Nano),
		LastFailedAt:  rec.LastFailedAt.UTC().Format(time.RFC3339Nano),
		CorrelationID: rec.CorrelationID,
		SourceService: rec.SourceService,
	}
}

func fromDeadLetterItem(it deadLetterItem) entities.DeadLetterRecord {
	firstFailedAt, _ := time.Parse(time.RFC3339Nano, it.FirstFailedAt)
	lastFailedAt, _ := time.Parse(time.RFC3339Nano, it.LastFailedAt)
	return entities.DeadLetterRecord{
		ID:            it.ID,
		EventType:     it.EventType,
		Payload:       json.RawMessage(it.Payload),
		ErrorDetail:   it.ErrorDetail,
		AttemptCount:  it.AttemptCount,
		FirstFailedAt: firstFailedAt,
		LastFailedAt:  lastFailedAt,
		CorrelationID: it.CorrelationID,
		SourceService: it.SourceService,
	}
}
