package repository

import (
	"context"
	"sort"
	"time"

	"tripmarket/internal/domain/entities"
	"tripmarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultAuditTableName = "audit_trail"
	auditEntityIndex      = "entity_key-index"
)

type auditItem struct {
	ID        string `dynamodbav:"id"`
	Timestamp string `dynamodbav:"timestamp"`

	// EntityKey is "<entity_type>#<entity_id>", the GSI partition key, so one
	// query returns the trail of a single entity in timestamp order.
	EntityKey  string `dynamodbav:"entity_key"`
	EntityType string `dynamodbav:"entity_type"`
	EntityID   string `dynamodbav:"entity_id"`

	ActorID   string `dynamodbav:"actor_id"`
	ActorType string `dynamodbav:"actor_type"`

	Action        string `dynamodbav:"action"`
	PreviousState string `dynamodbav:"previous_state,omitempty"`
	NewState      string `dynamodbav:"new_state"`

	AmountCents int64 `dynamodbav:"amount_cents,omitempty"`

	Reason        string `dynamodbav:"reason,omitempty"`
	CorrelationID string `dynamodbav:"correlation_id"`
}

// AuditDynamoRepository is the append-only DynamoDB sink for audit entries.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: entity_key-index (PK: entity_key, SK: timestamp)
//
// There is no update or delete path: the table is write-once per entry.

type AuditDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IAuditTrailRepository = (*AuditDynamoRepository)(nil)

func NewAuditDynamoRepository(ddb *dynamodb.Client) *AuditDynamoRepository {
	return &AuditDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("AUDIT_TABLE", defaultAuditTableName),
	}
}

func (r *AuditDynamoRepository) Append(ctx context.Context, e entities.AuditEntry) error {
	it := toAuditItem(e)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	return err
}

func (r *AuditDynamoRepository) ListByEntity(ctx context.Context, entityType entities.AuditEntityType, entityID string) ([]entities.AuditEntry, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(auditEntityIndex),
		KeyConditionExpression: aws.String("entity_key = :ek"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ek": &types.AttributeValueMemberS{Value: auditEntityKey(entityType, entityID)},
		},
	})
	if err != nil {
		return nil, err
	}

	entries := make([]entities.AuditEntry, 0, len(out.Items))
	for _, raw := range out.Items {
		var it auditItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		entries = append(entries, fromAuditItem(it))
	}
	// The GSI sort key already orders by timestamp; keep the guarantee even if
	// the index projection changes.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	return entries, nil
}

func auditEntityKey(entityType entities.AuditEntityType, entityID string) string {
	return string(entityType) + "#" + entityID
}

func toAuditItem(e entities.AuditEntry) auditItem {
	return auditItem{
		ID:            e.ID,
		Timestamp:     e.Timestamp.UTC().Format(time.RFC3339Nano),
		EntityKey:     auditEntityKey(e.EntityType, e.EntityID),
		EntityType:    string(e.EntityType),
		EntityID:      e.EntityID,
		ActorID:       e.ActorID,
		ActorType:     e.ActorType,
		Action:        e.Action,
		PreviousState: e.PreviousState,
		NewState:      e.NewState,
		AmountCents:   e.AmountCents,
		Reason:        e.Reason,
		CorrelationID: e.CorrelationID,
	}
}

func fromAuditItem(it auditItem) entities.AuditEntry {
	ts, _ := time.Parse(time.RFC3339Nano, it.Timestamp)
	return entities.AuditEntry{
		ID:            it.ID,
		Timestamp:     ts,
		EntityType:    entities.AuditEntityType(it.EntityType),
		EntityID:      it.EntityID,
		ActorID:       it.ActorID,
		ActorType:     it.ActorType,
		Action:        it.Action,
		PreviousState: it.PreviousState,
		NewState:      it.NewState,
		AmountCents:   it.AmountCents,
		Reason:        it.Reason,
		CorrelationID: it.CorrelationID,
	}
}
