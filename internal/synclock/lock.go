package synclock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rentalhq/propsync/internal/model"
)

// DefaultTTL bounds how long a crashed run can keep a slug locked.
const DefaultTTL = 5 * time.Minute

// LockManager implements Locker using DynamoDB conditional writes with
// a TTL attribute.
type LockManager struct {
	client      *dynamodb.Client
	tableName   string
	ttlDuration time.Duration
}

// NewLockManager creates a new LockManager.
func NewLockManager(client *dynamodb.Client, tableName string) *LockManager {
	return &LockManager{
		client:      client,
		tableName:   tableName,
		ttlDuration: DefaultTTL,
	}
}

// Acquire attempts to take the lock for the given run owner.
func (m *LockManager) Acquire(ctx context.Context, slug, owner string) (*model.SyncLock, error) {
	now := time.Now().Unix()
	lock := model.SyncLock{
		Slug:      slug,
		Owner:     owner,
		ExpiresAt: now + int64(m.ttlDuration.Seconds()),
	}

	item, err := attributevalue.MarshalMap(lock)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	// Condition: no lock, expired lock, or our own lock (re-acquire).
	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.tableName),
		Item:      item,
		ConditionExpression: aws.String(
			"attribute_not_exists(slug) OR expires_at < :now OR #owner = :owner",
		),
		ExpressionAttributeNames: map[string]string{
			"#owner": "owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
			":owner": &types.AttributeValueMemberS{Value: owner},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return &lock, nil
}

// Release removes the lock if the owner holds it.
func (m *LockManager) Release(ctx context.Context, slug, owner string) error {
	_, err := m.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(m.tableName),
		Key: map[string]types.AttributeValue{
			"slug": &types.AttributeValueMemberS{Value: slug},
		},
		ConditionExpression: aws.String("#owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: owner},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Status retrieves the current lock, or nil when unlocked or expired.
func (m *LockManager) Status(ctx context.Context, slug string) (*model.SyncLock, error) {
	out, err := m.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(m.tableName),
		Key: map[string]types.AttributeValue{
			"slug": &types.AttributeValueMemberS{Value: slug},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get lock status: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var lock model.SyncLock
	if err := attributevalue.UnmarshalMap(out.Item, &lock); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lock: %w", err)
	}

	if lock.ExpiresAt < time.Now().Unix() {
		return nil, nil // Expired
	}
	return &lock, nil
}
