package ddb

import (
	"context"
	"time"

	"rocketcart/internal/types"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KV keeps each slot as one item (PK=SLOT#<key>, SK=VALUE) in a single table.
// Values are zstd-compressed into a binary attribute.
type KV struct {
	table string
	cli   API
}

type slotItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Value     []byte `dynamodbav:"value"`
	Encoding  string `dynamodbav:"encoding"`
	UpdatedAt int64  `dynamodbav:"updated_at"`
}

func NewKV(table string, cli API) *KV {
	// Creates the table only if it doesn't exist.
	createTableIfNotExists(cli, table)
	return &KV{table: table, cli: cli}
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.table,
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkSlot(key)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skValue()},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return "", false, types.Err(types.ErrDataStoreAccess, err, "ddb get %s", key)
	}
	if out.Item == nil {
		return "", false, nil
	}
	var it slotItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return "", false, types.Err(types.ErrDataStoreAccess, err, "ddb decode %s", key)
	}
	if it.Encoding != encodingZstd {
		return string(it.Value), true, nil
	}
	v, err := decompress(it.Value)
	if err != nil {
		return "", false, types.Err(types.ErrDataStoreAccess, err, "ddb decompress %s", key)
	}
	return v, true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	item, err := attributevalue.MarshalMap(slotItem{
		PK:        pkSlot(key),
		SK:        skValue(),
		Value:     compress(value),
		Encoding:  encodingZstd,
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "ddb encode %s", key)
	}
	_, err = s.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.table,
		Item:      item,
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "ddb put %s", key)
	}
	return nil
}

// Delete removes the slot. Used in tests only.
func (s *KV) Delete(ctx context.Context, key string) error {
	_, err := s.cli.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.table,
		Key: map[string]ddbTypes.AttributeValue{
			"PK": &ddbTypes.AttributeValueMemberS{Value: pkSlot(key)},
			"SK": &ddbTypes.AttributeValueMemberS{Value: skValue()},
		},
	})
	return err
}
