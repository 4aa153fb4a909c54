package ddb

import (
	"banco/internal/types"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	waitTimeout = 30 * time.Second
	// BatchWriteItem accepts at most 25 requests
	batchSize = 25
)

type Store[T types.Record[T]] struct {
	table      string
	collection string
	cli        *dynamodb.Client
}

// NewStore returns a store for one collection. The table must exist, see CreateTableIfNotExists.
func NewStore[T types.Record[T]](table, collection string, cli *dynamodb.Client) *Store[T] {
	return &Store[T]{table: table, collection: collection, cli: cli}
}

type keyItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	ID int64  `dynamodbav:"id"`
}

func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	id, err := s.nextID(ctx)
	if err != nil {
		return zero, err
	}
	rec = rec.WithID(id)
	recItem, err := s.marshalRecord(rec)
	if err != nil {
		return zero, err
	}
	keyAV, err := attributevalue.MarshalMap(keyItem{PK: pkKeys(s.collection), SK: rec.RecordKey(), ID: id})
	if err != nil {
		return zero, err
	}
	_, err = s.cli.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbTypes.TransactWriteItem{
			{Put: &ddbTypes.Put{
				TableName:           &s.table,
				Item:                keyAV,
				ConditionExpression: awsString("attribute_not_exists(PK)"),
			}},
			{Put: &ddbTypes.Put{
				TableName: &s.table,
				Item:      recItem,
			}},
		},
	})
	if err != nil {
		if failedCondition(err) >= 0 {
			return zero, types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
		}
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	return rec, nil
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	var startKey map[string]ddbTypes.AttributeValue
	for {
		page, err := s.cli.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.table,
			KeyConditionExpression: awsString("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]ddbTypes.AttributeValue{
				":pk": &ddbTypes.AttributeValueMemberS{Value: pkRecords(s.collection)},
				":sk": &ddbTypes.AttributeValueMemberS{Value: SID + "#"},
			},
			ConsistentRead:    awsBool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, types.Err(types.ErrDataStoreAccess, err, "")
		}
		for _, item := range page.Items {
			var rec T
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		startKey = page.LastEvaluatedKey
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// ListPage reads the whole collection; DynamoDB has no offset queries.
func (s *Store[T]) ListPage(ctx context.Context, page, size int) ([]T, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return types.Page(all, page, size), nil
}

func (s *Store[T]) Count(ctx context.Context) (int, error) {
	total := 0
	var startKey map[string]ddbTypes.AttributeValue
	for {
		out, err := s.cli.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.table,
			KeyConditionExpression: awsString("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]ddbTypes.AttributeValue{
				":pk": &ddbTypes.AttributeValueMemberS{Value: pkRecords(s.collection)},
				":sk": &ddbTypes.AttributeValueMemberS{Value: SID + "#"},
			},
			Select:            ddbTypes.SelectCount,
			ConsistentRead:    awsBool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, types.Err(types.ErrDataStoreAccess, err, "")
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (s *Store[T]) GetByID(ctx context.Context, id int64) (T, error) {
	var zero T
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		Key:            itemKey(pkRecords(s.collection), skRecord(id)),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	if out.Item == nil {
		return zero, types.ErrNotFound
	}
	var rec T
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return zero, err
	}
	return rec, nil
}

func (s *Store[T]) GetByKey(ctx context.Context, key string) (T, error) {
	var zero T
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		Key:            itemKey(pkKeys(s.collection), key),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	if out.Item == nil {
		return zero, types.ErrNotFound
	}
	var k keyItem
	if err := attributevalue.UnmarshalMap(out.Item, &k); err != nil {
		return zero, err
	}
	return s.GetByID(ctx, k.ID)
}

func (s *Store[T]) Update(ctx context.Context, rec T) error {
	prev, err := s.GetByID(ctx, rec.RecordID())
	if err != nil {
		return err
	}
	recItem, err := s.marshalRecord(rec)
	if err != nil {
		return err
	}
	items := []ddbTypes.TransactWriteItem{
		{Put: &ddbTypes.Put{
			TableName:           &s.table,
			Item:                recItem,
			ConditionExpression: awsString("attribute_exists(PK)"),
		}},
	}
	if prev.RecordKey() != rec.RecordKey() {
		keyAV, err := attributevalue.MarshalMap(keyItem{PK: pkKeys(s.collection), SK: rec.RecordKey(), ID: rec.RecordID()})
		if err != nil {
			return err
		}
		items = append(items,
			ddbTypes.TransactWriteItem{Put: &ddbTypes.Put{
				TableName:           &s.table,
				Item:                keyAV,
				ConditionExpression: awsString("attribute_not_exists(PK)"),
			}},
			ddbTypes.TransactWriteItem{Delete: &ddbTypes.Delete{
				TableName: &s.table,
				Key:       itemKey(pkKeys(s.collection), prev.RecordKey()),
			}},
		)
	}
	_, err = s.cli.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		switch failedCondition(err) {
		case -1:
		case 0:
			// record vanished since GetByID
			return types.ErrNotFound
		default:
			return types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
		}
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

func (s *Store[T]) DeleteByID(ctx context.Context, id int64) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.cli.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbTypes.TransactWriteItem{
			{Delete: &ddbTypes.Delete{TableName: &s.table, Key: itemKey(pkRecords(s.collection), skRecord(id))}},
			{Delete: &ddbTypes.Delete{TableName: &s.table, Key: itemKey(pkKeys(s.collection), prev.RecordKey())}},
		},
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

// DeleteAll removes the records and their key items. The id counter is kept.
func (s *Store[T]) DeleteAll(ctx context.Context) error {
	all, err := s.List(ctx)
	if err != nil {
		return err
	}
	reqs := make([]ddbTypes.WriteRequest, 0, 2*len(all))
	for _, rec := range all {
		reqs = append(reqs,
			ddbTypes.WriteRequest{DeleteRequest: &ddbTypes.DeleteRequest{Key: itemKey(pkRecords(s.collection), skRecord(rec.RecordID()))}},
			ddbTypes.WriteRequest{DeleteRequest: &ddbTypes.DeleteRequest{Key: itemKey(pkKeys(s.collection), rec.RecordKey())}},
		)
	}
	for len(reqs) > 0 {
		n := min(batchSize, len(reqs))
		pending := map[string][]ddbTypes.WriteRequest{s.table: reqs[:n]}
		reqs = reqs[n:]
		for len(pending) > 0 {
			out, err := s.cli.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return types.Err(types.ErrDataStoreAccess, err, "")
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

func (s *Store[T]) nextID(ctx context.Context) (int64, error) {
	out, err := s.cli.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.table,
		Key:              itemKey(pkSeq(), s.collection),
		UpdateExpression: awsString("ADD #seq :one"),
		ExpressionAttributeNames: map[string]string{
			"#seq": "seq",
		},
		ExpressionAttributeValues: map[string]ddbTypes.AttributeValue{
			":one": &ddbTypes.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: ddbTypes.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, types.Err(types.ErrDataStoreAccess, err, "next id for %s", s.collection)
	}
	n, ok := out.Attributes["seq"].(*ddbTypes.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("next id for %s: missing seq attribute", s.collection)
	}
	return strconv.ParseInt(n.Value, 10, 64)
}

func (s *Store[T]) marshalRecord(rec T) (map[string]ddbTypes.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, err
	}
	for k, v := range itemKey(pkRecords(s.collection), skRecord(rec.RecordID())) {
		av[k] = v
	}
	return av, nil
}

// failedCondition returns the index of the transaction item whose condition failed, or -1.
func failedCondition(err error) int {
	var tce *ddbTypes.TransactionCanceledException
	if errors.As(err, &tce) {
		for i, r := range tce.CancellationReasons {
			if r.Code != nil && *r.Code == "ConditionalCheckFailed" {
				return i
			}
		}
		return -1
	}
	var cc *ddbTypes.ConditionalCheckFailedException
	if errors.As(err, &cc) {
		return 0
	}
	return -1
}
