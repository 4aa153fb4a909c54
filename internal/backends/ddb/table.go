package ddb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Single table layout, every collection shares it:
//
//	PK=<COLLECTION>        SK=ID#<zero padded id>  the record itself
//	PK=<COLLECTION>#KEY    SK=<record key>         unique key -> id
//	PK=SEQ                 SK=<COLLECTION>         id counter
const (
	SKey = "KEY"
	SID  = "ID"
	SSeq = "SEQ"
)

func pkRecords(collection string) string { return collection }
func skRecord(id int64) string           { return fmt.Sprintf("%s#%019d", SID, id) }
func pkKeys(collection string) string    { return fmt.Sprintf("%s#%s", collection, SKey) }
func pkSeq() string                      { return SSeq }

func itemKey(pk, sk string) map[string]ddbTypes.AttributeValue {
	return map[string]ddbTypes.AttributeValue{
		"PK": &ddbTypes.AttributeValueMemberS{Value: pk},
		"SK": &ddbTypes.AttributeValueMemberS{Value: sk},
	}
}

// CreateTableIfNotExists creates the table and waits until it is active.
// An already existing table is not an error.
func CreateTableIfNotExists(ctx context.Context, client *dynamodb.Client, table string) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: &table,
		AttributeDefinitions: []ddbTypes.AttributeDefinition{
			{AttributeName: awsString("PK"), AttributeType: ddbTypes.ScalarAttributeTypeS},
			{AttributeName: awsString("SK"), AttributeType: ddbTypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbTypes.KeySchemaElement{
			{AttributeName: awsString("PK"), KeyType: ddbTypes.KeyTypeHash},
			{AttributeName: awsString("SK"), KeyType: ddbTypes.KeyTypeRange},
		},
		BillingMode: ddbTypes.BillingModePayPerRequest,
	})
	var re *ddbTypes.ResourceInUseException
	if err != nil && !errors.As(err, &re) {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return dynamodb.NewTableExistsWaiter(client).Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: &table,
	}, waitTimeout)
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
