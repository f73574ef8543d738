package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DB is the structured data access boundary the engine's services depend on.
// *DynamoService is the production implementation; tests substitute an
// in-memory fake.
type DB interface {
	// GetItem returns the item for key, or (nil, nil) when absent.
	GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error)
	PutItem(ctx context.Context, tableName string, item interface{}) error
	// PutItemIfAbsent inserts the item only when no item exists for its key.
	// It returns false (and no error) when the key is already taken, making
	// the store the single authority for insert-unique races.
	PutItemIfAbsent(ctx context.Context, tableName string, item interface{}, keyAttr string) (bool, error)
	UpdateItem(ctx context.Context, tableName string, updateExpression string, key map[string]types.AttributeValue, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string) (map[string]types.AttributeValue, error)
	DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error
	QueryItems(ctx context.Context, tableName string, keyConditionExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, limit int32) ([]map[string]types.AttributeValue, error)
	QueryItemsWithIndex(ctx context.Context, tableName string, indexName string, keyConditionExpression string, expressionAttributeValues map[string]types.AttributeValue, expressionAttributeNames map[string]string, limit int32) ([]map[string]types.AttributeValue, error)
}

// DynamoService is a thin gateway over the DynamoDB client.
type DynamoService struct {
	Client *dynamodb.Client
}

// InitializeDynamoDBClient initializes the DynamoDB client
func InitializeDynamoDBClient(region string) *dynamodb.Client {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return dynamodb.NewFromConfig(cfg)
}

// GetItem retrieves an item from DynamoDB. A missing item is not an error.
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}
	if output.Item == nil {
		return nil, nil
	}
	return output.Item, nil
}

// PutItem marshals and writes an item, replacing any existing item for its key.
func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &tableName,
		Item:      marshaledItem,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	return nil
}

// PutItemIfAbsent writes an item guarded by attribute_not_exists(keyAttr), the
// atomic insert-unique primitive used for match and conversation creation.
func (ds *DynamoService) PutItemIfAbsent(ctx context.Context, tableName string, item interface{}, keyAttr string) (bool, error) {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return false, fmt.Errorf("failed to marshal item: %w", err)
	}

	condition := fmt.Sprintf("attribute_not_exists(%s)", keyAttr)
	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &tableName,
		Item:                marshaledItem,
		ConditionExpression: &condition,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return false, nil
		}
		return false, fmt.Errorf("failed to conditionally put item in table '%s': %w", tableName, err)
	}
	return true, nil
}

// UpdateItem applies an update expression and returns the new attributes.
func (ds *DynamoService) UpdateItem(
	ctx context.Context,
	tableName string,
	updateExpression string,
	key map[string]types.AttributeValue,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
) (map[string]types.AttributeValue, error) {
	if len(key) == 0 {
		return nil, errors.New("update failed: key cannot be empty")
	}
	if updateExpression == "" {
		return nil, errors.New("update failed: updateExpression cannot be empty")
	}

	var expAttrValues map[string]types.AttributeValue
	if len(expressionAttributeValues) > 0 {
		expAttrValues = expressionAttributeValues
	}

	output, err := ds.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &tableName,
		Key:                       key,
		UpdateExpression:          &updateExpression,
		ExpressionAttributeValues: expAttrValues,
		ExpressionAttributeNames:  expressionAttributeNames,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}
	if output.Attributes == nil {
		return map[string]types.AttributeValue{}, nil
	}
	return output.Attributes, nil
}

// DeleteItem removes an item from DynamoDB
func (ds *DynamoService) DeleteItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) error {
	_, err := ds.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &tableName,
		Key:       key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from table '%s': %w", tableName, err)
	}
	return nil
}

// QueryItems queries items using a KeyConditionExpression
func (ds *DynamoService) QueryItems(
	ctx context.Context,
	tableName string,
	keyConditionExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	limit int32,
) ([]map[string]types.AttributeValue, error) {
	output, err := ds.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 &tableName,
		KeyConditionExpression:    &keyConditionExpression,
		ExpressionAttributeValues: expressionAttributeValues,
		ExpressionAttributeNames:  expressionAttributeNames,
		Limit:                     &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query items from table '%s': %w", tableName, err)
	}
	return output.Items, nil
}

// QueryItemsWithIndex queries items through a Global Secondary Index
func (ds *DynamoService) QueryItemsWithIndex(
	ctx context.Context,
	tableName string,
	indexName string,
	keyConditionExpression string,
	expressionAttributeValues map[string]types.AttributeValue,
	expressionAttributeNames map[string]string,
	limit int32,
) ([]map[string]types.AttributeValue, error) {
	output, err := ds.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 &tableName,
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    &keyConditionExpression,
		ExpressionAttributeValues: expressionAttributeValues,
		ExpressionAttributeNames:  expressionAttributeNames,
		Limit:                     &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query GSI '%s': %w", indexName, err)
	}
	return output.Items, nil
}
