package db

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func IdempotencyTableName() string {
	return os.Getenv("RC_IDEMPOTENCY_TABLE")
}

// NewDynamoClient uses the Lambda execution role's credentials.
func NewDynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

type noteClaim struct {
	PK        string `dynamodbav:"PK"`
	OrderID   string `dynamodbav:"OrderId"`
	CreatedAt string `dynamodbav:"CreatedAt"`
	ExpiresAt int64  `dynamodbav:"ExpiresAt"`
}

// ClaimNoteRepair records a one-time claim for an order's note-repair pass.
// Returns (isDuplicate, error). When no table is configured the claim always
// succeeds, so note mode keeps its re-append behavior.
func ClaimNoteRepair(ctx context.Context, orderID string) (bool, error) {
	tbl := strings.TrimSpace(IdempotencyTableName())
	if tbl == "" {
		return false, nil
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return false, nil
	}

	// Keep claim records for 7 days
	now := time.Now().UTC()

	av, err := attributevalue.MarshalMap(noteClaim{
		PK:        "NOTE#" + orderID,
		OrderID:   orderID,
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: now.Add(7 * 24 * time.Hour).Unix(),
	})
	if err != nil {
		return false, err
	}

	ddb, err := NewDynamoClient(ctx)
	if err != nil {
		return false, err
	}

	_, err = ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(tbl),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		// Conditional check failed => note already applied
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return true, nil
		}
		return false, err
	}

	return false, nil
}
