package db

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// NewDynamoClient builds a client from the Lambda execution role creds.
func NewDynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func SessionsTableName() string {
	return os.Getenv("SESSIONS_TABLE")
}

func WebhookDedupeTableName() string {
	return os.Getenv("WEBHOOK_DEDUPE_TABLE")
}
