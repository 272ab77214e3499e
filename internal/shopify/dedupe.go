package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/db"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dedupeClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ClaimWebhook records a webhook delivery id with a conditional put and
// reports whether it was already processed. If duplicate, the caller should
// acknowledge and exit early. An unconfigured table never blocks delivery.
func ClaimWebhook(ctx context.Context, ddb dedupeClient, webhookID, shopDomain, topic string) (bool, error) {
	tbl := strings.TrimSpace(db.WebhookDedupeTableName())
	if tbl == "" {
		return false, nil
	}
	webhookID = strings.TrimSpace(webhookID)
	if webhookID == "" {
		return false, nil
	}

	// TTL: keep dedupe records for 7 days
	exp := time.Now().UTC().Add(7 * 24 * time.Hour).Unix()

	_, err := ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tbl),
		Item: map[string]types.AttributeValue{
			"PK":        &types.AttributeValueMemberS{Value: fmt.Sprintf("WH#%s", webhookID)},
			"Shop":      &types.AttributeValueMemberS{Value: shopDomain},
			"Topic":     &types.AttributeValueMemberS{Value: topic},
			"CreatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
			"ExpiresAt": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", exp)},
		},
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return true, nil
		}
		return false, err
	}

	return false, nil
}
