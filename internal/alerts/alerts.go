// Package alerts pushes best-effort ops notifications to SNS. Nothing here
// may fail a webhook acknowledgment.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// NotifyUninstall publishes a shop-uninstalled notice to the ops topic.
// No topic configured means no-op.
func NotifyUninstall(ctx context.Context, client SNSClient, shopDomain string, sessionsDeleted int) error {
	topicArn := strings.TrimSpace(config.AlertsTopicArn())
	if topicArn == "" {
		return nil
	}

	subject := fmt.Sprintf("Shop uninstalled: %s", shopDomain)
	message := fmt.Sprintf("shop=%s sessions_deleted=%d at=%s",
		shopDomain, sessionsDeleted, time.Now().UTC().Format(time.RFC3339))

	_, err := client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	return err
}
