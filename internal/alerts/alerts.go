package alerts

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// NotifyFailure publishes a short failure alert to RC_ALERT_TOPIC_ARN.
// Best effort: a missing topic or publish error never fails the request.
func NotifyFailure(ctx context.Context, subject, message string) {
	topic := strings.TrimSpace(os.Getenv("RC_ALERT_TOPIC_ARN"))
	if topic == "" {
		return
	}

	// SNS subject limit
	if len(subject) > 100 {
		subject = subject[:100]
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("alerts: aws config: %v", err)
		return
	}

	_, err = sns.NewFromConfig(cfg).Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topic),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		log.Printf("alerts: publish failed: %v", err)
	}
}
