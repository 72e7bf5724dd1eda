package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients holds the SDK clients used for intake and archiving.
type AWSClients struct {
	S3  *s3.Client
	SQS *sqs.Client
}

// NewAWSClients loads the default credential chain (env, shared config, IMDS).
// AWS_ENDPOINT_URL is honoured, and S3 uses path-style addressing so
// LocalStack and MinIO work unchanged.
func NewAWSClients(ctx context.Context) (*AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &AWSClients{
		S3: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		SQS: sqs.NewFromConfig(cfg),
	}, nil
}

// QueueURL resolves a queue name; full URLs are returned unchanged.
func (c *AWSClients) QueueURL(ctx context.Context, nameOrURL string) (string, error) {
	if strings.HasPrefix(nameOrURL, "http://") || strings.HasPrefix(nameOrURL, "https://") {
		return nameOrURL, nil
	}
	resp, err := c.SQS.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(nameOrURL)})
	if err != nil {
		return "", fmt.Errorf("resolve queue %s: %w", nameOrURL, err)
	}
	return aws.ToString(resp.QueueUrl), nil
}
