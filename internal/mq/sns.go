package mq

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/schedulr/apiserver/config"
)

type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes to AWS SNS topics. The channel is the topic ARN.
// SNS pushes to its own subscribers, so Subscribe is not supported.
type SNSClient struct {
	client snsPublisher
}

// NewSNSClient loads AWS credentials from the default chain for the
// configured region.
func NewSNSClient(ctx context.Context, cfg config.NotifyConfig) (*SNSClient, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, errors.New("aws region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(awsCfg)}, nil
}

// Publish sends data as the message body. The subject attribute becomes the
// SNS subject; remaining attributes are sent as string message attributes.
func (s *SNSClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("sns topic arn is required")
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(channel),
		Message:  aws.String(string(data)),
	}
	for key, value := range attrs {
		if key == AttrSubject {
			input.Subject = aws.String(value)
			continue
		}
		if input.MessageAttributes == nil {
			input.MessageAttributes = make(map[string]snstypes.MessageAttributeValue, len(attrs))
		}
		input.MessageAttributes[key] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(value),
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

func (s *SNSClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return ErrSubscribeUnsupported
}

func (s *SNSClient) Close() error {
	return nil
}
