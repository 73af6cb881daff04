package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

// SNSAPI is the subset of the SNS client the publisher uses
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher delivers step schedule notices to an SNS topic, one message per step
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
	now      func() time.Time
	logger   *zap.Logger
}

var _ onboarding.Notifier = (*SNSPublisher)(nil)

func NewSNSPublisher(client SNSAPI, topicARN string, logger *zap.Logger) *SNSPublisher {
	return &SNSPublisher{
		client:   client,
		topicARN: topicARN,
		now:      time.Now,
		logger:   logger,
	}
}

// NewSNSClient builds an SNS client from the default AWS credential chain
func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return sns.NewFromConfig(cfg), nil
}

// PublishStepSchedule publishes every notice and returns the joined publish errors
func (p *SNSPublisher) PublishStepSchedule(ctx context.Context, notices []onboarding.StepNotice) error {
	var errs []error
	for _, notice := range notices {
		if err := p.publish(ctx, notice); err != nil {
			errs = append(errs, fmt.Errorf("step %s: %w", notice.StepCode, err))
		}
	}
	if len(errs) > 0 {
		p.logger.Warn("Some step notices were not published",
			zap.Int("failed", len(errs)),
			zap.Int("total", len(notices)))
	}
	return errors.Join(errs...)
}

func (p *SNSPublisher) publish(ctx context.Context, notice onboarding.StepNotice) error {
	msg := newStepScheduleMessage(notice, p.now())
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type":      stringAttribute(msg.EventType),
			"organization_id": stringAttribute(notice.OrganizationID.String()),
			"assigned_to":     stringAttribute(string(notice.AssignedTo)),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish notice: %w", err)
	}

	p.logger.Debug("Step notice published",
		zap.String("progress_id", notice.ProgressID.String()),
		zap.String("step_code", notice.StepCode),
		zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}

func stringAttribute(value string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(value),
	}
}
