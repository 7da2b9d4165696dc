package notifier

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/dmitrijs2005/chatandpay/internal/logging"
	"github.com/dmitrijs2005/chatandpay/internal/server/config"
)

const (
	challengeTemplate   = "Your chatandpay verification code is %s."
	confirmationMessage = "Your chatandpay phone number has been verified."
)

// Publisher is the part of the SNS client the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier sends transactional SMS through AWS SNS.
type SNSNotifier struct {
	client   Publisher
	senderID string
	log      logging.Logger
}

// NewSNSNotifier loads the AWS configuration for cfg.SNSRegion. Static keys
// are used when both are set, otherwise the default credential chain.
func NewSNSNotifier(ctx context.Context, cfg *config.Config, log logging.Logger) (*SNSNotifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.SNSRegion)}
	if cfg.SNSAccessKeyID != "" && cfg.SNSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SNSAccessKeyID, cfg.SNSSecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.SNSBaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SNSBaseEndpoint)
		}
	})

	return NewSNSNotifierWithClient(client, cfg.SNSSenderID, log), nil
}

// NewSNSNotifierWithClient wraps an existing client.
func NewSNSNotifierWithClient(client Publisher, senderID string, log logging.Logger) *SNSNotifier {
	return &SNSNotifier{
		client:   client,
		senderID: senderID,
		log:      log.With("module", "notifier", "backend", "sns"),
	}
}

func (n *SNSNotifier) SendChallenge(ctx context.Context, phone, code string) error {
	return n.publish(ctx, phone, fmt.Sprintf(challengeTemplate, code))
}

func (n *SNSNotifier) SendConfirmation(ctx context.Context, phone string) error {
	return n.publish(ctx, phone, confirmationMessage)
}

func (n *SNSNotifier) publish(ctx context.Context, phone, message string) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if n.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(n.senderID)}
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}

	n.log.Info(ctx, "sms sent", "phone", MaskPhone(phone), "message_id", aws.ToString(out.MessageId))
	return nil
}
