// Package aws implements the storage, queue, secret, mail and log
// capabilities on top of S3, SQS, Secrets Manager, SES and CloudWatch Logs.
package aws

import (
	"os"

	"github.com/alarmvault/alarmvault/pkg/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs/cloudwatchlogsiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/convox/logger"
	"github.com/pkg/errors"
)

var Logger = logger.New("ns=aws")

type Provider struct {
	Bucket             string
	QueueURL           string
	DeadLetterQueueURL string
	LogGroup           string
	MailFrom           string

	CloudWatchLogs cloudwatchlogsiface.CloudWatchLogsAPI
	S3             s3iface.S3API
	SecretsManager secretsmanageriface.SecretsManagerAPI
	SES            sesiface.SESAPI
	SQS            sqsiface.SQSAPI
}

// FromConfig builds a provider with real clients sharing one session.
func FromConfig(c *config.Config) (*Provider, error) {
	s, err := session.NewSession(awsConfig(c.Region, c.Endpoint))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	p := &Provider{
		Bucket:             c.Bucket,
		QueueURL:           c.QueueURL,
		DeadLetterQueueURL: c.DeadLetterQueueURL,
		LogGroup:           c.LogGroup,
		MailFrom:           c.NotifyFrom,

		CloudWatchLogs: cloudwatchlogs.New(s),
		S3:             s3.New(s, aws.NewConfig().WithS3ForcePathStyle(c.Endpoint != "")),
		SecretsManager: secretsmanager.New(s),
		SES:            ses.New(s),
		SQS:            sqs.New(s),
	}

	if p.LogGroup == "" {
		p.LogGroup = lambdaLogGroup()
	}

	return p, nil
}

func awsConfig(region, endpoint string) *aws.Config {
	config := aws.NewConfig()

	if region != "" {
		config.Region = aws.String(region)
	}

	if endpoint != "" {
		config.Endpoint = aws.String(endpoint)
	}

	if os.Getenv("DEBUG") != "" {
		config.WithLogLevel(aws.LogDebugWithHTTPBody)
	}

	return config
}

// lambdaLogGroup is the log group the Lambda runtime writes this function's
// output to.
func lambdaLogGroup() string {
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		return "/aws/lambda/" + fn
	}
	return ""
}
