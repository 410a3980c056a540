package aws_test

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/stretchr/testify/mock"
)

type mockS3 struct {
	s3iface.S3API
	mock.Mock
}

func (m *mockS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	args := m.MethodCalled("GetObject", in)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error) {
	args := m.MethodCalled("HeadObject", in)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3) ListObjectsV2PagesWithContext(ctx aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	args := m.MethodCalled("ListObjectsV2Pages", in)
	if pages, ok := args.Get(0).([]*s3.ListObjectsV2Output); ok {
		for i, p := range pages {
			if !fn(p, i == len(pages)-1) {
				break
			}
		}
	}
	return args.Error(1)
}

func (m *mockS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	args := m.MethodCalled("PutObject", in)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

type mockSQS struct {
	sqsiface.SQSAPI
	mock.Mock
}

func (m *mockSQS) DeleteMessageWithContext(ctx aws.Context, in *sqs.DeleteMessageInput, opts ...request.Option) (*sqs.DeleteMessageOutput, error) {
	args := m.MethodCalled("DeleteMessage", in)
	out, _ := args.Get(0).(*sqs.DeleteMessageOutput)
	return out, args.Error(1)
}

func (m *mockSQS) GetQueueAttributesWithContext(ctx aws.Context, in *sqs.GetQueueAttributesInput, opts ...request.Option) (*sqs.GetQueueAttributesOutput, error) {
	args := m.MethodCalled("GetQueueAttributes", in)
	out, _ := args.Get(0).(*sqs.GetQueueAttributesOutput)
	return out, args.Error(1)
}

func (m *mockSQS) ReceiveMessageWithContext(ctx aws.Context, in *sqs.ReceiveMessageInput, opts ...request.Option) (*sqs.ReceiveMessageOutput, error) {
	args := m.MethodCalled("ReceiveMessage", in)
	out, _ := args.Get(0).(*sqs.ReceiveMessageOutput)
	return out, args.Error(1)
}

func (m *mockSQS) SendMessageWithContext(ctx aws.Context, in *sqs.SendMessageInput, opts ...request.Option) (*sqs.SendMessageOutput, error) {
	args := m.MethodCalled("SendMessage", in)
	out, _ := args.Get(0).(*sqs.SendMessageOutput)
	return out, args.Error(1)
}

type mockSecretsManager struct {
	secretsmanageriface.SecretsManagerAPI
	mock.Mock
}

func (m *mockSecretsManager) GetSecretValueWithContext(ctx aws.Context, in *secretsmanager.GetSecretValueInput, opts ...request.Option) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.MethodCalled("GetSecretValue", in)
	out, _ := args.Get(0).(*secretsmanager.GetSecretValueOutput)
	return out, args.Error(1)
}

type mockSES struct {
	sesiface.SESAPI
	mock.Mock
}

func (m *mockSES) SendRawEmailWithContext(ctx aws.Context, in *ses.SendRawEmailInput, opts ...request.Option) (*ses.SendRawEmailOutput, error) {
	args := m.MethodCalled("SendRawEmail", in)
	out, _ := args.Get(0).(*ses.SendRawEmailOutput)
	return out, args.Error(1)
}
