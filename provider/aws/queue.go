package aws

import (
	"context"
	"strconv"
	"time"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/pkg/errors"
)

// MaxQueueDelay is the longest delivery delay SQS accepts.
const MaxQueueDelay = 900 * time.Second

// QueueSend enqueues body on the processing queue, delayed by opts.Delay
// clamped to what SQS accepts.
func (p *Provider) QueueSend(ctx context.Context, body string, opts structs.QueueSendOptions) (string, error) {
	log := Logger.At("QueueSend").Namespace("delay=%s", opts.Delay).Start()

	if p.QueueURL == "" {
		return "", log.Error(ErrNotConfigured("queue"))
	}

	res, err := p.SQS.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		DelaySeconds:      aws.Int64(delaySeconds(opts.Delay)),
		MessageAttributes: messageAttributes(opts.Attributes),
		MessageBody:       aws.String(body),
		QueueUrl:          aws.String(p.QueueURL),
	})
	if err != nil {
		return "", log.Error(errors.WithStack(err))
	}

	log.Successf("id=%s", aws.StringValue(res.MessageId))

	return aws.StringValue(res.MessageId), nil
}

// QueueReceive long-polls the processing queue.
func (p *Provider) QueueReceive(ctx context.Context, max int) ([]structs.QueueMessage, error) {
	if p.QueueURL == "" {
		return nil, ErrNotConfigured("queue")
	}

	if max < 1 || max > 10 {
		max = 10
	}

	res, err := p.SQS.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		AttributeNames:        []*string{aws.String("All")},
		MaxNumberOfMessages:   aws.Int64(int64(max)),
		MessageAttributeNames: []*string{aws.String("All")},
		QueueUrl:              aws.String(p.QueueURL),
		WaitTimeSeconds:       aws.Int64(10),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ms := make([]structs.QueueMessage, 0, len(res.Messages))

	for _, m := range res.Messages {
		qm := structs.QueueMessage{
			ID:            aws.StringValue(m.MessageId),
			Body:          aws.StringValue(m.Body),
			Attributes:    map[string]string{},
			ReceiptHandle: aws.StringValue(m.ReceiptHandle),
		}

		for k, v := range m.MessageAttributes {
			qm.Attributes[k] = aws.StringValue(v.StringValue)
		}

		if n, err := strconv.Atoi(aws.StringValue(m.Attributes["ApproximateReceiveCount"])); err == nil {
			qm.ReceiveCount = n
		}

		ms = append(ms, qm)
	}

	return ms, nil
}

func (p *Provider) QueueDelete(ctx context.Context, m structs.QueueMessage) error {
	if p.QueueURL == "" {
		return ErrNotConfigured("queue")
	}

	_, err := p.SQS.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.QueueURL),
		ReceiptHandle: aws.String(m.ReceiptHandle),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// QueueDepth returns the approximate number of visible messages on queue.
func (p *Provider) QueueDepth(ctx context.Context, queue string) (int64, error) {
	if queue == "" {
		return 0, ErrNotConfigured("queue")
	}

	res, err := p.SQS.GetQueueAttributesWithContext(ctx, &sqs.GetQueueAttributesInput{
		AttributeNames: []*string{aws.String(sqs.QueueAttributeNameApproximateNumberOfMessages)},
		QueueUrl:       aws.String(queue),
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}

	n, err := strconv.ParseInt(aws.StringValue(res.Attributes[sqs.QueueAttributeNameApproximateNumberOfMessages]), 10, 64)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return n, nil
}

// DeadLetterSend puts a failed message on the application dead-letter queue
// with its body untouched.
func (p *Provider) DeadLetterSend(ctx context.Context, e structs.DeadLetterEnvelope) (string, error) {
	log := Logger.At("DeadLetterSend").Namespace("reason=%q", e.FailureReason).Start()

	if p.DeadLetterQueueURL == "" {
		return "", log.Error(ErrNotConfigured("dead letter queue"))
	}

	res, err := p.SQS.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		MessageAttributes: messageAttributes(e.Attributes()),
		MessageBody:       aws.String(e.Body),
		QueueUrl:          aws.String(p.DeadLetterQueueURL),
	})
	if err != nil {
		return "", log.Error(errors.WithStack(err))
	}

	log.Successf("id=%s", aws.StringValue(res.MessageId))

	return aws.StringValue(res.MessageId), nil
}

// messageAttributes converts to SQS string attributes. SQS rejects empty
// values so those are dropped.
func messageAttributes(attrs map[string]string) map[string]*sqs.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}

	mas := map[string]*sqs.MessageAttributeValue{}

	for k, v := range attrs {
		if v == "" {
			continue
		}

		mas[k] = &sqs.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	return mas
}

func delaySeconds(d time.Duration) int64 {
	switch {
	case d < 0:
		return 0
	case d > MaxQueueDelay:
		return int64(MaxQueueDelay / time.Second)
	}

	return int64(d / time.Second)
}
