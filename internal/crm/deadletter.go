package crm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/legendmotors/skywell-leads/internal/leads"
)

// sqsAPI is the part of *sqs.Client the dead-letter sink needs.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSDeadLetter stores failed CRM submissions on an SQS queue so they can be
// replayed by hand.
type SQSDeadLetter struct {
	client   sqsAPI
	queueURL string
}

// NewSQSDeadLetter creates a sink around the provided SQS client.
func NewSQSDeadLetter(client sqsAPI, queueURL string) *SQSDeadLetter {
	if client == nil {
		panic("crm: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("crm: SQS queueURL cannot be empty")
	}
	return &SQSDeadLetter{client: client, queueURL: queueURL}
}

// Publish sends f as a JSON message tagged with the lead kind.
func (d *SQSDeadLetter) Publish(ctx context.Context, f leads.Failure) error {
	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("crm: encode failure: %w", err)
	}
	_, err = d.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(d.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(f.Kind)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("crm: failed to send SQS message: %w", err)
	}
	return nil
}
