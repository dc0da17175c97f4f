package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	"chazz/app/models"
)

// Enqueuer hands one batch of a job to whatever processes it.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg models.JobMessage) error
}

// SQSClient is the part of *sqs.Client the queue and worker use.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// NewSQSClient builds a client from the default AWS credential chain.
func NewSQSClient(ctx context.Context) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return sqs.NewFromConfig(awsCfg), nil
}

type SQSQueue struct {
	client   SQSClient
	queueURL string
}

func NewSQSQueue(client SQSClient, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

func (q *SQSQueue) Enqueue(ctx context.Context, msg models.JobMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("send batch %d of job %s: %w", msg.BatchIndex, msg.JobID, err)
	}
	return nil
}

// InlineQueue processes batches in background goroutines of the current
// process. The server uses it when no QUEUE_URL is configured.
type InlineQueue struct {
	proc *BatchProcessor
	log  zerolog.Logger
	wg   sync.WaitGroup
}

func NewInlineQueue(proc *BatchProcessor, log zerolog.Logger) *InlineQueue {
	return &InlineQueue{proc: proc, log: log.With().Str("component", "inline-queue").Logger()}
}

// Enqueue returns immediately. The batch outlives the request that queued it.
func (q *InlineQueue) Enqueue(_ context.Context, msg models.JobMessage) error {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.proc.ProcessBatch(context.Background(), msg); err != nil {
			q.log.Error().
				Err(err).
				Str("job_id", msg.JobID).
				Int("batch_index", msg.BatchIndex).
				Msg("batch failed")
		}
	}()
	return nil
}

// Wait blocks until every queued batch has finished.
func (q *InlineQueue) Wait() { q.wg.Wait() }
