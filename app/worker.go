package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"

	"chazz/app/models"
)

// Worker long-polls an SQS queue and runs each JobMessage through a
// BatchProcessor.
type Worker struct {
	client     SQSClient
	queueURL   string
	proc       *BatchProcessor
	log        zerolog.Logger
	jobTimeout time.Duration
	idleSleep  time.Duration
	errSleep   time.Duration
}

func NewWorker(client SQSClient, queueURL string, proc *BatchProcessor, log zerolog.Logger) *Worker {
	return &Worker{
		client:     client,
		queueURL:   queueURL,
		proc:       proc,
		log:        log.With().Str("component", "worker").Str("queue", queueURL).Logger(),
		jobTimeout: 2 * time.Minute,
		idleSleep:  2 * time.Second,
		errSleep:   5 * time.Second,
	}
}

// Run polls until ctx ends.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Msg("worker started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := w.Poll(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			w.log.Error().Err(err).Msg("ReceiveMessage error")
			sleep(ctx, w.errSleep)
		case n == 0:
			// No work; small sleep to avoid hot loop
			sleep(ctx, w.idleSleep)
		}
	}
}

// Poll receives one round of messages and handles them, returning how many
// arrived.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	recvCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	resp, err := w.client.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: 5,
		WaitTimeSeconds:     20,  // long polling
		VisibilityTimeout:   180, // must exceed the batch timeout
	})
	cancel()
	if err != nil {
		return 0, err
	}
	for _, m := range resp.Messages {
		w.HandleMessage(ctx, m)
	}
	return len(resp.Messages), nil
}

// HandleMessage processes one message and reports whether it was deleted.
// Successful and undecodable messages are deleted. Failed batches stay on
// the queue and become visible again after the visibility timeout.
func (w *Worker) HandleMessage(ctx context.Context, m sqstypes.Message) bool {
	if m.Body == nil {
		w.log.Warn().Msg("received message with empty body")
		w.deleteMessage(m)
		return true
	}

	var job models.JobMessage
	if err := json.Unmarshal([]byte(*m.Body), &job); err != nil {
		w.log.Error().Err(err).Str("body", *m.Body).Msg("failed to unmarshal job message")
		w.deleteMessage(m)
		return true
	}

	log := w.log.With().Str("job_id", job.JobID).Int("batch_index", job.BatchIndex).Logger()
	log.Info().Int("positions", len(job.FENs)).Msg("received batch")

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	err := w.proc.ProcessBatch(jobCtx, job)
	cancel()

	switch {
	case err == nil:
		w.deleteMessage(m)
		return true
	case errors.Is(err, ErrPermanent):
		log.Error().Err(err).Msg("dropping batch")
		w.deleteMessage(m)
		return true
	default:
		log.Error().Err(err).Msg("batch failed, leaving it for retry")
		return false
	}
}

func (w *Worker) deleteMessage(m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := w.client.DeleteMessage(context.Background(), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		w.log.Error().Err(err).Msg("failed to delete SQS message")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
