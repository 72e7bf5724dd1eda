package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/service"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

// QueueClient is the slice of the SQS client the intake worker uses.
type QueueClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Admitter registers patients.
type Admitter interface {
	Admit(ctx context.Context, input service.AdmitInput) (*domain.Patient, error)
}

// AdmissionMessage is the JSON body published to the intake queue.
type AdmissionMessage struct {
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	Symptoms []string `json:"symptoms"`
	Priority string   `json:"priority"`
}

type receivedAdmission struct {
	receipt *string
	body    AdmissionMessage
	valid   bool
}

// IntakeWorker long-polls an SQS queue and admits each message.
type IntakeWorker struct {
	client      QueueClient
	queueURL    string
	admitter    Admitter
	waitSeconds int32
	maxMessages int32
	backoff     time.Duration
	logger      *zap.Logger
}

// NewIntakeWorker builds the worker.
func NewIntakeWorker(client QueueClient, queueURL string, admitter Admitter, waitSeconds, maxMessages int32, logger *zap.Logger) *IntakeWorker {
	if maxMessages <= 0 || maxMessages > 10 {
		maxMessages = 10
	}
	return &IntakeWorker{
		client:      client,
		queueURL:    queueURL,
		admitter:    admitter,
		waitSeconds: waitSeconds,
		maxMessages: maxMessages,
		backoff:     5 * time.Second,
		logger:      logger,
	}
}

// Run polls until ctx is cancelled.
func (w *IntakeWorker) Run(ctx context.Context) {
	w.logger.Info("intake worker started", zap.String("queue", w.queueURL))
	for ctx.Err() == nil {
		if _, err := w.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("intake poll failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(w.backoff):
			}
		}
	}
	w.logger.Info("intake worker stopped")
}

// Poll receives one batch and returns how many patients were admitted.
// Messages that fail validation are deleted; other failures are left for redelivery.
func (w *IntakeWorker) Poll(ctx context.Context) (int, error) {
	resp, err := w.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: w.maxMessages,
		WaitTimeSeconds:     w.waitSeconds,
	})
	if err != nil {
		return 0, err
	}

	received := lo.Map(resp.Messages, func(msg types.Message, _ int) receivedAdmission {
		var body AdmissionMessage
		err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &body)
		return receivedAdmission{receipt: msg.ReceiptHandle, body: body, valid: err == nil}
	})

	admitted := 0
	for _, msg := range received {
		if !msg.valid {
			w.logger.Warn("dropping malformed admission message")
			w.delete(ctx, msg.receipt)
			continue
		}
		patient, err := w.admitter.Admit(ctx, service.AdmitInput{
			Name:     msg.body.Name,
			Age:      msg.body.Age,
			Symptoms: msg.body.Symptoms,
			Priority: domain.Priority(msg.body.Priority),
		})
		if err != nil {
			if apperrors.IsValidation(err) {
				w.logger.Warn("dropping invalid admission", zap.Error(err))
				w.delete(ctx, msg.receipt)
				continue
			}
			w.logger.Error("admit from queue", zap.Error(err))
			continue
		}
		w.delete(ctx, msg.receipt)
		admitted++
		w.logger.Info("patient admitted from queue", zap.String("patient_id", string(patient.ID)))
	}
	return admitted, nil
}

func (w *IntakeWorker) delete(ctx context.Context, receipt *string) {
	if receipt == nil {
		return
	}
	if _, err := w.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: receipt,
	}); err != nil {
		w.logger.Warn("delete intake message", zap.Error(err))
	}
}
