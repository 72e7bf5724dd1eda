package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/domain"
	"github.com/spec-kit/patient-flow/internal/service"
	apperrors "github.com/spec-kit/patient-flow/pkg/util/errorutil"
)

type mockQueue struct {
	mu         sync.Mutex
	Messages   []types.Message
	ReceiveErr error
	Deleted    []string
	Inputs     []*sqs.ReceiveMessageInput
}

func (q *mockQueue) ReceiveMessage(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Inputs = append(q.Inputs, params)
	if q.ReceiveErr != nil {
		return nil, q.ReceiveErr
	}
	return &sqs.ReceiveMessageOutput{Messages: q.Messages}, nil
}

func (q *mockQueue) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Deleted = append(q.Deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type mockAdmitter struct {
	mu     sync.Mutex
	Inputs []service.AdmitInput
	ErrFor map[string]error
}

func (a *mockAdmitter) Admit(_ context.Context, input service.AdmitInput) (*domain.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Inputs = append(a.Inputs, input)
	if err := a.ErrFor[input.Name]; err != nil {
		return nil, err
	}
	return &domain.Patient{ID: domain.PatientID("P-" + input.Name), Name: input.Name}, nil
}

func message(receipt, body string) types.Message {
	return types.Message{ReceiptHandle: aws.String(receipt), Body: aws.String(body)}
}

func TestIntakePoll(t *testing.T) {
	queue := &mockQueue{Messages: []types.Message{
		message("r1", `{"name":"Alice","age":34,"symptoms":["Fever"],"priority":"High"}`),
		message("r2", `not json`),
		message("r3", `{"name":"","age":34,"symptoms":["Fever"],"priority":"High"}`),
		message("r4", `{"name":"Bob","age":50,"symptoms":["Cough"],"priority":"Low"}`),
	}}
	admitter := &mockAdmitter{ErrFor: map[string]error{
		"":    apperrors.NewValidationError("invalid admission", nil),
		"Bob": errors.New("database unavailable"),
	}}
	w := NewIntakeWorker(queue, "https://sqs.local/intake", admitter, 1, 20, zap.NewNop())

	admitted, err := w.Poll(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if admitted != 1 {
		t.Errorf("expected 1 admitted, got %d", admitted)
	}
	if len(admitter.Inputs) != 3 {
		t.Errorf("expected 3 admit calls, got %d", len(admitter.Inputs))
	}
	if admitter.Inputs[0].Priority != domain.PriorityHigh || admitter.Inputs[0].Age != 34 {
		t.Errorf("unexpected decoded admission %+v", admitter.Inputs[0])
	}

	deleted := map[string]bool{}
	for _, r := range queue.Deleted {
		deleted[r] = true
	}
	for receipt, want := range map[string]bool{"r1": true, "r2": true, "r3": true, "r4": false} {
		if deleted[receipt] != want {
			t.Errorf("receipt %s deleted=%v, want %v", receipt, deleted[receipt], want)
		}
	}

	in := queue.Inputs[0]
	if in.MaxNumberOfMessages != 10 || in.WaitTimeSeconds != 1 || aws.ToString(in.QueueUrl) != "https://sqs.local/intake" {
		t.Errorf("unexpected receive input %+v", in)
	}
}

func TestIntakePollReceiveError(t *testing.T) {
	queue := &mockQueue{ReceiveErr: errors.New("throttled")}
	w := NewIntakeWorker(queue, "q", &mockAdmitter{}, 0, 5, zap.NewNop())
	if _, err := w.Poll(context.Background()); err == nil {
		t.Error("expected an error")
	}
}
