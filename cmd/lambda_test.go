package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/voice-calendar-scheduler/internal/conflict"
	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
	"github.com/k-negishi/voice-calendar-scheduler/internal/usecase"
)

// MockStepper は utteranceStepper のテスト用モック
type MockStepper struct {
	mock.Mock
}

func (m *MockStepper) StepUtterance(ctx context.Context, text string) (usecase.Outcome, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(usecase.Outcome), args.Error(1)
}

func newTestLambdaHandler(stepper utteranceStepper) *lambdaHandler {
	return newLambdaHandler(stepper, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testOutcome(state usecase.State) usecase.Outcome {
	cst := time.FixedZone("CST", 8*60*60)
	return usecase.Outcome{
		ID:    "negotiation-1",
		State: state,
		Draft: domain.NewEventDraft("开会", "明天下午2点到3点开会",
			time.Date(2026, 10, 18, 14, 0, 0, 0, cst),
			time.Date(2026, 10, 18, 15, 0, 0, 0, cst)),
		Rounds: 1,
	}
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) lambdaResponse {
	t.Helper()
	var body lambdaResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func TestHandle_Created(t *testing.T) {
	stepper := new(MockStepper)
	stepper.On("StepUtterance", mock.Anything, "明天下午2点到3点开会").Return(testOutcome(usecase.StateDone), nil)
	h := newTestLambdaHandler(stepper)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"text":"明天下午2点到3点开会"}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "created", body.Status)
	assert.Equal(t, "negotiation-1", body.ID)
	require.NotNil(t, body.Event)
	assert.Equal(t, "14:00", body.Event.StartTime)
	stepper.AssertExpectations(t)
}

func TestHandle_Conflict(t *testing.T) {
	outcome := testOutcome(usecase.StateConflict)
	outcome.Verdict = conflict.Verdict{Conflict: true, Label: "2–3pm Standup"}

	stepper := new(MockStepper)
	stepper.On("StepUtterance", mock.Anything, mock.Anything).Return(outcome, nil)
	h := newTestLambdaHandler(stepper)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"text":"明天下午2点到3点开会"}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "conflict", body.Status)
	assert.Equal(t, "2–3pm Standup", body.Conflict)
}

func TestHandle_DriverFailure(t *testing.T) {
	stepper := new(MockStepper)
	stepper.On("StepUtterance", mock.Anything, mock.Anything).
		Return(testOutcome(usecase.StateCreate), errors.New("予定の作成に失敗しました: forbidden"))
	h := newTestLambdaHandler(stepper)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: `{"text":"明天下午2点到3点开会"}`})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp).Message, "forbidden")
}

func TestHandle_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		req  events.APIGatewayProxyRequest
	}{
		{"JSONでない", events.APIGatewayProxyRequest{Body: "明天"}},
		{"textが空", events.APIGatewayProxyRequest{Body: `{"text":""}`}},
		{"base64が壊れている", events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepper := new(MockStepper)
			h := newTestLambdaHandler(stepper)

			resp, err := h.Handle(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			stepper.AssertNotCalled(t, "StepUtterance", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_Base64Body(t *testing.T) {
	stepper := new(MockStepper)
	stepper.On("StepUtterance", mock.Anything, "明天下午2点到3点开会").Return(testOutcome(usecase.StateDone), nil)
	h := newTestLambdaHandler(stepper)

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"text":"明天下午2点到3点开会"}`))
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{Body: encoded, IsBase64Encoded: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Headers["Content-Type"])
}
