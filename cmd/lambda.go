package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
	"github.com/k-negishi/voice-calendar-scheduler/internal/usecase"
)

// utteranceStepper 発話1件につき1ラウンドだけ確認するポート
type utteranceStepper interface {
	StepUtterance(ctx context.Context, text string) (usecase.Outcome, error)
}

// lambdaRequest API Gateway経由で受け取るボディ
type lambdaRequest struct {
	Text string `json:"text"`
}

// lambdaResponse Lambda実行結果のレスポンスボディ
type lambdaResponse struct {
	Status   string             `json:"status"`
	ID       string             `json:"negotiation_id,omitempty"`
	Event    *domain.EventDraft `json:"event,omitempty"`
	Conflict string             `json:"conflict,omitempty"`
	Message  string             `json:"message,omitempty"`
}

type lambdaHandler struct {
	stepper utteranceStepper
	logger  *slog.Logger
}

func newLambdaHandler(stepper utteranceStepper, logger *slog.Logger) *lambdaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &lambdaHandler{stepper: stepper, logger: logger}
}

// Handle Lambda関数のメインハンドラー
func (h *lambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	text, err := decodeText(req)
	if err != nil {
		h.logger.Warn("リクエストボディを解析できません", "error", err)
		return respond(http.StatusBadRequest, lambdaResponse{Status: "error", Message: "invalid request body"}), nil
	}
	if text == "" {
		return respond(http.StatusBadRequest, lambdaResponse{Status: "error", Message: "text is required"}), nil
	}

	outcome, err := h.stepper.StepUtterance(ctx, text)
	if err != nil {
		h.logger.Error("カレンダー操作に失敗しました", "negotiation_id", outcome.ID, "state", outcome.State, "error", err)
		return respond(http.StatusBadGateway, lambdaResponse{
			Status:  "error",
			ID:      outcome.ID,
			Event:   &outcome.Draft,
			Message: err.Error(),
		}), nil
	}

	if outcome.State == usecase.StateConflict {
		return respond(http.StatusConflict, lambdaResponse{
			Status:   "conflict",
			ID:       outcome.ID,
			Event:    &outcome.Draft,
			Conflict: outcome.Verdict.Label,
			Message:  "请换一个时间",
		}), nil
	}

	return respond(http.StatusCreated, lambdaResponse{
		Status: "created",
		ID:     outcome.ID,
		Event:  &outcome.Draft,
	}), nil
}

func decodeText(req events.APIGatewayProxyRequest) (string, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", err
		}
		body = string(decoded)
	}

	var in lambdaRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return "", err
	}
	return strings.TrimSpace(in.Text), nil
}

func respond(status int, body lambdaResponse) events.APIGatewayProxyResponse {
	payload, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:       string(payload),
	}
}
