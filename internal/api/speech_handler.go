package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

// maxSpeechBodyBytes 受け付けるリクエストボディの上限
const maxSpeechBodyBytes = 64 << 10

// UtteranceAccepter 発話を受け取って解析結果を返すポート
type UtteranceAccepter interface {
	AcceptUtterance(text string) domain.EventDraft
}

type speechRequest struct {
	Text string `json:"text"`
}

type speechResponse struct {
	Status string             `json:"status"`
	Event  *domain.EventDraft `json:"event,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// SpeechHandler 音声認識結果のテキストを受け付けるハンドラー
type SpeechHandler struct {
	accepter UtteranceAccepter
	logger   *slog.Logger
}

func NewSpeechHandler(accepter UtteranceAccepter, logger *slog.Logger) *SpeechHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechHandler{accepter: accepter, logger: logger}
}

// Speech POST /speech
func (h *SpeechHandler) Speech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSpeechBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("リクエストボディを解析できません", "error", err)
		writeJSON(w, http.StatusBadRequest, speechResponse{Status: "error", Error: "invalid request body"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, speechResponse{Status: "error", Error: "text is required"})
		return
	}

	draft := h.accepter.AcceptUtterance(text)
	writeJSON(w, http.StatusOK, speechResponse{Status: "accepted", Event: &draft})
}

// Healthz GET /healthz
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
