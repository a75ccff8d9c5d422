package gateway

import (
	"context"
	"log/slog"
)

// LogAnnouncer 読み上げ内容を構造化ログに出力するVoiceIOの実装（LINE未設定時に使用）
type LogAnnouncer struct {
	logger *slog.Logger
}

func NewLogAnnouncer(logger *slog.Logger) *LogAnnouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAnnouncer{logger: logger}
}

func (a *LogAnnouncer) Announce(ctx context.Context, message string) {
	a.logger.InfoContext(ctx, "announce", "message", message)
}
