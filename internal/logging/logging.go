package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New 構造化ロガーを作成（Lambda環境ではCloudWatch向けにJSON、ローカルではテキスト）
func New(level string, lambda bool) *slog.Logger {
	return NewWithWriter(os.Stdout, level, lambda)
}

// NewWithWriter 出力先を指定してロガーを作成
func NewWithWriter(w io.Writer, level string, lambda bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if lambda {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel LOG_LEVELの文字列をslog.Levelに変換（不明な値はINFO）
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
