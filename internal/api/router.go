package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// requestIDHeader リクエストIDを返すヘッダー
const requestIDHeader = "X-Request-ID"

// RouterOptions ルーターの設定
type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	// Limiter nilなら既定値のRateLimiterを使う
	Limiter *RateLimiter
}

// NewRouter HTTPハンドラーを組み立てる（CORS・アクセスログ付き）
func NewRouter(accepter UtteranceAccepter, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit, DefaultRateBurst)
	}

	speech := NewSpeechHandler(accepter, logger)

	r := mux.NewRouter()
	r.Use(requestID)
	r.HandleFunc("/healthz", Healthz).Methods(http.MethodGet)
	r.Handle("/speech", limiter.Middleware(http.HandlerFunc(speech.Speech))).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)

	return handlers.CustomLoggingHandler(io.Discard, cors(r), accessLog(logger))
}

// requestID リクエストごとにIDを払い出してレスポンスヘッダーに付ける
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// accessLog gorilla/handlersのアクセスログをslogに流す
func accessLog(logger *slog.Logger) handlers.LogFormatter {
	return func(_ io.Writer, params handlers.LogFormatterParams) {
		logger.Info("http request",
			"method", params.Request.Method,
			"path", params.URL.Path,
			"status", params.StatusCode,
			"size", params.Size,
			"remote", params.Request.RemoteAddr,
		)
	}
}
