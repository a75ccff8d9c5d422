package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// shutdownTimeout 終了時に処理中のリクエストを待つ上限
const shutdownTimeout = 3 * time.Second

// Server ctxの終了で停止するHTTPサーバー
type Server struct {
	httpSrv *http.Server
	logger  *slog.Logger
}

func NewServer(handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpSrv: &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second},
		logger:  logger,
	}
}

// ListenAndServe addrで待ち受け、ctxが終了したらシャットダウンする
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		return errors.New("listen address required")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve lnで待ち受ける。正常なシャットダウンではnilを返す
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.shutdownOnContext(ctx)

	s.logger.Info("HTTPサーバーを起動しました", "addr", ln.Addr().String())
	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdownOnContext(ctx context.Context) {
	<-ctx.Done()
	timeout, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(timeout); err != nil {
		s.logger.Warn("HTTPサーバーの停止に失敗しました", "error", err)
	}
}
