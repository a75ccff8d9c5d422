package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/k-negishi/voice-calendar-scheduler/internal/api"
	"github.com/k-negishi/voice-calendar-scheduler/internal/config"
	"github.com/k-negishi/voice-calendar-scheduler/internal/gateway"
	"github.com/k-negishi/voice-calendar-scheduler/internal/logging"
	"github.com/k-negishi/voice-calendar-scheduler/internal/nlu"
	"github.com/k-negishi/voice-calendar-scheduler/internal/usecase"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "voice-calendar-scheduler",
		Short:        "音声の予定をカレンダーの空き時間と突き合わせて登録する",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context())
		},
	}
	root.AddCommand(newParseCmd())
	return root
}

// runServer Lambda環境ではLambdaハンドラー、それ以外ではHTTPサーバーと交渉ループを起動
func runServer(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, config.IsLambda())
	slog.SetDefault(logger)

	uc, err := buildUseCase(ctx, cfg, logger)
	if err != nil {
		logger.Error("初期化に失敗しました", "error", err)
		return err
	}

	if config.IsLambda() {
		lambda.StartWithOptions(newLambdaHandler(uc, logger).Handle, lambda.WithContext(ctx))
		return nil
	}
	return serve(ctx, cfg, uc, logger)
}

// serve HTTPサーバーと交渉ループを並行して動かす
func serve(ctx context.Context, cfg *config.Config, uc *usecase.NegotiateUseCase, logger *slog.Logger) error {
	router := api.NewRouter(uc, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})
	server := api.NewServer(router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.ListenAddr)
	})
	g.Go(func() error {
		return uc.Run(gctx)
	})
	return g.Wait()
}

// buildUseCase 設定に応じてドライバーと通知先を組み立てる
func buildUseCase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*usecase.NegotiateUseCase, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var driver usecase.CalendarDriver
	switch cfg.CalendarDriver {
	case config.DriverBrowser:
		driver = gateway.NewBrowserCalendar(gateway.BrowserOptions{
			UserDataDir: cfg.BrowserUserDataDir,
			Headless:    cfg.BrowserHeadless,
		}, logger)
	default:
		repo, err := gateway.NewGoogleCalendarRepository(ctx, []byte(cfg.GoogleCredentials), cfg.CalendarID, loc, logger)
		if err != nil {
			return nil, errors.Wrap(err, "Google Calendarの初期化に失敗しました")
		}
		driver = repo
	}

	var voice usecase.VoiceIO = gateway.NewLogAnnouncer(logger)
	if cfg.LineEnabled() {
		voice = gateway.NewLINENotifier(cfg.LineChannelAccessToken, cfg.LineUserID, logger)
	}

	return usecase.NewNegotiateUseCase(
		nlu.NewParser(loc, logger),
		driver,
		voice,
		usecase.NewMailbox(cfg.PollInterval),
		usecase.NegotiateOptions{
			MaxRounds: cfg.MaxRounds,
			Logger:    logger,
		},
	), nil
}
