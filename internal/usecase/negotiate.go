package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/k-negishi/voice-calendar-scheduler/internal/conflict"
	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

// CalendarDriver カレンダーの読み書きを行うポート
type CalendarDriver interface {
	// ListEventsForDate 指定日の予定ラベルを表示順に返す
	ListEventsForDate(ctx context.Context, date time.Time) ([]string, error)
	CreateEvent(ctx context.Context, draft domain.EventDraft) error
}

// VoiceIO ユーザーへの読み上げを行うポート（送りっぱなし）
type VoiceIO interface {
	Announce(ctx context.Context, message string)
}

// DraftParser 発話をEventDraftに変換するポート
type DraftParser interface {
	Parse(text string, now time.Time) domain.EventDraft
}

// State 交渉ループの状態
type State string

const (
	StateParseAndCheck State = "PARSE_AND_CHECK"
	StateConflict      State = "CONFLICT"
	StateAwaitInput    State = "AWAIT_INPUT"
	StateFree          State = "FREE"
	StateCreate        State = "CREATE"
	StateDone          State = "DONE"
	StateGaveUp        State = "GAVE_UP"
)

// ErrGaveUp 上限ラウンド数に達しても空き時間が見つからなかった
var ErrGaveUp = errors.New("交渉の上限回数に達しました")

// Outcome 1回の交渉の結果
type Outcome struct {
	ID      string
	State   State
	Draft   domain.EventDraft
	Verdict conflict.Verdict
	Rounds  int
}

// NegotiateOptions NegotiateUseCaseの任意設定
type NegotiateOptions struct {
	// MaxRounds 0なら上限なし
	MaxRounds int
	Logger    *slog.Logger
	Clock     func() time.Time
}

// NegotiateUseCase 発話の解析・重複確認・再提案を空き時間が見つかるまで繰り返すユースケース
type NegotiateUseCase struct {
	parser    DraftParser
	checker   *conflict.Checker
	driver    CalendarDriver
	voice     VoiceIO
	inbox     *Mailbox
	maxRounds int
	logger    *slog.Logger
	clock     func() time.Time
}

// NewNegotiateUseCase ユースケースを生成
func NewNegotiateUseCase(parser DraftParser, driver CalendarDriver, voice VoiceIO, inbox *Mailbox, opts NegotiateOptions) *NegotiateUseCase {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &NegotiateUseCase{
		parser:    parser,
		checker:   conflict.NewChecker(logger),
		driver:    driver,
		voice:     voice,
		inbox:     inbox,
		maxRounds: opts.MaxRounds,
		logger:    logger,
		clock:     clock,
	}
}

// AcceptUtterance 発話を解析してEventDraftを返し、交渉ループ用のメールボックスに格納する
func (uc *NegotiateUseCase) AcceptUtterance(text string) domain.EventDraft {
	u := domain.Utterance{Text: text, ReceivedAt: uc.clock()}
	draft := uc.parser.Parse(u.Text, u.ReceivedAt)
	uc.inbox.Put(u)

	uc.logger.Info("発話を受け付けました",
		"utterance", text,
		"start", draft.StartDate+" "+draft.StartTime,
		"end", draft.EndDate+" "+draft.EndTime,
	)
	return draft
}

// Run メールボックスから発話を取り出して交渉を繰り返す（ctx終了まで）
func (uc *NegotiateUseCase) Run(ctx context.Context) error {
	for {
		u, err := uc.inbox.Take(ctx)
		if err != nil {
			return nil
		}

		outcome, err := uc.Negotiate(ctx, u)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			uc.logger.Error("交渉が失敗しました",
				"negotiation_id", outcome.ID,
				"state", outcome.State,
				"error", err,
			)
		}
	}
}

// Negotiate 1件の発話について空き時間が見つかるまで交渉する
//
// 重複していれば読み上げて次の発話を待つ。待機にタイムアウトはない。
// 作成に失敗しても再試行はしない。
func (uc *NegotiateUseCase) Negotiate(ctx context.Context, u domain.Utterance) (Outcome, error) {
	outcome := Outcome{ID: uuid.NewString()}
	logger := uc.logger.With("negotiation_id", outcome.ID)

	for {
		outcome.Rounds++
		outcome.Draft = uc.parser.Parse(u.Text, u.ReceivedAt)

		state, verdict, err := uc.step(ctx, logger, outcome.Draft)
		outcome.State = state
		outcome.Verdict = verdict
		if err != nil || state == StateDone {
			return outcome, err
		}

		if uc.maxRounds > 0 && outcome.Rounds >= uc.maxRounds {
			outcome.State = StateGaveUp
			logger.Warn("上限回数に達したため交渉を終了します", "state", StateGaveUp, "rounds", outcome.Rounds)
			uc.voice.Announce(ctx, "已经尝试多次仍未找到空闲时间，本次日程安排已取消。")
			return outcome, ErrGaveUp
		}

		outcome.State = StateAwaitInput
		logger.Info("新しい発話を待機します", "state", StateAwaitInput, "rounds", outcome.Rounds)
		next, err := uc.inbox.Take(ctx)
		if err != nil {
			return outcome, err
		}
		u = next
	}
}

// Step 1ラウンド分の確認を行う。重複なら読み上げ、空いていれば予定を1回だけ作成する
func (uc *NegotiateUseCase) Step(ctx context.Context, draft domain.EventDraft) (State, conflict.Verdict, error) {
	return uc.step(ctx, uc.logger, draft)
}

// StepUtterance 発話を解析して1ラウンドだけ確認する（待機しない）
//
// 言い直しはクライアント側が新しいリクエストとして送り直す。
func (uc *NegotiateUseCase) StepUtterance(ctx context.Context, text string) (Outcome, error) {
	outcome := Outcome{ID: uuid.NewString(), Rounds: 1}
	logger := uc.logger.With("negotiation_id", outcome.ID)

	outcome.Draft = uc.parser.Parse(text, uc.clock())
	state, verdict, err := uc.step(ctx, logger, outcome.Draft)
	outcome.State = state
	outcome.Verdict = verdict
	return outcome, err
}

func (uc *NegotiateUseCase) step(ctx context.Context, logger *slog.Logger, draft domain.EventDraft) (State, conflict.Verdict, error) {
	logger.Debug("予定の重複を確認します", "state", StateParseAndCheck, "title", draft.Title)

	start := draft.Start
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	labels, err := uc.driver.ListEventsForDate(ctx, date)
	if err != nil {
		return StateParseAndCheck, conflict.Verdict{}, errors.Wrap(err, "予定一覧の取得に失敗しました")
	}

	verdict := uc.checker.Check(conflict.IntervalFor(draft), labels)
	if verdict.Conflict {
		logger.Info("既存の予定と重複しています",
			"state", StateConflict,
			"label", verdict.Label,
			"busy", verdict.Busy.String(),
		)
		uc.voice.Announce(ctx, conflictMessage(draft, verdict))
		return StateConflict, verdict, nil
	}

	logger.Info("空き時間のため予定を作成します", "state", StateFree, "skipped_labels", verdict.Skipped)
	logger.Debug("予定を作成します", "state", StateCreate)
	if err := uc.driver.CreateEvent(ctx, draft); err != nil {
		return StateCreate, verdict, errors.Wrap(err, "予定の作成に失敗しました")
	}

	logger.Info("予定を作成しました",
		"state", StateDone,
		"title", draft.Title,
		"start", draft.StartDate+" "+draft.StartTime,
		"end", draft.EndDate+" "+draft.EndTime,
	)
	return StateDone, verdict, nil
}

// conflictMessage 重複時の読み上げメッセージ
func conflictMessage(draft domain.EventDraft, verdict conflict.Verdict) string {
	return fmt.Sprintf("%s %s 已有安排（%s），请换一个时间。",
		draft.StartDate, verdict.Busy.String(), verdict.Label)
}
