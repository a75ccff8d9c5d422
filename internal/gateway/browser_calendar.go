package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

// ブラウザ操作の既定値
const (
	DefaultCalendarURL    = "https://calendar.google.com"
	DefaultUserDataDir    = "chrome_data"
	DefaultBrowserTimeout = 60 * time.Second
)

// 画面要素のセレクタ（中国語UI）
const (
	mainSelector       = `[role="main"]`
	eventChipSelector  = `[data-eventchip]`
	createButtonXPath  = `//*[normalize-space(text())="创建"]`
	saveButtonXPath    = `//*[normalize-space(text())="保存"]`
	titleInputSelector = `input[aria-label="添加标题"]`
	startInputSelector = `input[aria-label="开始时间"]`
	endInputSelector   = `input[aria-label="结束时间"]`
)

// BrowserOptions ブラウザ操作の設定
type BrowserOptions struct {
	// BaseURL 既定は https://calendar.google.com
	BaseURL string
	// UserDataDir ログイン状態を保持するプロファイルディレクトリ
	UserDataDir string
	Headless    bool
	// Timeout 1回の操作全体の上限
	Timeout time.Duration
}

// BrowserCalendar ログイン済みのChromeでカレンダー画面を操作するCalendarDriverの実装
type BrowserCalendar struct {
	opts   BrowserOptions
	logger *slog.Logger
}

// NewBrowserCalendar BrowserCalendarを作成
func NewBrowserCalendar(opts BrowserOptions, logger *slog.Logger) *BrowserCalendar {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCalendarURL
	}
	if opts.UserDataDir == "" {
		opts.UserDataDir = DefaultUserDataDir
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBrowserTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserCalendar{opts: opts, logger: logger}
}

// ListEventsForDate 日表示を開き、予定チップのテキストをラベルとして返す
func (b *BrowserCalendar) ListEventsForDate(ctx context.Context, date time.Time) ([]string, error) {
	var chips []string
	if err := b.run(ctx, b.listTasks(date, &chips)); err != nil {
		return nil, errors.Wrap(err, "カレンダー画面から予定を読み取れませんでした")
	}

	labels := make([]string, 0, len(chips))
	for _, chip := range chips {
		if label := normalizeChipText(chip); label != "" {
			labels = append(labels, label)
		}
	}
	b.logger.Debug("カレンダー画面から予定を読み取りました", "date", date.Format(domain.DateLayout), "count", len(labels))
	return labels, nil
}

// CreateEvent 创建 → タイトル・時刻入力 → 保存 の順に画面を操作して予定を作成
func (b *BrowserCalendar) CreateEvent(ctx context.Context, draft domain.EventDraft) error {
	if err := b.run(ctx, b.createTasks(draft)); err != nil {
		return errors.Wrap(err, "カレンダー画面での予定作成に失敗しました")
	}
	b.logger.Info("カレンダー画面で予定を作成しました", "title", draft.Title, "start", draft.StartDate+" "+draft.StartTime)
	return nil
}

func (b *BrowserCalendar) listTasks(date time.Time, chips *[]string) chromedp.Tasks {
	script := fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.innerText)`,
		eventChipSelector,
	)
	return chromedp.Tasks{
		chromedp.Navigate(dayViewURL(b.opts.BaseURL, date)),
		chromedp.WaitVisible(mainSelector, chromedp.ByQuery),
		chromedp.Sleep(time.Second),
		chromedp.Evaluate(script, chips),
	}
}

func (b *BrowserCalendar) createTasks(draft domain.EventDraft) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.Navigate(dayViewURL(b.opts.BaseURL, draft.Start)),
		chromedp.WaitVisible(mainSelector, chromedp.ByQuery),
		chromedp.Click(createButtonXPath, chromedp.BySearch),
		chromedp.WaitVisible(titleInputSelector, chromedp.ByQuery),
		chromedp.SendKeys(titleInputSelector, draft.Title, chromedp.ByQuery),
		chromedp.Clear(startInputSelector, chromedp.ByQuery),
		chromedp.SendKeys(startInputSelector, draft.StartTime, chromedp.ByQuery),
		chromedp.Clear(endInputSelector, chromedp.ByQuery),
		chromedp.SendKeys(endInputSelector, draft.EndTime, chromedp.ByQuery),
		chromedp.Click(saveButtonXPath, chromedp.BySearch),
		chromedp.WaitNotPresent(titleInputSelector, chromedp.ByQuery),
	}
}

// run プロファイル付きのChromeを起動してタスクを実行する
func (b *BrowserCalendar) run(parent context.Context, tasks chromedp.Tasks) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, b.allocatorOptions()...)
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		b.logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer timeoutCancel()

	return chromedp.Run(ctx, tasks)
}

func (b *BrowserCalendar) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, 0, len(chromedp.DefaultExecAllocatorOptions)+2)
	opts = append(opts, chromedp.DefaultExecAllocatorOptions[:]...)
	return append(opts,
		chromedp.UserDataDir(b.opts.UserDataDir),
		chromedp.Flag("headless", b.opts.Headless),
	)
}

// dayViewURL 指定日の日表示URL
func dayViewURL(baseURL string, date time.Time) string {
	return fmt.Sprintf("%s/calendar/r/day/%d/%d/%d",
		strings.TrimRight(baseURL, "/"), date.Year(), int(date.Month()), date.Day())
}

// normalizeChipText 改行やカンマ区切りのチップ表記を1行のラベルにまとめる
func normalizeChipText(text string) string {
	text = strings.NewReplacer("，", " ", ",", " ").Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
