package conflict

import (
	"log/slog"
	"math"
	"time"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

// Verdict 重複判定の結果
type Verdict struct {
	Conflict bool
	// Label 最初に重複した予定ラベル（重複なしなら空）
	Label string
	Busy  domain.Interval
	// Skipped 読み取れずに読み飛ばしたラベル数
	Skipped int
}

// Checker 候補区間と既存予定ラベルの重複を判定する
//
// 判定は外部から取得した（古い可能性のある）予定一覧に対する参考情報で、
// カレンダーの状態は変更しない。
type Checker struct {
	logger *slog.Logger
}

// NewChecker Checkerを生成
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{logger: logger}
}

// Check 候補区間がラベルのいずれかと重なるかを判定（最初の重複で打ち切る）
func (c *Checker) Check(candidate domain.Interval, labels []string) Verdict {
	var verdict Verdict
	for _, label := range labels {
		busy, err := ParseLabel(label)
		if err != nil {
			verdict.Skipped++
			c.logger.Warn("予定ラベルを読み取れないためスキップしました",
				"label", label,
				"error", err,
			)
			continue
		}
		if candidate.Overlaps(busy) {
			verdict.Conflict = true
			verdict.Label = label
			verdict.Busy = busy
			return verdict
		}
	}
	return verdict
}

// IntervalFor EventDraftを開始日の0時基準の区間に変換
func IntervalFor(draft domain.EventDraft) domain.Interval {
	start := draft.Start
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	end := draft.End.In(start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, start.Location())

	days := int(math.Round(endDay.Sub(startDay).Hours() / 24))
	startMinute := start.Hour()*60 + start.Minute()
	endMinute := days*domain.MinutesPerDay + end.Hour()*60 + end.Minute()
	return domain.NewInterval(startMinute, endMinute)
}
