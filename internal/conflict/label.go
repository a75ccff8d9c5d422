package conflict

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
	"github.com/k-negishi/voice-calendar-scheduler/internal/nlu"
)

const separator = "-"

// dashReplacer ダッシュ類と範囲を表す語を区切り記号に統一する
var dashReplacer = strings.NewReplacer(
	"\u2013", separator, // en dash
	"\u2014", separator, // em dash
	"\u2212", separator, // minus sign
	"\u2012", separator, // figure dash
	"\u2010", separator, // hyphen
	"~", separator,
	"\uff5e", separator,
	"\u301c", separator,
	"至", separator,
	"到", separator,
)

var (
	errNoSeparator = errors.New("区切り記号がありません")
	errNoClock     = errors.New("時刻が読み取れません")
	errInvalid     = errors.New("時刻が範囲外です")
)

// ParseLabel 外部カレンダーの予定ラベルを区間に変換
//
// 例: "2–3pm Standup", "下午2点至3点", "14:00 - 15:30 定例"
func ParseLabel(label string) (domain.Interval, error) {
	normalized := normalizeLabel(label)

	startText, endText, found := strings.Cut(normalized, separator)
	if !found {
		return domain.Interval{}, errNoSeparator
	}
	endText = strings.TrimSpace(endText)
	if i := strings.IndexFunc(endText, unicode.IsSpace); i >= 0 {
		endText = endText[:i]
	}

	start, ok := nlu.ParseLabelClock(startText, true)
	if !ok {
		return domain.Interval{}, errors.Wrap(errNoClock, "開始側")
	}
	end, ok := nlu.ParseLabelClock(endText, false)
	if !ok {
		return domain.Interval{}, errors.Wrap(errNoClock, "終了側")
	}

	nlu.InheritPeriods(&start, &end)
	if !start.Valid() || !end.Valid() {
		return domain.Interval{}, errInvalid
	}

	return domain.NewInterval(start.MinuteOfDay(), end.MinuteOfDay()), nil
}

// normalizeLabel 不可視文字を除去し、空白とダッシュを統一する
func normalizeLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\u2060' || r == '\ufeff':
			continue
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(dashReplacer.Replace(b.String()))
}
