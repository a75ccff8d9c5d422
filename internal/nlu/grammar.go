package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 時刻表現の文法は以下の部品の組み合わせで構成する。
// 発話用と予定ラベル用で異なるのは「点/時」の要否と am/pm 接尾辞の有無のみ。
const (
	numeralClass    = `[零〇一二两三四五六七八九十\d]`
	dateAlternation = `今天|明天|后天|(?:星期|礼拜|周)[一二三四五六日天]`
	periodWords     = `上午|下午|早上|晚上|凌晨`
	minuteWords     = `半|一刻|三刻|` + numeralClass + `{1,3}分|\d{1,2}分?`
	suffixWords     = `(?i:a\.?m\.?|p\.?m\.?)`
	rangeSeparator  = `\s*(?:到|至|-|~|～|〜|–|—|−)\s*`
)

func dateFragment(tag string) string {
	return `(?P<` + tag + `date>` + dateAlternation + `)`
}

func periodFragment(tag string) string {
	return `(?P<` + tag + `period>` + periodWords + `)`
}

func hourFragment(tag string) string {
	return `(?P<` + tag + `hour>` + numeralClass + `{1,3})`
}

// markedMinuteFragment 「点/時 + 分表現」または「:MM」
func markedMinuteFragment(tag string) string {
	return `(?:[点时](?P<` + tag + `minute>` + minuteWords + `)?|[:：](?P<` + tag + `mm>\d{2}))`
}

// utteranceClock 発話中の時刻（点/時 か :MM が必須）
func utteranceClock(tag string) string {
	return `(?:` + dateFragment(tag) + `\s*)?` +
		`(?:` + periodFragment(tag) + `\s*)?` +
		hourFragment(tag) + markedMinuteFragment(tag)
}

// labelClock 予定ラベル中の時刻（区切り記号は任意、am/pm 接尾辞を許容）
func labelClock(tag string) string {
	return `(?:` + periodFragment(tag) + `\s*)?` +
		hourFragment(tag) + markedMinuteFragment(tag) + `?` +
		`(?:\s*(?P<` + tag + `suffix>` + suffixWords + `))?`
}

var (
	rangePattern  = regexp.MustCompile(utteranceClock("s") + rangeSeparator + utteranceClock("e"))
	singlePattern = regexp.MustCompile(utteranceClock("s"))
	datePattern   = regexp.MustCompile(dateFragment("f"))
	labelPattern  = regexp.MustCompile(labelClock("l"))
)

// DateKind 日付修飾の種類
type DateKind int

const (
	DateNone DateKind = iota
	DateToday
	DateTomorrow
	DateDayAfterTomorrow
	DateWeekday
)

// DateQualifier 日付修飾（今天/明天/后天/星期X）
type DateQualifier struct {
	Kind    DateKind
	Weekday time.Weekday
}

// Resolve nowを基準に対象日の0時を返す（DateNoneは当日）
//
// 曜日指定は常に「次に来る」その曜日で、当日と同じ曜日なら7日後になる。
func (d DateQualifier) Resolve(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch d.Kind {
	case DateTomorrow:
		return day.AddDate(0, 0, 1)
	case DateDayAfterTomorrow:
		return day.AddDate(0, 0, 2)
	case DateWeekday:
		diff := (int(d.Weekday) - int(now.Weekday()) + 7) % 7
		if diff == 0 {
			diff = 7
		}
		return day.AddDate(0, 0, diff)
	}
	return day
}

var weekdayNames = map[string]time.Weekday{
	"一": time.Monday,
	"二": time.Tuesday,
	"三": time.Wednesday,
	"四": time.Thursday,
	"五": time.Friday,
	"六": time.Saturday,
	"日": time.Sunday,
	"天": time.Sunday,
}

func parseDateQualifier(text string) DateQualifier {
	switch text {
	case "":
		return DateQualifier{}
	case "今天":
		return DateQualifier{Kind: DateToday}
	case "明天":
		return DateQualifier{Kind: DateTomorrow}
	case "后天":
		return DateQualifier{Kind: DateDayAfterTomorrow}
	}
	runes := []rune(text)
	if wd, ok := weekdayNames[string(runes[len(runes)-1])]; ok {
		return DateQualifier{Kind: DateWeekday, Weekday: wd}
	}
	return DateQualifier{}
}

// Period 時間帯修飾
type Period int

const (
	PeriodNone Period = iota
	PeriodMorning
	PeriodAfternoon
	PeriodEvening
	PeriodEarlyMorning
	PeriodDawn
)

func parsePeriod(text string) Period {
	switch strings.ToLower(strings.ReplaceAll(text, ".", "")) {
	case "上午", "am":
		return PeriodMorning
	case "下午", "pm":
		return PeriodAfternoon
	case "晚上":
		return PeriodEvening
	case "早上":
		return PeriodEarlyMorning
	case "凌晨":
		return PeriodDawn
	}
	return PeriodNone
}

// Clock24 12時間制の時を時間帯に応じて24時間制に変換
func (p Period) Clock24(hour int) int {
	switch p {
	case PeriodAfternoon, PeriodEvening:
		if hour >= 1 && hour <= 11 {
			return hour + 12
		}
	case PeriodMorning, PeriodEarlyMorning, PeriodDawn:
		if hour == 12 {
			return 0
		}
	}
	return hour
}

// Token 1つの時刻表現を分解した結果
type Token struct {
	Date   DateQualifier
	Period Period
	Hour   int
	Minute int
}

// Hour24 時間帯を反映した24時間制の時
func (t Token) Hour24() int {
	return t.Period.Clock24(t.Hour)
}

// MinuteOfDay 0時からの経過分
func (t Token) MinuteOfDay() int {
	return t.Hour24()*60 + t.Minute
}

// Valid 時・分が時計として成立しているか（24:00 は終端として許容）
func (t Token) Valid() bool {
	h := t.Hour24()
	if t.Minute < 0 || t.Minute > 59 || h < 0 || h > 24 {
		return false
	}
	return h < 24 || t.Minute == 0
}

// InheritPeriods 範囲の片側だけが時間帯を持つ場合、もう片側に引き継ぐ
func InheritPeriods(start, end *Token) {
	switch {
	case start.Period != PeriodNone && end.Period == PeriodNone:
		end.Period = start.Period
	case start.Period == PeriodNone && end.Period != PeriodNone:
		start.Period = end.Period
	}
}

// ParseLabelClock 予定ラベルの片側から時刻を読み取る
//
// last が true なら最後に現れた時刻、false なら最初の時刻を採用する。
func ParseLabelClock(text string, last bool) (Token, bool) {
	matches := labelPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return Token{}, false
	}
	idx := matches[0]
	if last {
		idx = matches[len(matches)-1]
	}
	tok := tokenAt(labelPattern, text, idx, "l")
	if suffix := group(labelPattern, text, idx, "lsuffix"); suffix != "" {
		tok.Period = parsePeriod(suffix)
	}
	return tok, true
}

func tokenAt(re *regexp.Regexp, text string, idx []int, tag string) Token {
	tok := Token{
		Date:   parseDateQualifier(group(re, text, idx, tag+"date")),
		Period: parsePeriod(group(re, text, idx, tag+"period")),
		Hour:   Numeral(group(re, text, idx, tag+"hour")),
	}
	if mm := group(re, text, idx, tag+"mm"); mm != "" {
		tok.Minute, _ = strconv.Atoi(mm)
	} else {
		tok.Minute = MinuteIdiom(group(re, text, idx, tag+"minute"))
	}
	return tok
}

func group(re *regexp.Regexp, text string, idx []int, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || 2*i+1 >= len(idx) || idx[2*i] < 0 {
		return ""
	}
	return text[idx[2*i]:idx[2*i+1]]
}
