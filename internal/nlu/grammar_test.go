package nlu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodClock24(t *testing.T) {
	tests := []struct {
		name     string
		period   Period
		hour     int
		expected int
	}{
		{"下午3点", PeriodAfternoon, 3, 15},
		{"晚上11点", PeriodEvening, 11, 23},
		{"下午12点はそのまま", PeriodAfternoon, 12, 12},
		{"下午15点はそのまま", PeriodAfternoon, 15, 15},
		{"下午0点はそのまま", PeriodAfternoon, 0, 0},
		{"上午12点は0時", PeriodMorning, 12, 0},
		{"凌晨12点は0時", PeriodDawn, 12, 0},
		{"早上12点は0時", PeriodEarlyMorning, 12, 0},
		{"上午9点", PeriodMorning, 9, 9},
		{"時間帯なし", PeriodNone, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.period.Clock24(tt.hour))
		})
	}
}

func TestDateQualifierResolve(t *testing.T) {
	cst := time.FixedZone("CST", 8*60*60)
	// 2026-10-17 は土曜日
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, cst)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"修飾なし", "", "2026-10-17"},
		{"今天", "今天", "2026-10-17"},
		{"明天", "明天", "2026-10-18"},
		{"后天", "后天", "2026-10-19"},
		{"星期一", "星期一", "2026-10-19"},
		{"周五", "周五", "2026-10-23"},
		{"礼拜天", "礼拜天", "2026-10-18"},
		{"同じ曜日は翌週", "星期六", "2026-10-24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDateQualifier(tt.input).Resolve(now)
			assert.Equal(t, tt.expected, got.Format("2006-01-02"))
			assert.Equal(t, 0, got.Hour())
		})
	}
}

func TestInheritPeriods(t *testing.T) {
	t.Run("開始側の時間帯を終了側が引き継ぐ", func(t *testing.T) {
		start := Token{Period: PeriodAfternoon, Hour: 3}
		end := Token{Hour: 4}
		InheritPeriods(&start, &end)
		assert.Equal(t, 16, end.Hour24())
	})

	t.Run("終了側の時間帯を開始側が引き継ぐ", func(t *testing.T) {
		start := Token{Hour: 3}
		end := Token{Period: PeriodAfternoon, Hour: 4}
		InheritPeriods(&start, &end)
		assert.Equal(t, 15, start.Hour24())
	})

	t.Run("両側に時間帯があれば変更しない", func(t *testing.T) {
		start := Token{Period: PeriodEvening, Hour: 11}
		end := Token{Period: PeriodDawn, Hour: 1}
		InheritPeriods(&start, &end)
		assert.Equal(t, PeriodEvening, start.Period)
		assert.Equal(t, PeriodDawn, end.Period)
	})
}

func TestParseLabelClock(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		last       bool
		wantMinute int
		wantPeriod Period
	}{
		{"数字のみ", "2", false, 2 * 60, PeriodNone},
		{"pm接尾辞", "3pm", false, 15 * 60, PeriodAfternoon},
		{"大文字PM", "3:30 PM", false, 15*60 + 30, PeriodAfternoon},
		{"a.m.", "11 a.m.", false, 11 * 60, PeriodMorning},
		{"24時間表記", "14:00", false, 14 * 60, PeriodNone},
		{"中国語の時間帯", "下午2点半", false, 14*60 + 30, PeriodAfternoon},
		{"漢数字", "十点一刻", false, 10*60 + 15, PeriodNone},
		{"最後の時刻を採用", "10月17日 9:30", true, 9*60 + 30, PeriodNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, ok := ParseLabelClock(tt.input, tt.last)
			require.True(t, ok)
			assert.Equal(t, tt.wantMinute, tok.MinuteOfDay())
			assert.Equal(t, tt.wantPeriod, tok.Period)
			assert.True(t, tok.Valid())
		})
	}

	t.Run("時刻がなければ失敗", func(t *testing.T) {
		_, ok := ParseLabelClock("Standup", false)
		assert.False(t, ok)
	})
}

func TestTokenValid(t *testing.T) {
	assert.True(t, Token{Hour: 24}.Valid())
	assert.False(t, Token{Hour: 24, Minute: 30}.Valid())
	assert.False(t, Token{Hour: 25}.Valid())
	assert.False(t, Token{Hour: 9, Minute: 75}.Valid())
}
