package nlu

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestParser テスト用の Parser と固定の現在時刻を返すヘルパー
func newTestParser() (*Parser, time.Time) {
	cst := time.FixedZone("CST", 8*60*60)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// 2026-10-17 (土) 10:00:42
	now := time.Date(2026, 10, 17, 10, 0, 42, 0, cst)
	return NewParser(cst, logger), now
}

func TestParse_Range(t *testing.T) {
	parser, now := newTestParser()

	tests := []struct {
		name      string
		input     string
		startDate string
		startTime string
		endDate   string
		endTime   string
		title     string
	}{
		{"明天の範囲", "明天下午2点到3点开会", "2026-10-18", "14:00", "2026-10-18", "15:00", "开会"},
		{"終了側の時間帯を継承", "3点到下午4点讨论", "2026-10-17", "15:00", "2026-10-17", "16:00", "讨论"},
		{"開始側の時間帯を継承", "下午3点至5点", "2026-10-17", "15:00", "2026-10-17", "17:00", DefaultTitle},
		{"分の慣用表現", "上午9点半到10点一刻", "2026-10-17", "09:30", "2026-10-17", "10:15", DefaultTitle},
		{"N分", "上午9点十五分-10点", "2026-10-17", "09:15", "2026-10-17", "10:00", DefaultTitle},
		{"晚上から凌晨", "晚上11点到凌晨1点上线", "2026-10-17", "23:00", "2026-10-18", "01:00", "上线"},
		{"両側凌晨は一度だけ翌日", "凌晨1点到3点", "2026-10-18", "01:00", "2026-10-18", "03:00", DefaultTitle},
		{"逆転範囲は補正しない", "下午5点到3点", "2026-10-17", "17:00", "2026-10-17", "15:00", DefaultTitle},
		{"同じ曜日は翌週", "星期六上午10点到11点", "2026-10-24", "10:00", "2026-10-24", "11:00", DefaultTitle},
		{"周一", "周一下午3点到4点周会", "2026-10-19", "15:00", "2026-10-19", "16:00", "周会"},
		{"終了側の日付語", "今天下午3点到明天上午9点", "2026-10-17", "15:00", "2026-10-18", "09:00", DefaultTitle},
		{"24時間表記", "14:00到15:30评审", "2026-10-17", "14:00", "2026-10-17", "15:30", "评审"},
		{"離れた位置の日付語", "明天开会下午3点到4点", "2026-10-18", "15:00", "2026-10-18", "16:00", "开会"},
		{"上午12点は0時", "上午十二点到一点", "2026-10-17", "00:00", "2026-10-17", "01:00", DefaultTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := parser.Parse(tt.input, now)
			assert.Equal(t, tt.startDate, draft.StartDate)
			assert.Equal(t, tt.startTime, draft.StartTime)
			assert.Equal(t, tt.endDate, draft.EndDate)
			assert.Equal(t, tt.endTime, draft.EndTime)
			assert.Equal(t, tt.title, draft.Title)
			assert.Equal(t, tt.input, draft.RawText)
		})
	}
}

func TestParse_SingleTime(t *testing.T) {
	parser, now := newTestParser()

	tests := []struct {
		name      string
		input     string
		startDate string
		startTime string
		endDate   string
		endTime   string
		title     string
	}{
		{"後天上午", "后天上午10点有安排", "2026-10-19", "10:00", "2026-10-19", "11:00", DefaultTitle},
		{"半", "明天下午3点半和客户吃饭", "2026-10-18", "15:30", "2026-10-18", "16:30", "和客户吃饭"},
		{"一刻", "下午两点一刻面试", "2026-10-17", "14:15", "2026-10-17", "15:15", "面试"},
		{"三刻", "晚上八点三刻", "2026-10-17", "20:45", "2026-10-17", "21:45", DefaultTitle},
		{"日跨ぎの1時間", "晚上11点半复盘", "2026-10-17", "23:30", "2026-10-18", "00:30", "复盘"},
		{"凌晨は翌日", "凌晨3点发布", "2026-10-18", "03:00", "2026-10-18", "04:00", "发布"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := parser.Parse(tt.input, now)
			assert.Equal(t, tt.startDate, draft.StartDate)
			assert.Equal(t, tt.startTime, draft.StartTime)
			assert.Equal(t, tt.endDate, draft.EndDate)
			assert.Equal(t, tt.endTime, draft.EndTime)
			assert.Equal(t, tt.title, draft.Title)
			assert.Equal(t, time.Hour, draft.End.Sub(draft.Start))
		})
	}
}

func TestParse_NoTimeExpression(t *testing.T) {
	parser, now := newTestParser()

	t.Run("現在時刻から1時間", func(t *testing.T) {
		draft := parser.Parse("和老王开会", now)
		assert.Equal(t, "2026-10-17", draft.StartDate)
		assert.Equal(t, "10:00", draft.StartTime)
		assert.Equal(t, "11:00", draft.EndTime)
		assert.Equal(t, "和老王开会", draft.Title)
		assert.Equal(t, 0, draft.Start.Second())
	})

	t.Run("空の発話でも既定値で埋まる", func(t *testing.T) {
		draft := parser.Parse("", now)
		assert.Equal(t, DefaultTitle, draft.Title)
		assert.NotEmpty(t, draft.StartDate)
		assert.NotEmpty(t, draft.StartTime)
		assert.NotEmpty(t, draft.EndDate)
		assert.NotEmpty(t, draft.EndTime)
	})

	t.Run("定型語だけならプレースホルダー", func(t *testing.T) {
		draft := parser.Parse("有事件", now)
		assert.Equal(t, DefaultTitle, draft.Title)
	})
}

func TestParse_CanonicalFormIsIdempotent(t *testing.T) {
	parser, now := newTestParser()
	periods := []string{"", "上午", "下午", "晚上", "早上", "凌晨"}

	for _, period := range periods {
		for hour := 0; hour <= 12; hour++ {
			input := fmt.Sprintf("%s%d点", period, hour)
			t.Run(input, func(t *testing.T) {
				first := parser.Parse(input, now)
				second := parser.Parse(first.StartTime, now)
				assert.Equal(t, first.StartTime, second.StartTime)
				third := parser.Parse(second.StartTime, now)
				assert.Equal(t, second.StartTime, third.StartTime)
			})
		}
	}
}
