package domain

import "time"

// Event カレンダーイベントのドメインエンティティ
type Event struct {
	ID          string
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	IsAllDay    bool
	Location    string
	Description string
}

const (
	// DateLayout EventDraftの日付表記
	DateLayout = "2006-01-02"
	// ClockLayout EventDraftの時刻表記
	ClockLayout = "15:04"
)

// EventDraft 発話から組み立てた作成前の予定
//
// Start/Endは常に埋まっている。文字列フィールドはStart/Endから導出され、
// JSONでは元の音声APIと同じフィールド名で出力される。
type EventDraft struct {
	Title     string    `json:"title"`
	StartDate string    `json:"start_date"`
	StartTime string    `json:"start_time"`
	EndDate   string    `json:"end_date"`
	EndTime   string    `json:"end_time"`
	RawText   string    `json:"description"`
	Start     time.Time `json:"-"`
	End       time.Time `json:"-"`
}

// NewEventDraft 開始・終了時刻からEventDraftを生成
func NewEventDraft(title, rawText string, start, end time.Time) EventDraft {
	return EventDraft{
		Title:     title,
		StartDate: start.Format(DateLayout),
		StartTime: start.Format(ClockLayout),
		EndDate:   end.Format(DateLayout),
		EndTime:   end.Format(ClockLayout),
		RawText:   rawText,
		Start:     start,
		End:       end,
	}
}

// Utterance メールボックスに置かれる未処理の発話
type Utterance struct {
	Text       string
	ReceivedAt time.Time
}
