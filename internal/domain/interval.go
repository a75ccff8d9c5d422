package domain

import "fmt"

// MinutesPerDay 1日の分数
const MinutesPerDay = 24 * 60

// Interval 0時からの経過分で表した半開区間 [StartMinute, EndMinute)
type Interval struct {
	StartMinute int
	EndMinute   int
}

// NewInterval 日跨ぎ補正を適用した区間を生成
//
// end <= start の場合は翌日に跨ぐものとして end に1日分を加算する。
func NewInterval(startMinute, endMinute int) Interval {
	if endMinute <= startMinute {
		endMinute += MinutesPerDay
	}
	return Interval{StartMinute: startMinute, EndMinute: endMinute}
}

// Overlaps 半開区間同士が重なるかを判定（接しているだけなら重ならない）
func (i Interval) Overlaps(other Interval) bool {
	return i.StartMinute < other.EndMinute && other.StartMinute < i.EndMinute
}

// String "HH:MM-HH:MM" 形式（日跨ぎ分は24時以降で表記）
func (i Interval) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		i.StartMinute/60, i.StartMinute%60,
		i.EndMinute/60, i.EndMinute%60)
}
