package nlu

import (
	"strconv"
	"strings"
)

// chineseDigits 漢数字1文字と値の対応
var chineseDigits = map[rune]int{
	'零': 0,
	'〇': 0,
	'一': 1,
	'二': 2,
	'两': 2,
	'三': 3,
	'四': 4,
	'五': 5,
	'六': 6,
	'七': 7,
	'八': 8,
	'九': 9,
	'十': 10,
}

// Numeral 算用数字または0〜99の漢数字を整数に変換
//
// 十N は 10+N、X十Y は 10X+Y、X十 は 10X として扱う。解釈できない表記は0。
func Numeral(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if isDecimal(text) {
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0
		}
		return n
	}

	runes := []rune(text)
	if len(runes) == 1 {
		return chineseDigits[runes[0]]
	}

	// 十一〜十九
	if runes[0] == '十' {
		return 10 + digitOrZero(runes[1])
	}

	// 二十〜九十九
	if i := indexRune(runes, '十'); i == 1 {
		tens := digitOrZero(runes[0])
		ones := 0
		if len(runes) > 2 {
			ones = digitOrZero(runes[2])
		}
		return tens*10 + ones
	}

	return 0
}

// MinuteIdiom 分の慣用表現を分に変換（半=30、一刻=15、三刻=45、N分=N）
func MinuteIdiom(text string) int {
	switch {
	case text == "":
		return 0
	case strings.Contains(text, "半"):
		return 30
	case strings.Contains(text, "一刻"):
		return 15
	case strings.Contains(text, "三刻"):
		return 45
	}
	return Numeral(strings.TrimSuffix(text, "分"))
}

func digitOrZero(r rune) int {
	v, ok := chineseDigits[r]
	if !ok || v == 10 {
		return 0
	}
	return v
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}

func isDecimal(text string) bool {
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
