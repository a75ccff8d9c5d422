package nlu

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

// DefaultTitle タイトルが取り出せなかった場合のタイトル
const DefaultTitle = "语音日程"

// fillerReplacer タイトルから取り除く助詞・定型語
var fillerReplacer = strings.NewReplacer("有", "", "安排", "", "事件", "")

// titleTrimSet タイトル前後から取り除く空白・句読点
const titleTrimSet = " \t\r\n,.，。、!！?？:：;；"

// spaceReplacer 全角スペース・NBSPの除去
var spaceReplacer = strings.NewReplacer("\u3000", "", "\u00a0", "")

// Parser 中国語の自然文から予定の時刻とタイトルを取り出す
//
// Parse は失敗しない。時刻が読み取れなかった場合は既定値で埋めたEventDraftを返す。
type Parser struct {
	location *time.Location
	logger   *slog.Logger
}

// NewParser パーサーを生成（locationがnilならLocal）
func NewParser(location *time.Location, logger *slog.Logger) *Parser {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{location: location, logger: logger}
}

// Parse 発話をEventDraftに変換
func (p *Parser) Parse(text string, now time.Time) domain.EventDraft {
	now = now.In(p.location)
	clean := strings.TrimSpace(spaceReplacer.Replace(text))

	if idx := rangePattern.FindStringSubmatchIndex(clean); idx != nil {
		return p.parseRange(text, clean, idx, now)
	}
	if idx := singlePattern.FindStringSubmatchIndex(clean); idx != nil {
		return p.parseSingle(text, clean, idx, now)
	}

	start := now.Truncate(time.Minute)
	p.logger.Info("時刻表現が見つからないため現在時刻を採用しました",
		"utterance", text,
		"start", start.Format(time.RFC3339),
	)
	return domain.NewEventDraft(p.extractTitle(clean, text), text, start, start.Add(time.Hour))
}

func (p *Parser) parseRange(raw, clean string, idx []int, now time.Time) domain.EventDraft {
	start := p.token(rangePattern, clean, idx, "s")
	end := p.token(rangePattern, clean, idx, "e")
	InheritPeriods(&start, &end)

	rest := cut(clean, idx)
	rest = p.applyFloatingDate(&start, rest)

	startDay := p.resolveDay(start, now)
	var endDay time.Time
	if end.Date.Kind != DateNone {
		endDay = p.resolveDay(end, now)
	} else {
		endDay = startDay
		if end.Period == PeriodDawn && start.Period != PeriodDawn {
			endDay = endDay.AddDate(0, 0, 1)
		}
	}

	startAt := at(startDay, start)
	endAt := at(endDay, end)
	if !endAt.After(startAt) {
		p.logger.Warn("終了時刻が開始時刻以前ですが日付は補正しません",
			"utterance", raw,
			"start", startAt.Format(time.RFC3339),
			"end", endAt.Format(time.RFC3339),
		)
	}

	return domain.NewEventDraft(p.extractTitle(rest, raw), raw, startAt, endAt)
}

func (p *Parser) parseSingle(raw, clean string, idx []int, now time.Time) domain.EventDraft {
	start := p.token(singlePattern, clean, idx, "s")
	rest := cut(clean, idx)
	rest = p.applyFloatingDate(&start, rest)

	startAt := at(p.resolveDay(start, now), start)
	p.logger.Debug("終了時刻の指定がないため1時間後を終了時刻とします",
		"utterance", raw,
		"start", startAt.Format(time.RFC3339),
	)
	return domain.NewEventDraft(p.extractTitle(rest, raw), raw, startAt, startAt.Add(time.Hour))
}

// token 部分一致から Token を取り出し、時計として成立しない値を既定値に戻す
func (p *Parser) token(re *regexp.Regexp, text string, idx []int, tag string) Token {
	tok := tokenAt(re, text, idx, tag)
	if tok.Minute > 59 {
		p.logger.Info("分が範囲外のため0分とします", "minute", tok.Minute)
		tok.Minute = 0
	}
	if tok.Hour > 24 {
		p.logger.Info("時が範囲外のため0時とします", "hour", tok.Hour)
		tok.Hour = 0
	}
	return tok
}

// applyFloatingDate 時刻表現に日付修飾がない場合、発話の他の位置にある日付語を採用する
func (p *Parser) applyFloatingDate(tok *Token, rest string) string {
	if tok.Date.Kind != DateNone {
		return rest
	}
	loc := datePattern.FindStringIndex(rest)
	if loc == nil {
		return rest
	}
	tok.Date = parseDateQualifier(rest[loc[0]:loc[1]])
	return rest[:loc[0]] + rest[loc[1]:]
}

// resolveDay 日付修飾を解決し、凌晨なら翌日に進める
func (p *Parser) resolveDay(tok Token, now time.Time) time.Time {
	day := tok.Date.Resolve(now)
	if tok.Period == PeriodDawn {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func (p *Parser) extractTitle(rest, raw string) string {
	title := strings.Trim(fillerReplacer.Replace(rest), titleTrimSet)
	if title == "" {
		p.logger.Debug("タイトルが空のため既定タイトルを使用します", "utterance", raw)
		return DefaultTitle
	}
	return title
}

func at(day time.Time, tok Token) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), tok.Hour24(), tok.Minute, 0, 0, day.Location())
}

func cut(text string, idx []int) string {
	return text[:idx[0]] + text[idx[1]:]
}
