package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

// maxEventsPerDay 1日あたりに取得する予定の上限
const maxEventsPerDay = 50

// allDayPrefix 終日予定のラベル接頭辞（重複判定では読み飛ばされる）
const allDayPrefix = "全天 "

// EventsProvider Calendar APIのイベント操作を抽象化したインターフェース
type EventsProvider interface {
	ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error)
	InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
}

// serviceEventsProvider calendar.Serviceを使ったEventsProviderの実装
type serviceEventsProvider struct {
	service *calendar.Service
}

// NewServiceEventsProvider calendar.ServiceからEventsProviderを作成
func NewServiceEventsProvider(service *calendar.Service) EventsProvider {
	return &serviceEventsProvider{service: service}
}

func (p *serviceEventsProvider) ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error) {
	events, err := p.service.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEventsPerDay).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

func (p *serviceEventsProvider) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return p.service.Events.Insert(calendarID, event).Context(ctx).Do()
}

// GoogleCalendarRepository Google Calendar APIを使用したCalendarDriverの実装
type GoogleCalendarRepository struct {
	provider   EventsProvider
	calendarID string
	timezone   *time.Location
	logger     *slog.Logger
}

// NewGoogleCalendarRepository サービスアカウント認証でGoogle Calendarリポジトリを作成
func NewGoogleCalendarRepository(ctx context.Context, credentialsJSON []byte, calendarID string, timezone *time.Location, logger *slog.Logger) (*GoogleCalendarRepository, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, calendar.CalendarEventsScope)
	if err != nil {
		return nil, errors.Wrap(err, "google認証情報の読み込みに失敗しました")
	}

	service, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, errors.Wrap(err, "google Calendar APIサービスの作成に失敗しました")
	}

	repo := NewGoogleCalendarRepositoryWithProvider(NewServiceEventsProvider(service), calendarID, timezone)
	if logger != nil {
		repo.logger = logger
	}
	return repo, nil
}

// NewGoogleCalendarRepositoryWithProvider EventsProviderを指定してリポジトリを作成（テスト用）
func NewGoogleCalendarRepositoryWithProvider(provider EventsProvider, calendarID string, timezone *time.Location) *GoogleCalendarRepository {
	if timezone == nil {
		timezone = time.Local
	}
	return &GoogleCalendarRepository{
		provider:   provider,
		calendarID: calendarID,
		timezone:   timezone,
		logger:     slog.Default(),
	}
}

// ListEventsForDate 指定日の予定を "HH:MM–HH:MM タイトル" 形式のラベルで返す
func (r *GoogleCalendarRepository) ListEventsForDate(ctx context.Context, date time.Time) ([]string, error) {
	events, err := r.GetEvents(ctx, date)
	if err != nil {
		return nil, err
	}

	dayStart := r.dayStart(date)
	labels := make([]string, 0, len(events))
	for _, event := range events {
		labels = append(labels, renderLabel(event, dayStart))
	}
	return labels, nil
}

// GetEvents 指定された日の予定を取得
func (r *GoogleCalendarRepository) GetEvents(ctx context.Context, targetDate time.Time) ([]domain.Event, error) {
	// 指定日の00:00 (inclusive) から翌日00:00 (exclusive)
	dayStart := r.dayStart(targetDate)
	dayEnd := dayStart.AddDate(0, 0, 1)

	items, err := r.provider.ListEvents(ctx, r.calendarID, dayStart.Format(time.RFC3339), dayEnd.Format(time.RFC3339))
	if err != nil {
		return nil, errors.Wrap(err, "カレンダーイベントの取得に失敗しました")
	}

	domainEvents := make([]domain.Event, 0, len(items))
	for _, item := range items {
		domainEvent, err := r.convertToEvent(item)
		if err != nil {
			r.logger.Warn("イベントの変換をスキップしました", "event_id", item.Id, "error", err)
			continue
		}
		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// CreateEvent EventDraftから予定を作成
func (r *GoogleCalendarRepository) CreateEvent(ctx context.Context, draft domain.EventDraft) error {
	event := &calendar.Event{
		Summary:     draft.Title,
		Description: draft.RawText,
		Start:       &calendar.EventDateTime{DateTime: draft.Start.In(r.timezone).Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: draft.End.In(r.timezone).Format(time.RFC3339)},
	}

	created, err := r.provider.InsertEvent(ctx, r.calendarID, event)
	if err != nil {
		return errors.Wrap(err, "カレンダーイベントの作成に失敗しました")
	}

	r.logger.Info("カレンダーイベントを作成しました", "event_id", created.Id, "title", created.Summary)
	return nil
}

func (r *GoogleCalendarRepository) dayStart(date time.Time) time.Time {
	date = date.In(r.timezone)
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, r.timezone)
}

// renderLabel 予定を日表示のラベル形式に変換（日を跨ぐ部分はその日の範囲に切り詰める）
func renderLabel(event domain.Event, dayStart time.Time) string {
	if event.IsAllDay {
		return allDayPrefix + event.Title
	}

	dayEnd := dayStart.AddDate(0, 0, 1)
	start := event.StartTime
	if start.Before(dayStart) {
		start = dayStart
	}

	end := "24:00"
	if event.EndTime.Before(dayEnd) {
		end = event.EndTime.Format(domain.ClockLayout)
	}

	return fmt.Sprintf("%s–%s %s", start.Format(domain.ClockLayout), end, event.Title)
}

// convertToEvent Google Calendar APIのイベントをドメインエンティティに変換
func (r *GoogleCalendarRepository) convertToEvent(event *calendar.Event) (domain.Event, error) {
	domainEvent := domain.Event{
		ID:          event.Id,
		Title:       event.Summary,
		Location:    event.Location,
		Description: event.Description,
	}

	// タイトルが空の場合は「（无标题）」に設定
	if domainEvent.Title == "" {
		domainEvent.Title = "（无标题）"
	}

	if event.Start == nil {
		return domain.Event{}, errors.New("開始時刻が設定されていません")
	}
	if event.End == nil {
		return domain.Event{}, errors.New("終了時刻が設定されていません")
	}

	start, allDay, err := r.parseEventDateTime(event.Start)
	if err != nil {
		return domain.Event{}, errors.Wrap(err, "開始時刻の解析に失敗しました")
	}
	end, _, err := r.parseEventDateTime(event.End)
	if err != nil {
		return domain.Event{}, errors.Wrap(err, "終了時刻の解析に失敗しました")
	}

	domainEvent.StartTime = start
	domainEvent.EndTime = end
	domainEvent.IsAllDay = allDay
	return domainEvent, nil
}

// parseEventDateTime 時刻指定 (DateTime) と終日 (Date) の両方を解釈する
func (r *GoogleCalendarRepository) parseEventDateTime(edt *calendar.EventDateTime) (time.Time, bool, error) {
	switch {
	case edt.DateTime != "":
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.In(r.timezone), false, nil
	case edt.Date != "":
		t, err := time.ParseInLocation(domain.DateLayout, edt.Date, r.timezone)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	default:
		return time.Time{}, false, errors.New("時刻が設定されていません")
	}
}
