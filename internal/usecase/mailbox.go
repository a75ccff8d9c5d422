package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

// DefaultPollInterval メールボックスのポーリング間隔の既定値
const DefaultPollInterval = 500 * time.Millisecond

// Mailbox 未処理の発話を1件だけ保持するスロット
//
// 書き込み側はPutで上書きし、読み出し側（交渉ループ1つ）はTakeで取り出して空にする。
type Mailbox struct {
	mu           sync.Mutex
	pending      *domain.Utterance
	pollInterval time.Duration
}

// NewMailbox Mailboxを生成（pollIntervalが0以下なら既定値）
func NewMailbox(pollInterval time.Duration) *Mailbox {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Mailbox{pollInterval: pollInterval}
}

// Put 発話を格納（未処理の発話があれば置き換える）
func (m *Mailbox) Put(u domain.Utterance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &u
}

// TryTake 発話があれば取り出して空にする
func (m *Mailbox) TryTake() (domain.Utterance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return domain.Utterance{}, false
	}
	u := *m.pending
	m.pending = nil
	return u, true
}

// Take 発話が届くまでポーリング間隔ごとに確認して待つ
//
// タイムアウトはない。ctxの終了時のみ ctx.Err() を返す。
func (m *Mailbox) Take(ctx context.Context) (domain.Utterance, error) {
	if u, ok := m.TryTake(); ok {
		return u, nil
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.Utterance{}, ctx.Err()
		case <-ticker.C:
			if u, ok := m.TryTake(); ok {
				return u, nil
			}
		}
	}
}
