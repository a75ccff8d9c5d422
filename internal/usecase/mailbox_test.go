package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-negishi/voice-calendar-scheduler/internal/domain"
)

func TestMailbox_PutOverwrites(t *testing.T) {
	mb := NewMailbox(time.Millisecond)
	mb.Put(domain.Utterance{Text: "一回目"})
	mb.Put(domain.Utterance{Text: "二回目"})

	u, ok := mb.TryTake()
	require.True(t, ok)
	assert.Equal(t, "二回目", u.Text)

	_, ok = mb.TryTake()
	assert.False(t, ok)
}

func TestMailbox_TakeWaitsForPut(t *testing.T) {
	mb := NewMailbox(time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		mb.Put(domain.Utterance{Text: "遅れて届く"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	u, err := mb.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, "遅れて届く", u.Text)
}

func TestMailbox_TakeReturnsOnContextDone(t *testing.T) {
	mb := NewMailbox(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mb.Take(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMailbox_DefaultPollInterval(t *testing.T) {
	assert.Equal(t, DefaultPollInterval, NewMailbox(0).pollInterval)
	assert.Equal(t, DefaultPollInterval, NewMailbox(-time.Second).pollInterval)
}
