package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(ctx context.Context, upd tgbotapi.Update)

func (f handlerFunc) Handle(ctx context.Context, upd tgbotapi.Update) { f(ctx, upd) }

func TestDispatcher_PerUserOrder(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int64][]string)

	h := handlerFunc(func(_ context.Context, upd tgbotapi.Update) {
		time.Sleep(time.Millisecond)
		mu.Lock()
		seen[upd.Message.From.ID] = append(seen[upd.Message.From.ID], upd.Message.Text)
		mu.Unlock()
	})

	logger, _ := test.NewNullLogger()
	d, err := NewDispatcher(h, 4, logger)
	require.NoError(t, err)

	want := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	for _, text := range want {
		for _, user := range []int64{10, 20, 30} {
			require.NoError(t, d.Dispatch(context.Background(), textMessage(user, text)))
		}
	}
	d.Close()

	for _, user := range []int64{10, 20, 30} {
		assert.Equal(t, want, seen[user], "user %d", user)
	}
}

func TestDispatcher_UsersRunConcurrently(t *testing.T) {
	release := make(chan struct{})
	started := make(chan int64, 2)

	h := handlerFunc(func(_ context.Context, upd tgbotapi.Update) {
		started <- upd.Message.From.ID
		<-release
	})

	logger, _ := test.NewNullLogger()
	d, err := NewDispatcher(h, 2, logger)
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), textMessage(1, "a")))
	require.NoError(t, d.Dispatch(context.Background(), textMessage(2, "b")))

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("second user blocked by first")
		}
	}
	close(release)
	d.Close()
}

func TestDispatcher_RecoversPanic(t *testing.T) {
	var mu sync.Mutex
	var handled []string

	h := handlerFunc(func(_ context.Context, upd tgbotapi.Update) {
		if upd.Message.Text == "boom" {
			panic("boom")
		}
		mu.Lock()
		handled = append(handled, upd.Message.Text)
		mu.Unlock()
	})

	logger, hook := test.NewNullLogger()
	d, err := NewDispatcher(h, 1, logger)
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), textMessage(1, "boom")))
	require.NoError(t, d.Dispatch(context.Background(), textMessage(1, "after")))
	d.Close()

	assert.Equal(t, []string{"after"}, handled)
	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "handler panicked" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDispatcher_DetachesCancellation(t *testing.T) {
	done := make(chan error, 1)
	h := handlerFunc(func(ctx context.Context, _ tgbotapi.Update) {
		done <- ctx.Err()
	})

	logger, _ := test.NewNullLogger()
	d, err := NewDispatcher(h, 1, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Dispatch(ctx, textMessage(1, "x")))
	d.Close()

	assert.NoError(t, <-done)
}

func TestDispatcher_ClosedPool(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d, err := NewDispatcher(handlerFunc(func(context.Context, tgbotapi.Update) {}), 1, logger)
	require.NoError(t, err)
	d.Close()

	assert.Error(t, d.Dispatch(context.Background(), textMessage(1, "late")))
}
