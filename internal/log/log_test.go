package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/bloom/internal/pubsub"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 10, 16, 10, 45, 0, 0, time.UTC)
	got := Format(ts, LevelInfo, CatSession, "started", "intention", "just-breathe", "cycles", 10)
	require.Equal(t, "2026-10-16T10:45:00 [INFO] [session] started intention=just-breathe cycles=10\n", got)
}

func TestFormat_OddFields(t *testing.T) {
	got := Format(time.Time{}, LevelWarn, CatGarden, "grow", "orphan")
	require.Contains(t, got, "orphan=<missing>")
}

func TestWrite_RespectsLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	SetMinLevel(LevelWarn)
	Info(CatBreath, "phase changed")
	require.Empty(t, buf.String())

	ErrorErr(CatZen, "record session failed", errors.New("boom"))
	require.Contains(t, buf.String(), "[ERROR] [zen] record session failed error=boom")

	buf.Reset()
	SetEnabled(false)
	Error(CatDB, "hidden")
	require.Empty(t, buf.String())
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Debug(CatUI, "screen", "name", "welcome")

	msg := listener.Listen()()
	event, ok := msg.(pubsub.Event[string])
	require.True(t, ok)
	require.Contains(t, event.Payload, "screen name=welcome")
}

func TestNewListener_NilWithoutLogger(t *testing.T) {
	defaultLogger = nil
	require.Nil(t, NewListener(context.Background()))
}
