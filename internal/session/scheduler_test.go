package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualScheduler_FireAndCancel(t *testing.T) {
	var s ManualScheduler
	var a, b int
	cancelA := s.Every(time.Second, func() { a++ })
	s.Every(2*time.Second, func() { b++ })

	s.FireN(3)
	require.Equal(t, 3, a)
	require.Equal(t, 3, b)
	require.Equal(t, 2*time.Second, s.Interval())

	cancelA()
	cancelA()
	s.Fire()
	require.Equal(t, 3, a)
	require.Equal(t, 4, b)
	require.Equal(t, 1, s.Pending())
}

func TestManualScheduler_CallbackMayCancelItself(t *testing.T) {
	s := NewManualScheduler()
	var cancel func()
	calls := 0
	cancel = s.Every(time.Millisecond, func() {
		calls++
		cancel()
	})
	s.FireN(3)
	require.Equal(t, 1, calls)
}

func TestTickerScheduler_StopsAfterCancel(t *testing.T) {
	var calls atomic.Int32
	cancel := TickerScheduler{}.Every(time.Millisecond, func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	cancel()

	time.Sleep(5 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, settled, calls.Load())
}

func TestTickerScheduler_CancelFromCallbackDoesNotDeadlock(t *testing.T) {
	done := make(chan struct{})
	var cancel func()
	ready := make(chan struct{})
	cancel = TickerScheduler{}.Every(time.Millisecond, func() {
		<-ready
		cancel()
		select {
		case <-done:
		default:
			close(done)
		}
	})
	close(ready)

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "callback did not run")
	}
}
