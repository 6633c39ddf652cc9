package guide

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/bloom/internal/breath"
	"github.com/zjrosen/bloom/internal/metrics"
	"github.com/zjrosen/bloom/internal/pattern"
	"github.com/zjrosen/bloom/internal/session"
)

var brief = pattern.Intention{
	Key:     "brief",
	Title:   "Brief",
	Pattern: pattern.Pattern{Name: "Brief", Inhale: 0.03, Exhale: 0.03, Cycles: 1},
}

func dial(t *testing.T, opts ...Option) *websocket.Conn {
	t.Helper()
	catalog, err := pattern.NewCatalog(brief)
	require.NoError(t, err)

	opts = append([]Option{WithSessionOptions(session.WithInterval(2 * time.Millisecond))}, opts...)
	srv := httptest.NewServer(NewHandler(catalog, opts...))
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(msg))
}

func recv(t *testing.T, ws *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ServerMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestGuide_FullSession(t *testing.T) {
	ws := dial(t)

	send(t, ws, ClientMessage{Type: MsgPress})
	send(t, ws, ClientMessage{Type: MsgStart, Intention: "brief"})

	started := recv(t, ws)
	require.Equal(t, MsgStarted, started.Type)
	require.Equal(t, "brief", started.Intention)
	require.Equal(t, "inhale", started.State.Phase)
	require.Equal(t, "Breathe In", started.State.Label)

	released := false
	for {
		msg := recv(t, ws)
		if msg.Type == MsgCompleted {
			require.NotNil(t, msg.Completion)
			require.Equal(t, 1, msg.Completion.CyclesCompleted)
			require.Equal(t, "Brief", msg.Completion.PatternName)
			require.InDelta(t, 100, msg.State.Progress, 1e-9)
			require.False(t, msg.State.Active)
			return
		}
		require.Equal(t, MsgSnapshot, msg.Type)
		if !released && msg.State.Phase == breath.Exhale.String() {
			send(t, ws, ClientMessage{Type: MsgRelease})
			released = true
		}
	}
}

func TestGuide_Errors(t *testing.T) {
	ws := dial(t)

	send(t, ws, ClientMessage{Type: MsgStart, Intention: "nope"})
	msg := recv(t, ws)
	require.Equal(t, MsgError, msg.Type)
	require.Contains(t, msg.Error, "nope")

	send(t, ws, ClientMessage{Type: "dance"})
	msg = recv(t, ws)
	require.Equal(t, MsgError, msg.Type)
	require.Contains(t, msg.Error, "dance")

	send(t, ws, ClientMessage{Type: MsgStart})
	require.Equal(t, MsgError, recv(t, ws).Type)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = recv(t, ws)
	require.Equal(t, MsgError, msg.Type)
	require.Contains(t, msg.Error, "malformed")
}

func TestGuide_ResetAbandons(t *testing.T) {
	ws := dial(t)

	send(t, ws, ClientMessage{Type: MsgStart, Intention: "brief"})
	require.Equal(t, MsgStarted, recv(t, ws).Type)

	send(t, ws, ClientMessage{Type: MsgReset})
	for {
		msg := recv(t, ws)
		if msg.Type == MsgAbandoned {
			require.Equal(t, "brief", msg.Intention)
			return
		}
		require.Equal(t, MsgSnapshot, msg.Type, "never pressing keeps the session in inhale")
	}
}

func TestGuide_CountsConnections(t *testing.T) {
	m := metrics.New(false)
	ws := dial(t, WithMetrics(m))

	send(t, ws, ClientMessage{Type: MsgStart, Intention: "brief"})
	require.Equal(t, MsgStarted, recv(t, ws).Type)
	require.Equal(t, 1.0, gauge(t, m, "bloom_guide_connections"))

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool {
		return gauge(t, m, "bloom_guide_connections") == 0
	}, 5*time.Second, 5*time.Millisecond)
}

func gauge(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestView(t *testing.T) {
	s := breath.NewState(brief.Pattern)
	v := View(s)
	require.Equal(t, "Brief", v.Pattern)
	require.Equal(t, 1, v.Cycles)
	require.Equal(t, 1, v.DisplaySeconds)
	require.True(t, v.Active)
}
