package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entregas/pkg/logger"
)

func dialHub(t *testing.T, hub *Hub, profileID int64) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, profileID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubDeliversToProfile(t *testing.T) {
	hub := NewHub(logger.NewNop(), nil)
	conn := dialHub(t, hub, 7)

	require.Eventually(t, func() bool { return hub.Connections(7) == 1 }, time.Second, 10*time.Millisecond)

	ev, err := NewEvent(7, "notification", map[string]string{"title": "Pedido aceito"})
	require.NoError(t, err)
	hub.Deliver(ev)
	// events for other profiles are not written to this socket
	hub.Deliver(Event{ProfileID: 8, Type: "notification"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, int64(7), got.ProfileID)
	assert.Equal(t, "notification", got.Type)
	assert.JSONEq(t, `{"title":"Pedido aceito"}`, string(got.Data))
}

func TestHubForgetsClosedConnections(t *testing.T) {
	hub := NewHub(logger.NewNop(), nil)
	conn := dialHub(t, hub, 3)

	require.Eventually(t, func() bool { return hub.Connections(3) == 1 }, time.Second, 10*time.Millisecond)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	require.Eventually(t, func() bool { return hub.Connections(3) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLocalBus(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan Event, 1)
	done := make(chan struct{})
	go func() {
		_ = bus.Subscribe(ctx, func(ev Event) { got <- ev })
		close(done)
	}()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, bus.Publish(ctx, Event{ProfileID: 1, Type: "ping"}))
	select {
	case ev := <-got:
		assert.Equal(t, "ping", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	<-done
	require.NoError(t, bus.Publish(context.Background(), Event{ProfileID: 1, Type: "late"}))
	assert.Empty(t, got)
}

func TestLocalBusDropsEndedSubscriptions(t *testing.T) {
	bus := NewLocalBus()

	for i := 0; i < 50; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = bus.Subscribe(ctx, func(Event) {})
			close(done)
		}()
		require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)
		cancel()
		<-done
	}
	assert.Equal(t, 0, bus.Subscribers())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Event, 1)
	go func() { _ = bus.Subscribe(ctx, func(ev Event) { got <- ev }) }()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, bus.Publish(ctx, Event{ProfileID: 2, Type: "pong"}))
	assert.Equal(t, "pong", (<-got).Type)
}
