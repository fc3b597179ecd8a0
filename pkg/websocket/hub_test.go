package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, serveHub(t, hub)
}

func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := strconv.ParseUint(r.URL.Query().Get("user"), 10, 64)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, _ = hub.Attach(conn, userID)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, userID int) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?user=" + strconv.Itoa(userID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHubBroadcast(t *testing.T) {
	hub, server := startHub(t)
	first := dial(t, server, 1)
	second := dial(t, server, 2)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Broadcast("equipment.history.created", map[string]string{"asset_code": "PC-000001"}))

	for _, conn := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, conn)
		assert.Equal(t, "equipment.history.created", env.Type)
		assert.Equal(t, ScopeBroadcast, env.Scope)
		assert.Equal(t, map[string]interface{}{"asset_code": "PC-000001"}, env.Payload)
	}
}

func TestHubSendMessageToUser(t *testing.T) {
	hub, server := startHub(t)
	target := dial(t, server, 7)
	other := dial(t, server, 8)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendMessageToUser(7, "holding.changed", map[string]int{"equipment_id": 3}))
	env := readEnvelope(t, target)
	assert.Equal(t, "holding.changed", env.Type)
	assert.Equal(t, ScopePersonal, env.Scope)
	assert.Equal(t, map[string]interface{}{"equipment_id": float64(3)}, env.Payload)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)

	// пользователь без соединений - не ошибка
	assert.NoError(t, hub.SendMessageToUser(99, "holding.changed", nil))
}

func TestHubUnregisterOnClose(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, 1)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubClosed(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	server := serveHub(t, hub)
	live := dial(t, server, 5)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-stopped

	// остановка hub-а закрывает ленту у подключенных клиентов
	require.NoError(t, live.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := live.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "ожидали закрытие, получили %v", err)

	assert.ErrorIs(t, hub.Broadcast("any", nil), ErrHubClosed)
	assert.Equal(t, 0, hub.ClientCount())

	// новое соединение после остановки сразу закрывается
	late := dial(t, server, 6)
	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}
