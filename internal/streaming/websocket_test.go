package streaming

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

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

func dialHub(t *testing.T, hub *WebSocketHub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestWebSocketHub_Broadcast(t *testing.T) {
	hub := NewWebSocketHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)

	bus := NewEventBus(nil, hub, logger.NewNop())
	require.NoError(t, bus.PublishAnalysis(context.Background(), testReport()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event AnalysisEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventTypeAnalysisCompleted, event.Type)
	assert.Equal(t, 72, event.RiskScore)
	assert.Equal(t, models.ContentTypeURL, event.ContentType)
}

func TestWebSocketHub_SubscriptionFilter(t *testing.T) {
	hub := NewWebSocketHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialHub(t, hub)
	require.NoError(t, conn.WriteJSON(Subscription{MinRiskScore: 90}))

	var client *WebSocketClient
	hub.mu.RLock()
	for c := range hub.clients {
		client = c
	}
	hub.mu.RUnlock()
	require.Eventually(t, func() bool {
		client.mu.RLock()
		defer client.mu.RUnlock()
		return client.subscription != nil
	}, time.Second, 10*time.Millisecond)

	low := NewAnalysisEvent(testReport())
	high := NewAnalysisEvent(testReport())
	high.RiskScore = 95
	hub.BroadcastEvent(low)
	hub.BroadcastEvent(high)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event AnalysisEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, 95, event.RiskScore)
}

func TestWebSocketHub_Disconnect(t *testing.T) {
	hub := NewWebSocketHub(logger.NewNop())
	conn := dialHub(t, hub)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
