package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/salao-caixa/caixa-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowedOrigins = []string{"http://localhost:5173", "https://caixa.app"}

func TestWebSocketHandler_HandleWS_UnknownTopic(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?topics=movement,wallet", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestWebSocketHandler_HandleWS_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?topics=movement", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// gorilla/websocket fails without upgrade headers
	err := h.HandleWS(c)
	assert.Error(t, err)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestParseTopics(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   []websocket.EntityType
		wantOK bool
	}{
		{"empty subscribes to all", "", websocket.EntityTypes, true},
		{"single", "service", []websocket.EntityType{websocket.EntityTypeService}, true},
		{"both with spaces", "movement, service", []websocket.EntityType{websocket.EntityTypeMovement, websocket.EntityTypeService}, true},
		{"duplicates collapse", "movement,movement", []websocket.EntityType{websocket.EntityTypeMovement}, true},
		{"unknown", "account", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTopics(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:5173", true},
		{"allowed origin https", "https://caixa.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			result := h.checkOrigin(req)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestWebSocketHandler_ReceivesSubscribedEvents(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)
	e.GET("/ws", h.HandleWS)

	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?topics=movement"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount(websocket.EntityTypeMovement) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount(websocket.EntityTypeService))

	hub.Broadcast(websocket.MovementCreated(map[string]int64{"id": 7}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type   string `json:"type"`
		Entity string `json:"entity"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "movement.created", event.Type)
	assert.Equal(t, "movement", event.Entity)
}
