package handlers

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partypass-api/utils"
)

func newWSTestServer(t *testing.T) (*WSHandler, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewWSHandler()
	router := gin.New()
	router.GET("/ws", h.HandleWS)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return h, server
}

func dialWS(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	token, err := utils.GenerateAccessToken(userID, userID+"@example.com")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastToUserReachesOnlyThatUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	h, server := newWSTestServer(t)

	connA := dialWS(t, server, "user-a")
	connB := dialWS(t, server, "user-b")

	// Give the hub a moment to register both sessions.
	time.Sleep(50 * time.Millisecond)

	h.BroadcastToUser("user-a", "notification", gin.H{"id": "n1"})

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := connA.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"type":"notification"`)

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err, "messages for one user must not reach another")
}

// Sessions set up concurrently must each keep their own identity; the hub
// handlers are shared, so identity can only ride on per-session keys.
func TestConcurrentUpgradesKeepIdentitiesApart(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	h, server := newWSTestServer(t)

	users := []string{"user-1", "user-2", "user-3", "user-4"}
	conns := make([]*websocket.Conn, len(users))
	errs := make([]error, len(users))

	var wg sync.WaitGroup
	for i, u := range users {
		token, err := utils.GenerateAccessToken(u, u+"@example.com")
		require.NoError(t, err)
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conns[i], _, errs[i] = websocket.DefaultDialer.Dial(url, nil)
		}(i)
	}
	wg.Wait()

	for i := range users {
		require.NoError(t, errs[i])
		defer conns[i].Close()
	}

	time.Sleep(50 * time.Millisecond)

	h.BroadcastToUser("user-3", "notification", gin.H{"id": "n1"})

	for i, u := range users {
		deadline := 200 * time.Millisecond
		if u == "user-3" {
			deadline = time.Second
		}
		require.NoError(t, conns[i].SetReadDeadline(time.Now().Add(deadline)))
		_, _, err := conns[i].ReadMessage()
		if u == "user-3" {
			assert.NoError(t, err, "user-3 should receive its own notification")
		} else {
			assert.Error(t, err, "%s must not receive user-3's notification", u)
		}
	}
}

func TestHandleWSRejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, server := newWSTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=garbage"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		conn.Close()
	}
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
