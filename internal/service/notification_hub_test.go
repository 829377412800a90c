package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *NotificationHub, userID uint) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, userID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitOnline(t *testing.T, hub *NotificationHub, userID uint) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.IsUserOnline(userID) }, 2*time.Second, 10*time.Millisecond)
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestNotificationHubLocalDelivery(t *testing.T) {
	hub := NewNotificationHub(nil)
	go hub.Run()
	defer hub.Stop()

	alice := dialHub(t, hub, 1)
	bob := dialHub(t, hub, 2)
	waitOnline(t, hub, 1)
	waitOnline(t, hub, 2)

	hub.PushToUser(1, WSMessage{Type: NotifyAchievementUnlocked, Data: "first_lesson"})

	msg := readMessage(t, alice)
	assert.Equal(t, NotifyAchievementUnlocked, msg.Type)
	assert.Equal(t, "first_lesson", msg.Data)

	bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "other learners receive nothing")
}

func TestNotificationHubRedisFanOut(t *testing.T) {
	mr, rdb := newMiniredis(t)
	// two instances sharing redis; the learner is connected to the second one
	sender := NewNotificationHub(rdb)
	receiver := NewNotificationHub(rdb)
	go sender.Run()
	go receiver.Run()
	defer sender.Stop()
	defer receiver.Stop()

	conn := dialHub(t, receiver, 7)
	waitOnline(t, receiver, 7)
	assert.True(t, mr.Exists(onlineKey(7)))
	assert.True(t, sender.IsUserOnline(7), "presence is visible across instances")

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(notificationChannel)[notificationChannel] >= 2
	}, 2*time.Second, 10*time.Millisecond)

	sender.PushToUser(7, WSMessage{Type: NotifyCertificateIssued, Data: map[string]string{"certificateId": "EH360-2026-00000000"}})
	msg := readMessage(t, conn)
	assert.Equal(t, NotifyCertificateIssued, msg.Type)
}

func TestNotificationHubStopClearsPresence(t *testing.T) {
	mr, rdb := newMiniredis(t)
	hub := NewNotificationHub(rdb)
	go hub.Run()

	dialHub(t, hub, 3)
	waitOnline(t, hub, 3)

	hub.Stop()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.False(t, mr.Exists(onlineKey(3)))
}
