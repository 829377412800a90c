package service

import (
	"context"
	"encoding/json"
	"ethioheritage_backend/pkg/logger"
	"ethioheritage_backend/pkg/monitoring"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 32
	onlineTTL      = 2 * time.Minute

	notificationChannel = "progress_notifications"
)

// Notification types pushed to learners.
const (
	NotifyAchievementUnlocked = "ACHIEVEMENT_UNLOCKED"
	NotifyCourseCompleted     = "COURSE_COMPLETED"
	NotifyCertificateIssued   = "CERTIFICATE_ISSUED"
	NotifyCertificateRevoked  = "CERTIFICATE_REVOKED"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Notifier delivers a message to every open connection of a learner.
type Notifier interface {
	PushToUser(userID uint, msg WSMessage)
}

type nopNotifier struct{}

func (nopNotifier) PushToUser(uint, WSMessage) {}

type Client struct {
	Hub     *NotificationHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter
}

// readPump only services control frames; learners do not send anything meaningful.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.ctx.Done():
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			return
		}
		if !c.Limiter.Allow() {
			logger.Log.Debug("Dropping websocket frame over limit", zap.Uint("userId", c.UserID))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[uint]map[*Client]bool
	mu      sync.RWMutex
}

// NotificationHub fans notifications out to learner websockets. With redis configured every
// push goes through pub/sub so the instance holding the connection delivers it.
type NotificationHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	Redis      *redis.Client
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewNotificationHub(rdb *redis.Client) *NotificationHub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &NotificationHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{
			clients: make(map[uint]map[*Client]bool),
		}
	}
	return h
}

func (h *NotificationHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

type PubSubMessage struct {
	TargetUsers []uint          `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

func onlineKey(userID uint) string {
	return fmt.Sprintf("user:online:%d", userID)
}

// Run owns registration until Stop is called.
func (h *NotificationHub) Run() {
	defer close(h.done)

	if h.Redis != nil {
		pubsub := h.Redis.Subscribe(h.ctx, notificationChannel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var psMsg PubSubMessage
				if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
					logger.Log.Error("PubSub unmarshal error", zap.Error(err))
					continue
				}
				h.pushToLocalUsers(psMsg.TargetUsers, psMsg.Payload)
			}
		}()
	}

	heartbeat := time.NewTicker(time.Minute)
	defer heartbeat.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if s.clients[client.UserID] == nil {
				s.clients[client.UserID] = make(map[*Client]bool)
			}
			s.clients[client.UserID][client] = true
			s.mu.Unlock()
			monitoring.WSConnections.Inc()
			h.markOnline(client.UserID)

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if conns, ok := s.clients[client.UserID]; ok && conns[client] {
				delete(conns, client)
				close(client.Send)
				monitoring.WSConnections.Dec()
				if len(conns) == 0 {
					delete(s.clients, client.UserID)
					h.markOffline(client.UserID)
				}
			}
			s.mu.Unlock()

		case <-heartbeat.C:
			h.refreshOnlineStatus()
		}
	}
}

func (h *NotificationHub) markOnline(userID uint) {
	if h.Redis == nil {
		return
	}
	if err := h.Redis.Set(h.ctx, onlineKey(userID), "true", onlineTTL).Err(); err != nil {
		logger.Log.Warn("Failed to mark user online", zap.Error(err), zap.Uint("userId", userID))
	}
}

func (h *NotificationHub) markOffline(userID uint) {
	if h.Redis == nil {
		return
	}
	h.Redis.Del(h.ctx, onlineKey(userID))
}

func (h *NotificationHub) refreshOnlineStatus() {
	if h.Redis == nil {
		return
	}
	pipe := h.Redis.Pipeline()
	count := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, onlineKey(userID), onlineTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		if _, err := pipe.Exec(h.ctx); err != nil {
			logger.Log.Warn("Failed to refresh online status", zap.Error(err))
		}
	}
}

// PushToUser implements Notifier.
func (h *NotificationHub) PushToUser(userID uint, msg WSMessage) {
	h.PushToUsers([]uint{userID}, msg)
}

func (h *NotificationHub) PushToUsers(userIDs []uint, msg WSMessage) {
	if len(userIDs) == 0 {
		return
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("Failed to marshal notification", zap.Error(err), zap.String("type", msg.Type))
		return
	}
	monitoring.NotificationsPushed.WithLabelValues(msg.Type).Inc()

	if h.Redis == nil {
		h.pushToLocalUsers(userIDs, msgBytes)
		return
	}

	payload, _ := json.Marshal(PubSubMessage{TargetUsers: userIDs, Payload: msgBytes})
	if err := h.Redis.Publish(h.ctx, notificationChannel, payload).Err(); err != nil {
		logger.Log.Warn("Notification publish failed, delivering locally", zap.Error(err))
		h.pushToLocalUsers(userIDs, msgBytes)
	}
}

func (h *NotificationHub) pushToLocalUsers(userIDs []uint, payload []byte) {
	for _, id := range userIDs {
		s := h.getShard(id)
		s.mu.RLock()
		for client := range s.clients[id] {
			select {
			case client.Send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

func (h *NotificationHub) IsUserOnline(userID uint) bool {
	s := h.getShard(userID)
	s.mu.RLock()
	n := len(s.clients[userID])
	s.mu.RUnlock()
	if n > 0 {
		return true
	}
	if h.Redis == nil {
		return false
	}
	val, err := h.Redis.Get(h.ctx, onlineKey(userID)).Result()
	return err == nil && val == "true"
}

// Stop closes every local connection, clears presence and ends Run.
func (h *NotificationHub) Stop() {
	logger.Log.Info("NotificationHub stopping")

	var userIDs []uint
	closed := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, conns := range s.clients {
			userIDs = append(userIDs, userID)
			for client := range conns {
				close(client.Send)
				closed++
			}
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}

	if h.Redis != nil && len(userIDs) > 0 {
		pipe := h.Redis.Pipeline()
		for _, userID := range userIDs {
			pipe.Del(h.ctx, onlineKey(userID))
		}
		pipe.Exec(h.ctx)
	}

	h.cancel()
	monitoring.WSConnections.Set(0)
	logger.Log.Info("NotificationHub stopped", zap.Int("closedConnections", closed))
}

// Done is closed once Run has returned.
func (h *NotificationHub) Done() <-chan struct{} {
	return h.done
}

func ServeWs(hub *NotificationHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 64),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	select {
	case hub.register <- client:
	case <-hub.ctx.Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
