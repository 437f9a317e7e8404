// realtime/listener.go
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sapogames/roomkit/logger"
)

const heartbeatInterval = 25 * time.Second

// Listener subscribes to the backend's change-notification channel. Every
// row mutation on a watched table triggers one out-of-band refresh; event
// payloads are never inspected. A dead realtime socket only degrades to
// poll-interval latency.
type Listener struct {
	socketURL string
	dialer    *websocket.Dialer
}

// NewListener derives the realtime websocket endpoint from the backend
// base URL and anon key.
func NewListener(baseURL, anonKey string) *Listener {
	socketURL := ""
	if baseURL != "" && anonKey != "" {
		ws := strings.TrimRight(baseURL, "/")
		ws = strings.Replace(ws, "https://", "wss://", 1)
		ws = strings.Replace(ws, "http://", "ws://", 1)
		socketURL = fmt.Sprintf("%s/realtime/v1/websocket?apikey=%s&vsn=1.0.0", ws, anonKey)
	}
	return &Listener{
		socketURL: socketURL,
		dialer:    websocket.DefaultDialer,
	}
}

func (l *Listener) Configured() bool {
	return l != nil && l.socketURL != ""
}

// message is the Phoenix-framed envelope the realtime channel speaks.
type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
}

type changeBinding struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter"`
}

type joinPayload struct {
	Config struct {
		PostgresChanges []changeBinding `json:"postgres_changes"`
	} `json:"config"`
}

// Subscribe opens a channel scoped to the room id, watching the room row
// itself plus each named child table. onChange fires once per received
// change event. The returned teardown closes the channel and the socket;
// it is safe to call more than once.
func (l *Listener) Subscribe(ctx context.Context, roomID string, tables []string, onChange func()) (func(), error) {
	if !l.Configured() {
		return nil, fmt.Errorf("realtime endpoint not configured")
	}

	conn, _, err := l.dialer.DialContext(ctx, l.socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial realtime endpoint: %w", err)
	}

	sub := &subscription{
		conn:  conn,
		topic: "realtime:room:" + roomID,
		done:  make(chan struct{}),
	}

	payload := joinPayload{}
	payload.Config.PostgresChanges = append(payload.Config.PostgresChanges, changeBinding{
		Event:  "*",
		Schema: "public",
		Table:  "game_rooms",
		Filter: "id=eq." + roomID,
	})
	for _, table := range tables {
		payload.Config.PostgresChanges = append(payload.Config.PostgresChanges, changeBinding{
			Event:  "*",
			Schema: "public",
			Table:  table,
			Filter: "room_id=eq." + roomID,
		})
	}

	if err := sub.send("phx_join", sub.topic, payload); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to join realtime channel: %w", err)
	}

	go sub.readLoop(onChange)
	go sub.heartbeatLoop()

	return sub.teardown, nil
}

type subscription struct {
	conn  *websocket.Conn
	topic string

	sendMutex sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func (s *subscription) send(event, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	s.sendMutex.Lock()
	defer s.sendMutex.Unlock()
	return s.conn.WriteJSON(message{
		Topic:   topic,
		Event:   event,
		Payload: raw,
		Ref:     uuid.New().String(),
	})
}

func (s *subscription) readLoop(onChange func()) {
	for {
		var msg message
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
			default:
				logger.L().Warnf("realtime channel %s closed: %v", s.topic, err)
			}
			return
		}

		switch msg.Event {
		case "postgres_changes":
			// Always a full re-fetch, never a diff-apply.
			onChange()
		case "phx_error":
			logger.L().Warnf("realtime channel %s reported an error", s.topic)
		}
	}
}

func (s *subscription) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.send("heartbeat", "phoenix", struct{}{}); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *subscription) teardown() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.send("phx_leave", s.topic, struct{}{})
		_ = s.conn.Close()
	})
}
