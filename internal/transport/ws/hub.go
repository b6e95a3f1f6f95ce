package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server message types
const (
	MsgDraftUpdated MessageType = "draft_updated"
	MsgDraftSaved   MessageType = "draft_saved"
	MsgDraftClosed  MessageType = "draft_closed"
	MsgSnapshot     MessageType = "snapshot"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans editor snapshots out to every connection of an editor session
type Hub struct {
	// editor id -> connections
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}

	log logrus.FieldLogger
}

// Connection represents a WebSocket connection
type Connection struct {
	EditorID  string
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	EditorID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log logrus.FieldLogger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string, 16),
		done:       make(chan struct{}),
		log:        log.WithField("component", "ws"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id := range h.conns {
				h.closeEditor(id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.EditorID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.EditorID)
					}
					h.log.WithField("editor", conn.EditorID).Info("builder disconnected")
				}
			}
			h.mu.Unlock()

		case id := <-h.disconnect:
			h.mu.Lock()
			h.closeEditor(id)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.WithError(err).Error("failed to encode broadcast")
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.EditorID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// closeEditor closes every connection of an editor; h.mu must be held
func (h *Hub) closeEditor(id string) {
	for conn := range h.conns[id] {
		close(conn.Send)
	}
	delete(h.conns, id)
}

// Register adds a connection. It is listed when Register returns.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	if h.conns[conn.EditorID] == nil {
		h.conns[conn.EditorID] = make(map[*Connection]struct{})
	}
	h.conns[conn.EditorID][conn] = struct{}{}
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"editor": conn.EditorID, "session": conn.SessionID}).Info("builder connected")
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Count returns the number of connections of an editor
func (h *Hub) Count(editorID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[editorID])
}

// SendTo queues data for one connection. It reports false when the
// connection is no longer registered or its buffer is full. Send is only
// closed under the write lock, so it is open while the read lock is held
// and the connection is still listed.
func (h *Hub) SendTo(conn *Connection, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.conns[conn.EditorID][conn]; !ok {
		return false
	}
	select {
	case conn.Send <- data:
		return true
	default:
		return false
	}
}

// BroadcastToEditor sends a message to every connection of an editor
// (implements service.Broadcaster)
func (h *Hub) BroadcastToEditor(editorID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Error("failed to encode payload")
		return
	}
	h.broadcast <- &BroadcastMessage{
		EditorID: editorID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectEditor closes every connection of an editor (implements
// service.Broadcaster)
func (h *Hub) DisconnectEditor(editorID string) {
	h.disconnect <- editorID
}

// Close stops the hub and closes every connection
func (h *Hub) Close() {
	close(h.done)
}
