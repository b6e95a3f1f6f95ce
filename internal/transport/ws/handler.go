package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"surveystudio/internal/model"
	"surveystudio/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// SessionResolver turns a token into a stored session
type SessionResolver interface {
	Session(ctx context.Context, token string) (*model.Session, error)
}

// EditorCommands is the part of the editor service the socket drives
type EditorCommands interface {
	Get(ctx context.Context, session *model.Session, id string) (*service.EditorView, error)
	Apply(ctx context.Context, session *model.Session, id string, cmd service.Command) (*service.EditorView, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	sessions SessionResolver
	editors  EditorCommands
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewHandler creates a new WebSocket handler. An empty origin list
// accepts every origin.
func NewHandler(hub *Hub, sessions SessionResolver, editors EditorCommands, allowedOrigins []string, log logrus.FieldLogger) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		hub:      hub,
		sessions: sessions,
		editors:  editors,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
		log: log.WithField("component", "ws"),
	}
}

// EditorWS handles GET /v1/ws/editor/{id}?token=
func (h *Handler) EditorWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Session(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if !service.Allow(session, service.PartitionUser) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	view, err := h.editors.Get(r.Context(), session, id)
	if err != nil {
		http.Error(w, "editor not found", http.StatusNotFound)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	conn := &Connection{
		EditorID:  id,
		SessionID: session.ID,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}
	conn.Send <- encode(MsgSnapshot, view)
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, session)
}

func encode(t MessageType, payload interface{}) []byte {
	data, _ := json.Marshal(payload)
	out, _ := json.Marshal(&Message{Type: t, Payload: data})
	return out
}

// readPump applies incoming commands. The resulting snapshot reaches
// every connection through the hub; errors go back to the sender only.
func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, session *model.Session) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Warn("websocket error")
			}
			return
		}

		var cmd service.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(conn, map[string]string{"error": "invalid command"})
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		_, err = h.editors.Apply(ctx, session, conn.EditorID, cmd)
		cancel()
		if err != nil {
			h.reply(conn, map[string]string{"error": err.Error(), "command": string(cmd.Type)})
		}
	}
}

func (h *Handler) reply(conn *Connection, payload interface{}) {
	if !h.hub.SendTo(conn, encode(MsgError, payload)) {
		h.log.WithField("editor", conn.EditorID).Debug("error reply dropped")
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
