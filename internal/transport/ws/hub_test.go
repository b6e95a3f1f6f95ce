package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystudio/internal/logger"
	"surveystudio/internal/model"
	"surveystudio/internal/service"
)

func readMessage(t *testing.T, ch chan []byte) Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "channel closed")
		var m Message
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestHubBroadcastsPerEditor(t *testing.T) {
	hub := NewHub(logger.Discard())
	defer hub.Close()

	a1 := &Connection{EditorID: "a", Send: make(chan []byte, 4)}
	a2 := &Connection{EditorID: "a", Send: make(chan []byte, 4)}
	b := &Connection{EditorID: "b", Send: make(chan []byte, 4)}
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)
	assert.Equal(t, 2, hub.Count("a"))

	hub.BroadcastToEditor("a", string(MsgDraftUpdated), map[string]int{"revision": 3})
	for _, c := range []*Connection{a1, a2} {
		m := readMessage(t, c.Send)
		assert.Equal(t, MsgDraftUpdated, m.Type)
		assert.JSONEq(t, `{"revision":3}`, string(m.Payload))
	}
	assert.Len(t, b.Send, 0)

	hub.Unregister(a1)
	_, ok := <-a1.Send
	assert.False(t, ok)
	assert.Equal(t, 1, hub.Count("a"))

	hub.DisconnectEditor("a")
	_, ok = <-a2.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Count("a"))
	assert.Equal(t, 1, hub.Count("b"))
}

func TestSendToSkipsClosedConnections(t *testing.T) {
	hub := NewHub(logger.Discard())
	defer hub.Close()

	conn := &Connection{EditorID: "a", Send: make(chan []byte, 1)}
	assert.False(t, hub.SendTo(conn, []byte("early")))

	hub.Register(conn)
	assert.True(t, hub.SendTo(conn, []byte("one")))
	assert.False(t, hub.SendTo(conn, []byte("full")))
	assert.Equal(t, "one", string(<-conn.Send))

	hub.DisconnectEditor("a")
	_, ok := <-conn.Send
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		assert.False(t, hub.SendTo(conn, []byte("late")))
	})
}

type fakeSessions struct{}

func (fakeSessions) Session(_ context.Context, token string) (*model.Session, error) {
	switch token {
	case "good":
		return &model.Session{ID: "s1", UserID: 1, Role: model.RoleUser}, nil
	case "banned":
		return &model.Session{ID: "s2", UserID: 2, IsBanned: true}, nil
	}
	return nil, errors.New("invalid")
}

type fakeEditors struct {
	hub  *Hub
	view *service.EditorView
}

func (f *fakeEditors) Get(_ context.Context, _ *model.Session, id string) (*service.EditorView, error) {
	if id != f.view.ID {
		return nil, service.ErrEditorNotFound
	}
	return f.view, nil
}

func (f *fakeEditors) Apply(_ context.Context, _ *model.Session, id string, cmd service.Command) (*service.EditorView, error) {
	if cmd.Type != service.CmdSetDetail {
		return nil, service.ErrUnknownCommand
	}
	f.view.Revision++
	f.hub.BroadcastToEditor(id, string(MsgDraftUpdated), f.view)
	return f.view, nil
}

func TestEditorSocket(t *testing.T) {
	hub := NewHub(logger.Discard())
	defer hub.Close()
	editors := &fakeEditors{hub: hub, view: &service.EditorView{ID: "e1", Survey: &model.Survey{}}}
	h := NewHandler(hub, fakeSessions{}, editors, nil, logger.Discard())

	r := mux.NewRouter()
	r.HandleFunc("/ws/editor/{id}", h.EditorWS)
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/editor/"

	_, resp, err := websocket.DefaultDialer.Dial(base+"e1?token=bad", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"e1?token=banned", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"other?token=good", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"e1?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, MsgSnapshot, m.Type)

	require.NoError(t, conn.WriteJSON(service.Command{Type: service.CmdSetDetail, Payload: json.RawMessage(`{"field":"title","value":"x"}`)}))
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, MsgDraftUpdated, m.Type)
	var v service.EditorView
	require.NoError(t, json.Unmarshal(m.Payload, &v))
	assert.EqualValues(t, 1, v.Revision)

	require.NoError(t, conn.WriteJSON(service.Command{Type: "nope"}))
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, MsgError, m.Type)
}
