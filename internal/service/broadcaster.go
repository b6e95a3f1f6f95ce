package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToEditor(editorID string, msgType string, payload interface{})
	DisconnectEditor(editorID string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToEditor(string, string, interface{}) {}
func (nopBroadcaster) DisconnectEditor(string)                       {}
