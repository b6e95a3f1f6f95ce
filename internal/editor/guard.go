package editor

import "time"

// NavDecision is the outcome of a navigation request
type NavDecision string

const (
	NavAllowed NavDecision = "allowed"
	NavPending NavDecision = "pending"
)

// PendingNavigation is a navigation blocked by unsaved changes, waiting
// for the user to confirm or cancel
type PendingNavigation struct {
	Target      string    `json:"target"`
	RequestedAt time.Time `json:"requestedAt"`
}

// RequestNavigation asks to leave the editor for target. A clean draft
// lets it through; a dirty one records it as pending. A newer request
// replaces an older pending one.
func (e *Editor) RequestNavigation(target string) NavDecision {
	if e.state == Clean {
		e.pending = nil
		return NavAllowed
	}
	e.pending = &PendingNavigation{Target: target, RequestedAt: time.Now()}
	return NavPending
}

// PendingNavigation returns the blocked navigation, if any
func (e *Editor) PendingNavigation() *PendingNavigation {
	if e.pending == nil {
		return nil
	}
	p := *e.pending
	return &p
}

// ConfirmNavigation discards the draft and releases the pending target
func (e *Editor) ConfirmNavigation() (string, bool) {
	if e.pending == nil {
		return "", false
	}
	target := e.pending.Target
	e.Reset()
	return target, true
}

// CancelNavigation drops the pending request and keeps the draft
func (e *Editor) CancelNavigation() bool {
	if e.pending == nil {
		return false
	}
	e.pending = nil
	return true
}
