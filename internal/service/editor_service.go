package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"surveystudio/internal/cache"
	"surveystudio/internal/editor"
	"surveystudio/internal/events"
	"surveystudio/internal/model"
)

var (
	ErrEditorNotFound    = errors.New("editor session not found")
	ErrSaveInProgress    = errors.New("a save is already in progress")
	ErrInvalidStatus     = errors.New("status must be draft or published")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrRefineLocked      = errors.New("generated questions cannot be refined")
	ErrNoPendingNavigate = errors.New("no navigation is pending")
)

// Editor message types broadcast to builder connections
const (
	MsgDraftUpdated = "draft_updated"
	MsgDraftSaved   = "draft_saved"
	MsgDraftClosed  = "draft_closed"
)

// EditorBackend is the part of the backend used to load and save drafts
type EditorBackend interface {
	GetForEdit(ctx context.Context, token, niceURL string) (*model.EditPayload, error)
	CreateSurvey(ctx context.Context, token string, s model.WireSurvey) (*model.SaveResult, error)
	UpdateSurvey(ctx context.Context, token, niceURL string, s model.WireSurvey) (*model.SaveResult, error)
}

// AssistBackend is the AI endpoint pair
type AssistBackend interface {
	Generate(ctx context.Context, token string, req model.GenerateRequest) (*model.GenerateResponse, error)
	Refine(ctx context.Context, token string, req model.RefineRequest) (*model.RefineResponse, error)
}

// EditorView is what the builder renders
type EditorView struct {
	ID       string                    `json:"id"`
	NiceURL  string                    `json:"niceUrl,omitempty"`
	State    editor.DirtyState         `json:"state"`
	Revision uint64                    `json:"revision"`
	Survey   *model.Survey             `json:"survey"`
	Pending  *editor.PendingNavigation `json:"pending,omitempty"`
}

// SaveOutcome is the result of a save
type SaveOutcome struct {
	View     *EditorView `json:"editor"`
	SurveyID int         `json:"survey_id,omitempty"`
	NiceURL  string      `json:"nice_url"`
	// Clean is false when edits arrived while the save was in flight
	Clean bool `json:"clean"`
}

// liveEditor is one editor session held in memory
type liveEditor struct {
	mu     sync.Mutex
	rec    cache.EditorRecord
	ed     *editor.Editor
	saving bool
}

func (l *liveEditor) view() *EditorView {
	return &EditorView{
		ID:       l.rec.ID,
		NiceURL:  l.rec.NiceURL,
		State:    l.ed.State(),
		Revision: l.ed.Revision(),
		Survey:   l.ed.Survey(),
		Pending:  l.ed.PendingNavigation(),
	}
}

// EditorService hosts builder sessions. Every session is checkpointed to
// the draft cache after each change and restored from it on a miss.
type EditorService struct {
	backend     EditorBackend
	assist      AssistBackend
	drafts      cache.DraftCache
	publisher   events.Publisher
	auth        upstream
	broadcaster Broadcaster
	aiTimeout   time.Duration
	log         logrus.FieldLogger

	mu   sync.Mutex
	live map[string]*liveEditor
}

// NewEditorService creates a new editor service
func NewEditorService(b EditorBackend, assist AssistBackend, drafts cache.DraftCache, pub events.Publisher, auth upstream, aiTimeout time.Duration, log logrus.FieldLogger) *EditorService {
	return &EditorService{
		backend:     b,
		assist:      assist,
		drafts:      drafts,
		publisher:   pub,
		auth:        auth,
		broadcaster: nopBroadcaster{},
		aiTimeout:   aiTimeout,
		log:         log.WithField("component", "editor"),
		live:        make(map[string]*liveEditor),
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *EditorService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Open starts an editor session. An empty niceURL opens a fresh draft,
// otherwise the survey is loaded from the backend.
func (s *EditorService) Open(ctx context.Context, session *model.Session, niceURL string) (*EditorView, error) {
	ed := editor.New()
	if niceURL != "" {
		payload, err := s.backend.GetForEdit(ctx, session.Token, niceURL)
		if err != nil {
			return nil, s.auth.Upstream(ctx, session, err)
		}
		ed.LoadFromWire(*payload)
	}

	l := &liveEditor{
		rec: cache.EditorRecord{
			ID:        uuid.New().String(),
			SessionID: session.ID,
			UserID:    session.UserID,
			NiceURL:   niceURL,
		},
		ed: ed,
	}
	if err := s.checkpoint(ctx, l); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.live[l.rec.ID] = l
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"editor": l.rec.ID, "survey": niceURL}).Info("editor opened")
	return l.view(), nil
}

// Get returns the current state of an editor session
func (s *EditorService) Get(ctx context.Context, session *model.Session, id string) (*EditorView, error) {
	l, err := s.lookup(ctx, session, id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view(), nil
}

// ListOpen returns the editor sessions opened under a user session
func (s *EditorService) ListOpen(ctx context.Context, session *model.Session) ([]*EditorView, error) {
	ids, err := s.drafts.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	views := make([]*EditorView, 0, len(ids))
	for _, id := range ids {
		v, err := s.Get(ctx, session, id)
		if errors.Is(err, ErrEditorNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Apply runs one builder command and broadcasts the new draft
func (s *EditorService) Apply(ctx context.Context, session *model.Session, id string, cmd Command) (*EditorView, error) {
	return s.mutate(ctx, session, id, func(l *liveEditor) error {
		return applyCommand(l.ed, cmd)
	})
}

// Save sends the draft to the backend with the given status. Drafts are
// saved as they are; publishing requires a valid survey.
func (s *EditorService) Save(ctx context.Context, session *model.Session, id string, status model.SurveyStatus) (*SaveOutcome, error) {
	if status != model.StatusDraft && status != model.StatusPublished {
		return nil, ErrInvalidStatus
	}
	l, err := s.lookup(ctx, session, id)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.saving {
		l.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	if status == model.StatusPublished {
		if err := l.ed.ValidateForPublish(); err != nil {
			l.mu.Unlock()
			return nil, err
		}
	}
	snap := l.ed.Snapshot(status)
	niceURL := l.rec.NiceURL
	l.saving = true
	l.mu.Unlock()

	var res *model.SaveResult
	if niceURL == "" {
		res, err = s.backend.CreateSurvey(ctx, session.Token, snap.Payload)
	} else {
		res, err = s.backend.UpdateSurvey(ctx, session.Token, niceURL, snap.Payload)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.saving = false
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}

	clean := l.ed.MarkSaved(snap)
	if res.NiceURL != "" {
		l.rec.NiceURL = res.NiceURL
	}
	if err := s.checkpoint(ctx, l); err != nil {
		s.log.WithError(err).WithField("editor", id).Warn("failed to checkpoint after save")
	}

	eventType := model.EventSurveySaved
	if status == model.StatusPublished {
		eventType = model.EventSurveyPublished
	}
	var surveyID string
	if res.SurveyID != 0 {
		surveyID = strconv.Itoa(res.SurveyID)
	}
	publish(ctx, s.publisher, s.log, model.SurveyEvent{
		Type:     eventType,
		NiceURL:  l.rec.NiceURL,
		SurveyID: surveyID,
		Title:    snap.Payload.Title,
		UserID:   session.UserID,
	})

	view := l.view()
	s.broadcaster.BroadcastToEditor(id, MsgDraftSaved, view)
	s.log.WithFields(logrus.Fields{"editor": id, "survey": l.rec.NiceURL, "status": status}).Info("draft saved")

	return &SaveOutcome{
		View:     view,
		SurveyID: res.SurveyID,
		NiceURL:  l.rec.NiceURL,
		Clean:    clean,
	}, nil
}

// Generate asks the AI endpoint for questions and appends them
func (s *EditorService) Generate(ctx context.Context, session *model.Session, id string) (*EditorView, int, error) {
	l, err := s.lookup(ctx, session, id)
	if err != nil {
		return nil, 0, err
	}
	l.mu.Lock()
	req := l.ed.GenerateRequest()
	l.mu.Unlock()

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	resp, err := s.assist.Generate(aiCtx, session.Token, req)
	if err != nil {
		return nil, 0, s.auth.Upstream(ctx, session, err)
	}

	var added int
	view, err := s.mutate(ctx, session, id, func(l *liveEditor) error {
		added = l.ed.ApplyGenerated(resp.Questions)
		return nil
	})
	return view, added, err
}

// Refine asks the AI endpoint for a better version of one question and
// stores it as a pending suggestion
func (s *EditorService) Refine(ctx context.Context, session *model.Session, id string, index int) (*EditorView, error) {
	l, err := s.lookup(ctx, session, id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	req, ok := l.ed.RefineRequest(index)
	locked := ok && l.ed.Survey().Questions[index].IsGenerated
	l.mu.Unlock()
	if !ok {
		return nil, ErrQuestionNotFound
	}
	if locked {
		return nil, ErrRefineLocked
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	resp, err := s.assist.Refine(aiCtx, session.Token, req)
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}

	return s.mutate(ctx, session, id, func(l *liveEditor) error {
		if !l.ed.SetSuggestion(index, resp.Suggestion) {
			return ErrQuestionNotFound
		}
		return nil
	})
}

// Navigate asks to leave the editor for target
func (s *EditorService) Navigate(ctx context.Context, session *model.Session, id, target string) (editor.NavDecision, *EditorView, error) {
	var decision editor.NavDecision
	view, err := s.mutate(ctx, session, id, func(l *liveEditor) error {
		decision = l.ed.RequestNavigation(target)
		return nil
	})
	return decision, view, err
}

// ConfirmNavigation discards the draft and returns the pending target
func (s *EditorService) ConfirmNavigation(ctx context.Context, session *model.Session, id string) (string, *EditorView, error) {
	var target string
	view, err := s.mutate(ctx, session, id, func(l *liveEditor) error {
		t, ok := l.ed.ConfirmNavigation()
		if !ok {
			return ErrNoPendingNavigate
		}
		target = t
		return nil
	})
	return target, view, err
}

// CancelNavigation keeps editing and drops the pending target
func (s *EditorService) CancelNavigation(ctx context.Context, session *model.Session, id string) (*EditorView, error) {
	return s.mutate(ctx, session, id, func(l *liveEditor) error {
		if !l.ed.CancelNavigation() {
			return ErrNoPendingNavigate
		}
		return nil
	})
}

// Discard ends an editor session and drops its checkpoint
func (s *EditorService) Discard(ctx context.Context, session *model.Session, id string) error {
	if _, err := s.lookup(ctx, session, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()

	if err := s.drafts.Delete(ctx, id); err != nil {
		return err
	}
	s.broadcaster.BroadcastToEditor(id, MsgDraftClosed, map[string]string{"id": id})
	s.broadcaster.DisconnectEditor(id)
	s.log.WithField("editor", id).Info("editor discarded")
	return nil
}

// mutate runs fn under the editor lock, then checkpoints and broadcasts.
// When fn or the checkpoint fails the editor is rolled back, so a failed
// command can be sent again.
func (s *EditorService) mutate(ctx context.Context, session *model.Session, id string, fn func(*liveEditor) error) (*EditorView, error) {
	l, err := s.lookup(ctx, session, id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.ed.Checkpoint()
	if err := fn(l); err != nil {
		l.ed = editor.Restore(before)
		return nil, err
	}
	if err := s.checkpoint(ctx, l); err != nil {
		l.ed = editor.Restore(before)
		return nil, err
	}
	view := l.view()
	s.broadcaster.BroadcastToEditor(id, MsgDraftUpdated, view)
	return view, nil
}

// lookup finds a live editor, restoring it from the draft cache when
// this process has not seen it. Sessions of other users are reported as
// missing.
func (s *EditorService) lookup(ctx context.Context, session *model.Session, id string) (*liveEditor, error) {
	s.mu.Lock()
	l, ok := s.live[id]
	s.mu.Unlock()
	if ok {
		if l.rec.UserID != session.UserID {
			return nil, ErrEditorNotFound
		}
		return l, nil
	}

	rec, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load editor %s: %w", id, err)
	}
	if rec == nil || rec.UserID != session.UserID {
		return nil, ErrEditorNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.live[id]; ok {
		return l, nil
	}
	l = &liveEditor{rec: *rec, ed: editor.Restore(rec.Checkpoint)}
	s.live[id] = l
	s.log.WithField("editor", id).Debug("editor restored from checkpoint")
	return l, nil
}

func (s *EditorService) checkpoint(ctx context.Context, l *liveEditor) error {
	rec := l.rec
	rec.Checkpoint = l.ed.Checkpoint()
	if err := s.drafts.Set(ctx, &rec); err != nil {
		return fmt.Errorf("failed to checkpoint editor: %w", err)
	}
	return nil
}
