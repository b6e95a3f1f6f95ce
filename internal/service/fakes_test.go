package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"surveystudio/internal/backend"
	"surveystudio/internal/model"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

// fakeBackend implements every backend interface the services use. Unset
// hooks return zero values.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	login      func(model.LoginRequest) (*model.BackendAuthResponse, error)
	me         func(token string) (*model.BackendUser, error)
	updateMe   func(model.ProfileUpdate) (*model.BackendUser, error)
	listMine   func(token string) ([]model.SurveySummary, error)
	closeFn    func(token, niceURL string) error
	getForEdit func(token, niceURL string) (*model.EditPayload, error)
	create     func(token string, s model.WireSurvey) (*model.SaveResult, error)
	update     func(token, niceURL string, s model.WireSurvey) (*model.SaveResult, error)
	generate   func(model.GenerateRequest) (*model.GenerateResponse, error)
	refine     func(model.RefineRequest) (*model.RefineResponse, error)
	aggregates func(surveyID string) (*model.AggregatePayload, error)
	export     func(surveyID, format string) (*backend.ExportFile, error)
	listUsers  func() ([]model.AdminUser, error)
	ban        func(userID int) error
	published  func(niceURL string) (*model.PublishedSurvey, error)
	listPub    func() ([]model.PublishedSurvey, error)
	submit     func(niceURL string, sub model.Submission) error
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Login(_ context.Context, req model.LoginRequest) (*model.BackendAuthResponse, error) {
	f.hit("login")
	return f.login(req)
}

func (f *fakeBackend) Register(_ context.Context, req model.RegisterRequest) (*model.BackendAuthResponse, error) {
	f.hit("register")
	return f.login(model.LoginRequest{Email: req.Email, Password: req.Password})
}

func (f *fakeBackend) GoogleLogin(_ context.Context, req model.GoogleLoginRequest) (*model.BackendAuthResponse, error) {
	f.hit("google")
	return f.login(model.LoginRequest{Email: req.Credential})
}

func (f *fakeBackend) Me(_ context.Context, token string) (*model.BackendUser, error) {
	f.hit("me")
	return f.me(token)
}

func (f *fakeBackend) UpdateMe(_ context.Context, _ string, update model.ProfileUpdate) (*model.BackendUser, error) {
	f.hit("updateMe")
	return f.updateMe(update)
}

func (f *fakeBackend) ListPublished(context.Context, string) ([]model.PublishedSurvey, error) {
	f.hit("listPublished")
	return f.listPub()
}

func (f *fakeBackend) GetPublished(_ context.Context, _ string, niceURL string) (*model.PublishedSurvey, error) {
	f.hit("getPublished")
	return f.published(niceURL)
}

func (f *fakeBackend) SubmitResponses(_ context.Context, _ string, niceURL string, sub model.Submission) error {
	f.hit("submit")
	return f.submit(niceURL, sub)
}

func (f *fakeBackend) ListMine(_ context.Context, token string) ([]model.SurveySummary, error) {
	f.hit("listMine")
	return f.listMine(token)
}

func (f *fakeBackend) CloseSurvey(_ context.Context, token, niceURL string) error {
	f.hit("close")
	return f.closeFn(token, niceURL)
}

func (f *fakeBackend) GetForEdit(_ context.Context, token, niceURL string) (*model.EditPayload, error) {
	f.hit("getForEdit")
	return f.getForEdit(token, niceURL)
}

func (f *fakeBackend) CreateSurvey(_ context.Context, token string, s model.WireSurvey) (*model.SaveResult, error) {
	f.hit("create")
	return f.create(token, s)
}

func (f *fakeBackend) UpdateSurvey(_ context.Context, token, niceURL string, s model.WireSurvey) (*model.SaveResult, error) {
	f.hit("update")
	return f.update(token, niceURL, s)
}

func (f *fakeBackend) Generate(_ context.Context, _ string, req model.GenerateRequest) (*model.GenerateResponse, error) {
	f.hit("generate")
	return f.generate(req)
}

func (f *fakeBackend) Refine(_ context.Context, _ string, req model.RefineRequest) (*model.RefineResponse, error) {
	f.hit("refine")
	return f.refine(req)
}

func (f *fakeBackend) Aggregates(_ context.Context, _ string, surveyID string) (*model.AggregatePayload, error) {
	f.hit("aggregates")
	return f.aggregates(surveyID)
}

func (f *fakeBackend) Export(_ context.Context, _ string, surveyID, format string) (*backend.ExportFile, error) {
	f.hit("export")
	return f.export(surveyID, format)
}

func (f *fakeBackend) ListUsers(context.Context, string) ([]model.AdminUser, error) {
	f.hit("listUsers")
	return f.listUsers()
}

func (f *fakeBackend) BanUser(_ context.Context, _ string, userID int) error {
	f.hit("ban")
	return f.ban(userID)
}

// fakePublisher records published events
type fakePublisher struct {
	mu     sync.Mutex
	events []model.SurveyEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e model.SurveyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []model.SurveyEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.SurveyEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeBroadcaster records broadcasts
type fakeBroadcaster struct {
	mu           sync.Mutex
	messages     []string
	disconnected []string
}

func (b *fakeBroadcaster) BroadcastToEditor(editorID, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, editorID+":"+msgType)
}

func (b *fakeBroadcaster) DisconnectEditor(editorID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, editorID)
}

// passUpstream returns backend errors unchanged
type passUpstream struct{}

func (passUpstream) Upstream(_ context.Context, _ *model.Session, err error) error { return err }

func testSession(userID int) *model.Session {
	return &model.Session{
		ID:        "sess-" + strconv.Itoa(userID),
		Token:     "backend-token",
		UserID:    userID,
		Role:      model.RoleUser,
		CreatedAt: time.Now(),
	}
}
