package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"surveystudio/internal/cache"
	"surveystudio/internal/events"
	"surveystudio/internal/model"
)

// SurveyBackend is the part of the backend used for survey listing and
// lifecycle
type SurveyBackend interface {
	ListMine(ctx context.Context, token string) ([]model.SurveySummary, error)
	CloseSurvey(ctx context.Context, token, niceURL string) error
}

// upstream ends the session when the backend rejects its token
type upstream interface {
	Upstream(ctx context.Context, session *model.Session, err error) error
}

// SurveyService handles the owner's survey list and closing
type SurveyService struct {
	backend   SurveyBackend
	results   cache.ResultsCache
	publisher events.Publisher
	auth      upstream
	log       logrus.FieldLogger
}

// NewSurveyService creates a new survey service
func NewSurveyService(b SurveyBackend, results cache.ResultsCache, pub events.Publisher, auth upstream, log logrus.FieldLogger) *SurveyService {
	return &SurveyService{
		backend:   b,
		results:   results,
		publisher: pub,
		auth:      auth,
		log:       log.WithField("component", "surveys"),
	}
}

// ListMine returns the surveys owned by the session user
func (s *SurveyService) ListMine(ctx context.Context, session *model.Session) ([]model.SurveySummary, error) {
	list, err := s.backend.ListMine(ctx, session.Token)
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}
	return list, nil
}

// Close closes a published survey. surveyID may be empty; when set, the
// cached results of that survey are dropped.
func (s *SurveyService) Close(ctx context.Context, session *model.Session, niceURL, surveyID string) error {
	if err := s.backend.CloseSurvey(ctx, session.Token, niceURL); err != nil {
		return s.auth.Upstream(ctx, session, err)
	}
	if surveyID != "" {
		if err := s.results.Invalidate(ctx, surveyID); err != nil {
			s.log.WithError(err).WithField("survey", surveyID).Warn("failed to invalidate results")
		}
	}
	publish(ctx, s.publisher, s.log, model.SurveyEvent{
		Type:     model.EventSurveyClosed,
		NiceURL:  niceURL,
		SurveyID: surveyID,
		UserID:   session.UserID,
	})
	s.log.WithFields(logrus.Fields{"survey": niceURL, "user": session.UserID}).Info("survey closed")
	return nil
}

// publish sends an event and only logs failures
func publish(ctx context.Context, pub events.Publisher, log logrus.FieldLogger, event model.SurveyEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("type", event.Type).Warn("failed to publish event")
	}
}
