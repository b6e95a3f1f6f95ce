package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"surveystudio/internal/cache"
	"surveystudio/internal/model"
	"surveystudio/internal/results"
)

// ResultsBackend fetches raw aggregates
type ResultsBackend interface {
	Aggregates(ctx context.Context, token, surveyID string) (*model.AggregatePayload, error)
}

// ResultsService serves normalized dashboard results
type ResultsService struct {
	backend ResultsBackend
	cache   cache.ResultsCache
	auth    upstream
	log     logrus.FieldLogger
}

// NewResultsService creates a new results service
func NewResultsService(b ResultsBackend, c cache.ResultsCache, auth upstream, log logrus.FieldLogger) *ResultsService {
	return &ResultsService{
		backend: b,
		cache:   c,
		auth:    auth,
		log:     log.WithField("component", "results"),
	}
}

// Load returns the normalized results of a survey. A cached copy is used
// unless refresh is set; a refresh always rewrites the cache entry.
func (s *ResultsService) Load(ctx context.Context, session *model.Session, surveyID string, refresh bool) (*model.AggregatedSurveyResult, error) {
	log := s.log.WithFields(logrus.Fields{"survey": surveyID, "user": session.UserID})
	if !refresh {
		cached, err := s.cache.Get(ctx, session.UserID, surveyID)
		if err != nil {
			log.WithError(err).Warn("results cache read failed")
		}
		if cached != nil {
			log.Debug("results served from cache")
			return cached, nil
		}
	}

	payload, err := s.backend.Aggregates(ctx, session.Token, surveyID)
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}
	result := results.Normalize(surveyID, payload)

	if err := s.cache.Set(ctx, session.UserID, result); err != nil {
		log.WithError(err).Warn("results cache write failed")
	}
	return result, nil
}

// View loads results through the results panel state machine. Errors are
// carried on the returned view rather than returned.
func (s *ResultsService) View(ctx context.Context, session *model.Session, surveyID string, refresh bool) (*results.View, error) {
	v := results.NewView()
	if err := v.Select(surveyID); err != nil {
		return nil, err
	}
	r, err := s.Load(ctx, session, surveyID, refresh)
	if err != nil {
		if err := v.Fail(err); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := v.Display(r); err != nil {
		return nil, err
	}
	return v, nil
}

// Trend buckets the submission dates of a survey
func (s *ResultsService) Trend(ctx context.Context, session *model.Session, surveyID string, g results.Granularity) ([]model.TrendPoint, error) {
	r, err := s.Load(ctx, session, surveyID, false)
	if err != nil {
		return nil, err
	}
	if g != results.Monthly {
		g = results.Daily
	}
	return results.Trend(r.SubmissionDates, g), nil
}

// Invalidate drops cached results of a survey for every user
func (s *ResultsService) Invalidate(ctx context.Context, surveyID string) error {
	return s.cache.Invalidate(ctx, surveyID)
}
