package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"surveystudio/internal/cache"
	"surveystudio/internal/events"
	"surveystudio/internal/model"
)

var (
	ErrSurveyNotOpen   = errors.New("survey is not open for responses")
	ErrEmptySubmission = errors.New("no answers given")
)

// AnswerError rejects one answer of a submission
type AnswerError struct {
	QuestionID int
	Reason     string
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("question %d: %s", e.QuestionID, e.Reason)
}

// ResponseBackend is the part of the backend respondents use
type ResponseBackend interface {
	ListPublished(ctx context.Context, token string) ([]model.PublishedSurvey, error)
	GetPublished(ctx context.Context, token, niceURL string) (*model.PublishedSurvey, error)
	SubmitResponses(ctx context.Context, token, niceURL string, sub model.Submission) error
}

// ResponseService lets signed-in users browse published surveys and
// answer them
type ResponseService struct {
	backend   ResponseBackend
	results   cache.ResultsCache
	publisher events.Publisher
	auth      upstream
	log       logrus.FieldLogger
}

// NewResponseService creates a new response service
func NewResponseService(b ResponseBackend, results cache.ResultsCache, pub events.Publisher, auth upstream, log logrus.FieldLogger) *ResponseService {
	return &ResponseService{
		backend:   b,
		results:   results,
		publisher: pub,
		auth:      auth,
		log:       log.WithField("component", "responses"),
	}
}

// Browse lists the published surveys
func (s *ResponseService) Browse(ctx context.Context, session *model.Session) ([]model.PublishedSurvey, error) {
	list, err := s.backend.ListPublished(ctx, session.Token)
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}
	out := make([]model.PublishedSurvey, 0, len(list))
	for _, sv := range list {
		if acceptsResponses(&sv) {
			out = append(out, sv)
		}
	}
	return out, nil
}

// Form loads a published survey with questions and options in display
// order
func (s *ResponseService) Form(ctx context.Context, session *model.Session, niceURL string) (*model.PublishedSurvey, error) {
	sv, err := s.backend.GetPublished(ctx, session.Token, niceURL)
	if err != nil {
		return nil, s.auth.Upstream(ctx, session, err)
	}
	if !acceptsResponses(sv) {
		return nil, ErrSurveyNotOpen
	}
	sort.SliceStable(sv.Questions, func(i, j int) bool {
		return sv.Questions[i].QuestionOrder < sv.Questions[j].QuestionOrder
	})
	for i := range sv.Questions {
		opts := sv.Questions[i].Options
		sort.SliceStable(opts, func(a, b int) bool { return opts[a].OptionOrder < opts[b].OptionOrder })
	}
	return sv, nil
}

// Submit checks the answers against the survey and records them. It
// returns the number of answer rows sent.
func (s *ResponseService) Submit(ctx context.Context, session *model.Session, niceURL string, answers []model.AnswerInput) (int, error) {
	sv, err := s.Form(ctx, session, niceURL)
	if err != nil {
		return 0, err
	}
	rows, err := BuildAnswers(sv, answers)
	if err != nil {
		return 0, err
	}
	if err := s.backend.SubmitResponses(ctx, session.Token, niceURL, model.Submission{Answers: rows}); err != nil {
		return 0, s.auth.Upstream(ctx, session, err)
	}

	var surveyID string
	if sv.SurveyID != 0 {
		surveyID = strconv.Itoa(sv.SurveyID)
		if err := s.results.Invalidate(ctx, surveyID); err != nil {
			s.log.WithError(err).WithField("survey", surveyID).Warn("failed to invalidate results")
		}
	}
	publish(ctx, s.publisher, s.log, model.SurveyEvent{
		Type:     model.EventResponseSubmitted,
		NiceURL:  niceURL,
		SurveyID: surveyID,
		Title:    sv.Title,
		UserID:   session.UserID,
	})
	s.log.WithFields(logrus.Fields{"survey": niceURL, "rows": len(rows)}).Info("response submitted")
	return len(rows), nil
}

// acceptsResponses treats a missing status as published since the
// public listing only returns open surveys
func acceptsResponses(sv *model.PublishedSurvey) bool {
	return sv.Status == "" || sv.Status == model.StatusPublished
}

// BuildAnswers turns respondent input into submission rows: one row with
// selected_option_id for multiple_choice, one row per selected option
// for checkbox, one response_text row for short_answer. Blank answers
// produce no row. Rows follow question order.
func BuildAnswers(sv *model.PublishedSurvey, inputs []model.AnswerInput) ([]model.AnswerRow, error) {
	byID := make(map[int]*model.PublishedQuestion, len(sv.Questions))
	for i := range sv.Questions {
		byID[sv.Questions[i].QuestionID] = &sv.Questions[i]
	}

	perQuestion := make(map[int][]model.AnswerRow, len(inputs))
	for _, in := range inputs {
		q, ok := byID[in.QuestionID]
		if !ok {
			return nil, &AnswerError{QuestionID: in.QuestionID, Reason: "not part of this survey"}
		}
		if _, dup := perQuestion[in.QuestionID]; dup {
			return nil, &AnswerError{QuestionID: in.QuestionID, Reason: "answered more than once"}
		}
		rows, err := answerRows(q, in)
		if err != nil {
			return nil, err
		}
		perQuestion[in.QuestionID] = rows
	}

	var out []model.AnswerRow
	for _, q := range sv.Questions {
		rows := perQuestion[q.QuestionID]
		if q.IsRequired && len(rows) == 0 {
			return nil, &AnswerError{QuestionID: q.QuestionID, Reason: "an answer is required"}
		}
		out = append(out, rows...)
	}
	if len(out) == 0 {
		return nil, ErrEmptySubmission
	}
	return out, nil
}

func answerRows(q *model.PublishedQuestion, in model.AnswerInput) ([]model.AnswerRow, error) {
	text := strings.TrimSpace(in.Text)
	switch q.QuestionType {
	case model.QuestionTypeShortAnswer:
		if len(in.OptionIDs) > 0 {
			return nil, &AnswerError{QuestionID: q.QuestionID, Reason: "expects text, not options"}
		}
		if text == "" {
			return nil, nil
		}
		return []model.AnswerRow{{QuestionID: q.QuestionID, ResponseText: text}}, nil

	case model.QuestionTypeMultipleChoice, model.QuestionTypeCheckbox:
		if text != "" {
			return nil, &AnswerError{QuestionID: q.QuestionID, Reason: "expects options, not text"}
		}
		if q.QuestionType == model.QuestionTypeMultipleChoice && len(in.OptionIDs) > 1 {
			return nil, &AnswerError{QuestionID: q.QuestionID, Reason: "only one option can be picked"}
		}
		valid := make(map[int]bool, len(q.Options))
		for _, o := range q.Options {
			valid[o.OptionID] = true
		}
		picked := make(map[int]bool, len(in.OptionIDs))
		rows := make([]model.AnswerRow, 0, len(in.OptionIDs))
		for _, id := range in.OptionIDs {
			if !valid[id] {
				return nil, &AnswerError{QuestionID: q.QuestionID, Reason: fmt.Sprintf("option %d does not belong to this question", id)}
			}
			if picked[id] {
				return nil, &AnswerError{QuestionID: q.QuestionID, Reason: fmt.Sprintf("option %d picked twice", id)}
			}
			picked[id] = true
			optionID := id
			rows = append(rows, model.AnswerRow{QuestionID: q.QuestionID, SelectedOptionID: &optionID})
		}
		return rows, nil
	}
	return nil, &AnswerError{QuestionID: q.QuestionID, Reason: fmt.Sprintf("%s questions cannot be answered", q.QuestionType)}
}
