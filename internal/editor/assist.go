package editor

import (
	"strings"

	"surveystudio/internal/model"
)

// GenerateRequest builds the auto-generate request from the draft
func (e *Editor) GenerateRequest() model.GenerateRequest {
	texts := make([]string, 0, len(e.survey.Questions))
	for _, q := range e.survey.Questions {
		if t := strings.TrimSpace(q.QuestionText); t != "" {
			texts = append(texts, t)
		}
	}
	return model.GenerateRequest{
		Title:             e.survey.Title,
		Description:       e.survey.Description,
		ExistingQuestions: texts,
	}
}

// ApplyGenerated appends a generated batch, numbered after the current
// questions and flagged as generated. It returns how many were added.
func (e *Editor) ApplyGenerated(batch []model.GeneratedQuestion) int {
	added := 0
	for _, g := range batch {
		t := g.QuestionType
		if !t.Valid() {
			t = model.QuestionTypeShortAnswer
			if len(g.Options) > 0 {
				t = model.QuestionTypeMultipleChoice
			}
		}
		q := model.Question{
			QuestionText: g.QuestionText,
			QuestionType: t,
			IsRequired:   g.IsRequired,
			Options:      []model.Option{},
			IsGenerated:  true,
		}
		if t.HasOptions() {
			for _, o := range g.Options {
				q.Options = append(q.Options, model.Option{OptionText: o.OptionText})
			}
		}
		e.survey.Questions = append(e.survey.Questions, q)
		added++
	}
	if added == 0 {
		return 0
	}
	renumberQuestions(e.survey.Questions)
	e.touch()
	return added
}

// RefineRequest builds the refinement request for one question
func (e *Editor) RefineRequest(index int) (model.RefineRequest, bool) {
	if !e.inRange(index) {
		return model.RefineRequest{}, false
	}
	p := e.ToWirePayload(e.survey.Status)
	return model.RefineRequest{
		SurveyTitle: e.survey.Title,
		Question:    p.Questions[index],
	}, true
}

// SetSuggestion stores a refinement candidate without touching the
// question. Generated questions are locked from refinement.
func (e *Editor) SetSuggestion(index int, s model.Suggestion) bool {
	if !e.inRange(index) {
		return false
	}
	q := &e.survey.Questions[index]
	if q.IsGenerated {
		return false
	}
	s.Options = append([]model.Option{}, s.Options...)
	renumberOptions(s.Options)
	q.AISuggestion = &s
	return true
}

// AcceptSuggestion copies the pending suggestion into the question
func (e *Editor) AcceptSuggestion(index int) bool {
	if !e.inRange(index) {
		return false
	}
	q := &e.survey.Questions[index]
	if q.AISuggestion == nil {
		return false
	}
	q.QuestionText = q.AISuggestion.QuestionText
	if t := q.AISuggestion.QuestionType; t.Valid() && t != q.QuestionType {
		changeType(q, t)
	}
	if q.QuestionType.HasOptions() {
		q.Options = append([]model.Option{}, q.AISuggestion.Options...)
		renumberOptions(q.Options)
	}
	q.IsGenerated = true
	q.AISuggestion = nil
	e.touch()
	return true
}

// DiscardSuggestion drops the pending suggestion
func (e *Editor) DiscardSuggestion(index int) bool {
	if !e.inRange(index) {
		return false
	}
	q := &e.survey.Questions[index]
	if q.AISuggestion == nil {
		return false
	}
	q.AISuggestion = nil
	return true
}
