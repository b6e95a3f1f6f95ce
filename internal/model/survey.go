package model

import "time"

// SurveyStatus is the lifecycle state of a survey
type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "draft"
	StatusPublished SurveyStatus = "published"
	StatusClosed    SurveyStatus = "closed"
)

// Valid reports whether s is a known status
func (s SurveyStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusClosed:
		return true
	}
	return false
}

// Survey is the in-progress document held by an editor session
type Survey struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      SurveyStatus `json:"status"`
	IsPublic    bool         `json:"is_public"`
	Questions   []Question   `json:"questions"`
}

// Clone returns a deep copy of the survey
func (s *Survey) Clone() *Survey {
	out := *s
	out.Questions = make([]Question, len(s.Questions))
	for i := range s.Questions {
		out.Questions[i] = s.Questions[i].Clone()
	}
	return &out
}

// SurveySummary is one row of the owner's survey list
type SurveySummary struct {
	SurveyID      int          `json:"survey_id"`
	Title         string       `json:"title"`
	Status        SurveyStatus `json:"status"`
	NiceURL       string       `json:"nice_url"`
	QuestionCount int          `json:"question_count"`
	PublishedAt   *time.Time   `json:"publishedAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// SaveResult is the backend response to a create or update
type SaveResult struct {
	SurveyID int    `json:"survey_id"`
	NiceURL  string `json:"nice_url"`
}
