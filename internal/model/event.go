package model

import "time"

// SurveyEventType names a survey lifecycle transition
type SurveyEventType string

const (
	EventSurveySaved       SurveyEventType = "survey.saved"
	EventSurveyPublished   SurveyEventType = "survey.published"
	EventSurveyClosed      SurveyEventType = "survey.closed"
	EventSurveyExported    SurveyEventType = "survey.exported"
	EventResponseSubmitted SurveyEventType = "survey.response_submitted"
)

// SurveyEvent is published whenever a survey changes lifecycle state
type SurveyEvent struct {
	EventID   string          `json:"eventId"`
	Type      SurveyEventType `json:"type"`
	NiceURL   string          `json:"niceUrl"`
	SurveyID  string          `json:"surveyId,omitempty"`
	Title     string          `json:"title,omitempty"`
	UserID    int             `json:"userId"`
	Format    string          `json:"format,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
