package model

import (
	"encoding/json"
	"time"
)

// KPIs are survey-level response counters
type KPIs struct {
	TotalResponses    int        `json:"total_responses"`
	UniqueRespondents int        `json:"unique_respondents"`
	FirstResponseAt   *time.Time `json:"first_response_at,omitempty"`
	LastResponseAt    *time.Time `json:"last_response_at,omitempty"`
}

// AggregatePayload is the raw body of GET /api/surveys/:id/aggregates
type AggregatePayload struct {
	SurveyTitle     string              `json:"survey_title"`
	KPIs            KPIs                `json:"kpis"`
	SubmissionDates []string            `json:"submission_dates"`
	Questions       []QuestionAggregate `json:"questions"`
}

// QuestionAggregate is the per-question part of AggregatePayload. Data
// holds free-text answers or rating rows depending on the type.
type QuestionAggregate struct {
	QuestionText string            `json:"question_text"`
	QuestionType QuestionType      `json:"question_type"`
	Options      []OptionCount     `json:"options"`
	Cooccurrence []Cooccurrence    `json:"cooccurrence"`
	Data         []json.RawMessage `json:"data"`
	WordMap      []WordCount       `json:"word_map"`
}

// OptionCount is a raw option tally
type OptionCount struct {
	OptionText string  `json:"option_text"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Cooccurrence counts respondents who picked both options
type Cooccurrence struct {
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	Count   int    `json:"count"`
}

// WordCount is one entry of a word map
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// ChoiceDatum is a normalized option bar
type ChoiceDatum struct {
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// RatingDatum is a normalized rating bar
type RatingDatum struct {
	Rating     int `json:"rating"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// AggregatedResult is the type-independent rendering model of one question
type AggregatedResult struct {
	Title        string         `json:"title"`
	Type         QuestionType   `json:"type"`
	Data         []ChoiceDatum  `json:"data"`
	Ratings      []RatingDatum  `json:"ratings,omitempty"`
	Responses    []string       `json:"responses"`
	WordMap      []WordCount    `json:"word_map"`
	Average      *float64       `json:"average,omitempty"`
	Cooccurrence []Cooccurrence `json:"cooccurrence,omitempty"`
}

// AggregatedSurveyResult is the normalized dashboard model
type AggregatedSurveyResult struct {
	SurveyID        string             `json:"surveyId"`
	Title           string             `json:"title"`
	KPIs            KPIs               `json:"kpis"`
	SubmissionDates []string           `json:"submission_dates"`
	Questions       []AggregatedResult `json:"questions"`
}

// TrendPoint is one bucket of the response trend
type TrendPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
