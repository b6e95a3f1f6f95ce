package model

// GenerateRequest is sent to POST /api/ai/generate
type GenerateRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	ExistingQuestions []string `json:"existing_questions"`
}

// GeneratedQuestion is one item of a generated batch
type GeneratedQuestion struct {
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	IsRequired   bool         `json:"is_required"`
	Options      []WireOption `json:"options"`
}

// GenerateResponse is returned by POST /api/ai/generate
type GenerateResponse struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// RefineRequest is sent to POST /api/ai/refine
type RefineRequest struct {
	SurveyTitle string       `json:"survey_title"`
	Question    WireQuestion `json:"question"`
}

// RefineResponse is returned by POST /api/ai/refine
type RefineResponse struct {
	Suggestion Suggestion `json:"suggestion"`
}
