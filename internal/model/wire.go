package model

// WireOption is an option as sent to POST/PUT /api/surveys
type WireOption struct {
	OptionText  string `json:"option_text"`
	OptionOrder int    `json:"option_order"`
}

// WireQuestion is a question as sent to POST/PUT /api/surveys
type WireQuestion struct {
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	IsRequired    bool         `json:"is_required"`
	QuestionOrder int          `json:"question_order"`
	Options       []WireOption `json:"options"`
}

// WireSurvey is the save payload
type WireSurvey struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      SurveyStatus   `json:"status"`
	IsPublic    bool           `json:"is_public"`
	Questions   []WireQuestion `json:"questions"`
}

// EditPayload is the shape returned by GET /api/surveys/:niceUrl/edit.
// encoding/json matches keys case-insensitively, so the lowercase save
// shape decodes into it too.
type EditPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      SurveyStatus   `json:"status"`
	IsPublic    *bool          `json:"is_public"`
	Questions   []EditQuestion `json:"Questions"`
}

// EditQuestion is a question inside EditPayload
type EditQuestion struct {
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	IsRequired    *bool        `json:"is_required"`
	QuestionOrder int          `json:"question_order"`
	Options       []EditOption `json:"Options"`
}

// EditOption is an option inside EditQuestion
type EditOption struct {
	OptionText  string `json:"option_text"`
	OptionOrder int    `json:"option_order"`
}
