package model

import "time"

// SurveyAuthor is the owner name shown on a published survey
type SurveyAuthor struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PublishedOption is an answerable option with its backend id
type PublishedOption struct {
	OptionID    int    `json:"option_id"`
	OptionText  string `json:"option_text"`
	OptionOrder int    `json:"option_order"`
}

// PublishedQuestion is an answerable question with its backend id
type PublishedQuestion struct {
	QuestionID    int               `json:"question_id"`
	QuestionText  string            `json:"question_text"`
	QuestionType  QuestionType      `json:"question_type"`
	IsRequired    bool              `json:"is_required"`
	QuestionOrder int               `json:"question_order"`
	Options       []PublishedOption `json:"Options"`
}

// PublishedSurvey is returned by GET /api/surveys/:niceUrl and, without
// questions, as a row of GET /api/surveys
type PublishedSurvey struct {
	SurveyID    int                 `json:"survey_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      SurveyStatus        `json:"status"`
	NiceURL     string              `json:"nice_url"`
	CreatedAt   time.Time           `json:"createdAt"`
	User        *SurveyAuthor       `json:"User,omitempty"`
	Questions   []PublishedQuestion `json:"Questions,omitempty"`
}

// AnswerInput is what a respondent picked or typed for one question
type AnswerInput struct {
	QuestionID int    `json:"question_id"`
	OptionIDs  []int  `json:"option_ids,omitempty"`
	Text       string `json:"text,omitempty"`
}

// AnswerRow is one row of a submission. Checkbox questions produce one
// row per selected option.
type AnswerRow struct {
	QuestionID       int    `json:"question_id"`
	SelectedOptionID *int   `json:"selected_option_id,omitempty"`
	ResponseText     string `json:"response_text,omitempty"`
}

// Submission is the body of POST /api/surveys/nice/:niceUrl/submit
type Submission struct {
	Answers []AnswerRow `json:"answers"`
}

// ProfileUpdate is the body of PUT /api/users/me
type ProfileUpdate struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	UserPhotoURL string `json:"user_photo_url"`
}
