package model

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice" // single select
	QuestionTypeCheckbox       QuestionType = "checkbox"        // multi select
	QuestionTypeShortAnswer    QuestionType = "short_answer"    // free text
	QuestionTypeRating         QuestionType = "rating"          // results only
)

// Valid reports whether t can be authored in the editor
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeCheckbox, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// HasOptions reports whether questions of this type carry an option list
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeCheckbox
}

// Option is one choice of a multiple_choice or checkbox question
type Option struct {
	OptionText  string `json:"option_text"`
	OptionOrder int    `json:"option_order"`
}

// Question is an editor question. IsGenerated and AISuggestion are
// editor-only and never part of a save payload.
type Question struct {
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	IsRequired    bool         `json:"is_required"`
	QuestionOrder int          `json:"question_order"`
	Options       []Option     `json:"options"`

	IsGenerated  bool        `json:"isGenerated"`
	AISuggestion *Suggestion `json:"aiSuggestion,omitempty"`
}

// Clone returns a deep copy of the question
func (q Question) Clone() Question {
	out := q
	out.Options = append([]Option{}, q.Options...)
	if q.AISuggestion != nil {
		s := *q.AISuggestion
		s.Options = append([]Option{}, q.AISuggestion.Options...)
		out.AISuggestion = &s
	}
	return out
}

// Suggestion is a pending AI refinement awaiting accept or discard
type Suggestion struct {
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type,omitempty"`
	Options      []Option     `json:"options"`
}
