package editor

import (
	"fmt"
	"strings"
)

// Reason identifies which publish rule failed
type Reason string

const (
	ReasonEmptyTitle    Reason = "empty_title"
	ReasonNoQuestions   Reason = "no_questions"
	ReasonBlankQuestion Reason = "blank_question"
	ReasonNoOptions     Reason = "no_options"
	ReasonBlankOption   Reason = "blank_option"
)

// ValidationError blocks a publish. Indexes are 0-based and -1 when not
// applicable.
type ValidationError struct {
	Reason        Reason `json:"reason"`
	QuestionIndex int    `json:"questionIndex"`
	OptionIndex   int    `json:"optionIndex"`
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmptyTitle:
		return "survey title is required"
	case ReasonNoQuestions:
		return "survey needs at least one question"
	case ReasonBlankQuestion:
		return fmt.Sprintf("question %d is required but has no text", e.QuestionIndex+1)
	case ReasonNoOptions:
		return fmt.Sprintf("question %d is required but has no options", e.QuestionIndex+1)
	case ReasonBlankOption:
		return fmt.Sprintf("question %d option %d has no text", e.QuestionIndex+1, e.OptionIndex+1)
	}
	return string(e.Reason)
}

func fail(r Reason, q, o int) *ValidationError {
	return &ValidationError{Reason: r, QuestionIndex: q, OptionIndex: o}
}

// ValidateForPublish checks the publish rules and returns the first
// failure, or nil.
func (e *Editor) ValidateForPublish() error {
	s := e.survey
	if blank(s.Title) {
		return fail(ReasonEmptyTitle, -1, -1)
	}
	if len(s.Questions) == 0 {
		return fail(ReasonNoQuestions, -1, -1)
	}
	for i, q := range s.Questions {
		if !q.IsRequired {
			continue
		}
		if blank(q.QuestionText) {
			return fail(ReasonBlankQuestion, i, -1)
		}
		if !q.QuestionType.HasOptions() {
			continue
		}
		if len(q.Options) == 0 {
			return fail(ReasonNoOptions, i, -1)
		}
		for j, o := range q.Options {
			if blank(o.OptionText) {
				return fail(ReasonBlankOption, i, j)
			}
		}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
