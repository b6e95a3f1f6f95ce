package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystudio/internal/model"
)

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	return ve.Reason
}

func TestValidateForPublish(t *testing.T) {
	cases := []struct {
		name  string
		build func(e *Editor)
		want  Reason
	}{
		{"empty title", func(e *Editor) {
			_ = e.AddQuestion(model.QuestionTypeShortAnswer)
		}, ReasonEmptyTitle},
		{"whitespace title", func(e *Editor) {
			_ = e.SetDetail(FieldTitle, "   ")
			_ = e.AddQuestion(model.QuestionTypeShortAnswer)
		}, ReasonEmptyTitle},
		{"no questions", func(e *Editor) {
			_ = e.SetDetail(FieldTitle, "T")
		}, ReasonNoQuestions},
		{"required short answer blank", func(e *Editor) {
			_ = e.SetDetail(FieldTitle, "T")
			_ = e.AddQuestion(model.QuestionTypeShortAnswer)
			_ = e.ChangeQuestionField(0, FieldQuestionText, "")
			_ = e.ChangeQuestionField(0, FieldIsRequired, true)
		}, ReasonBlankQuestion},
		{"required choice blank option", func(e *Editor) {
			_ = e.SetDetail(FieldTitle, "T")
			_ = e.AddQuestion(model.QuestionTypeMultipleChoice)
			_ = e.ChangeQuestionField(0, FieldIsRequired, true)
			e.AddOption(0)
			e.ChangeOption(0, 1, " ")
		}, ReasonBlankOption},
		{"required checkbox no options", func(e *Editor) {
			_ = e.SetDetail(FieldTitle, "T")
			_ = e.AddQuestion(model.QuestionTypeCheckbox)
			_ = e.ChangeQuestionField(0, FieldIsRequired, true)
			e.RemoveOption(0, 0)
		}, ReasonNoOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New()
			tc.build(e)
			assert.Equal(t, tc.want, reasonOf(t, e.ValidateForPublish()))
		})
	}
}

func TestValidateForPublishAcceptsMinimalSurvey(t *testing.T) {
	e := New()
	require.NoError(t, e.SetDetail(FieldTitle, "T"))
	require.NoError(t, e.AddQuestion(model.QuestionTypeShortAnswer))
	assert.NoError(t, e.ValidateForPublish())
}

func TestValidateIgnoresOptionalQuestions(t *testing.T) {
	e := New()
	require.NoError(t, e.SetDetail(FieldTitle, "T"))
	require.NoError(t, e.AddQuestion(model.QuestionTypeCheckbox))
	e.ChangeOption(0, 0, "")
	assert.NoError(t, e.ValidateForPublish())
}

func TestValidationErrorReportsPosition(t *testing.T) {
	e := New()
	require.NoError(t, e.SetDetail(FieldTitle, "T"))
	require.NoError(t, e.AddQuestion(model.QuestionTypeShortAnswer))
	require.NoError(t, e.AddQuestion(model.QuestionTypeCheckbox))
	require.NoError(t, e.ChangeQuestionField(1, FieldIsRequired, true))
	e.ChangeOption(1, 0, "")

	var ve *ValidationError
	require.ErrorAs(t, e.ValidateForPublish(), &ve)
	assert.Equal(t, 1, ve.QuestionIndex)
	assert.Equal(t, 0, ve.OptionIndex)
	assert.Equal(t, "question 2 option 1 has no text", ve.Error())
}
