package editor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystudio/internal/model"
)

func buildDraft(t *testing.T) *Editor {
	t.Helper()
	e := New()
	require.NoError(t, e.SetDetail(FieldTitle, "Campus"))
	require.NoError(t, e.SetDetail(FieldDescription, "Facilities"))
	require.NoError(t, e.SetDetail(FieldIsPublic, true))
	require.NoError(t, e.AddQuestion(model.QuestionTypeMultipleChoice))
	require.NoError(t, e.ChangeQuestionField(0, FieldQuestionText, "How often?"))
	require.NoError(t, e.ChangeQuestionField(0, FieldIsRequired, true))
	e.AddOption(0)
	e.ChangeOption(0, 0, "Daily")
	e.ChangeOption(0, 1, "Weekly")
	require.NoError(t, e.AddQuestion(model.QuestionTypeShortAnswer))
	require.NoError(t, e.ChangeQuestionField(1, FieldQuestionText, "Ideas?"))
	return e
}

func TestToWirePayloadIsIdempotent(t *testing.T) {
	e := buildDraft(t)
	a := e.ToWirePayload(model.StatusPublished)
	b := e.ToWirePayload(model.StatusPublished)
	assert.Equal(t, a, b)

	assert.Equal(t, model.StatusPublished, a.Status)
	require.Len(t, a.Questions, 2)
	assert.Equal(t, []model.WireOption{
		{OptionText: "Daily", OptionOrder: 1},
		{OptionText: "Weekly", OptionOrder: 2},
	}, a.Questions[0].Options)
	assert.NotNil(t, a.Questions[1].Options)
	assert.Empty(t, a.Questions[1].Options)
}

func TestWirePayloadOmitsEditorFields(t *testing.T) {
	e := buildDraft(t)
	require.True(t, e.SetSuggestion(0, model.Suggestion{QuestionText: "Better?"}))

	raw, err := json.Marshal(e.ToWirePayload(model.StatusDraft))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "aiSuggestion")
	assert.NotContains(t, string(raw), "isGenerated")
}

func TestLoadFromWireRoundTrip(t *testing.T) {
	src := buildDraft(t)
	raw, err := json.Marshal(src.ToWirePayload(model.StatusDraft))
	require.NoError(t, err)

	var p model.EditPayload
	require.NoError(t, json.Unmarshal(raw, &p))

	dst := New()
	dst.LoadFromWire(p)

	want := src.Survey()
	got := dst.Survey()
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.IsPublic, got.IsPublic)
	require.Len(t, got.Questions, len(want.Questions))
	for i := range want.Questions {
		assert.Equal(t, want.Questions[i].QuestionText, got.Questions[i].QuestionText)
		assert.Equal(t, want.Questions[i].QuestionType, got.Questions[i].QuestionType)
		assert.Equal(t, want.Questions[i].IsRequired, got.Questions[i].IsRequired)
		assert.Equal(t, want.Questions[i].Options, got.Questions[i].Options)
	}
	assert.False(t, dst.IsDirty())
}

func TestLoadFromWireDefaults(t *testing.T) {
	body := `{
		"title": "T",
		"status": "published",
		"Questions": [
			{"question_text": "second", "question_type": "checkbox", "question_order": 2,
			 "Options": [{"option_text": "y", "option_order": 2}, {"option_text": "x", "option_order": 1}]},
			{"question_text": "first", "question_type": "short_answer", "question_order": 1,
			 "Options": [{"option_text": "stray"}]}
		]
	}`
	var p model.EditPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	e := New()
	e.LoadFromWire(p)
	s := e.Survey()

	assert.Equal(t, model.StatusPublished, s.Status)
	assert.False(t, s.IsPublic)
	require.Len(t, s.Questions, 2)
	assert.Equal(t, "first", s.Questions[0].QuestionText)
	assert.False(t, s.Questions[0].IsRequired)
	assert.Empty(t, s.Questions[0].Options)
	assert.Equal(t, []model.Option{
		{OptionText: "x", OptionOrder: 1},
		{OptionText: "y", OptionOrder: 2},
	}, s.Questions[1].Options)
	assertOrdered(t, e)
}

func TestMarkSavedKeepsLaterEditsDirty(t *testing.T) {
	e := buildDraft(t)
	snap := e.Snapshot(model.StatusDraft)

	require.NoError(t, e.SetDetail(FieldTitle, "edited during save"))
	assert.False(t, e.MarkSaved(snap))
	assert.True(t, e.IsDirty())

	snap = e.Snapshot(model.StatusPublished)
	assert.True(t, e.MarkSaved(snap))
	assert.False(t, e.IsDirty())
	assert.Equal(t, model.StatusPublished, e.Survey().Status)
}

func TestCheckpointRestore(t *testing.T) {
	e := buildDraft(t)
	require.Equal(t, NavPending, e.RequestNavigation("/dashboard"))

	raw, err := json.Marshal(e.Checkpoint())
	require.NoError(t, err)
	var cp Checkpoint
	require.NoError(t, json.Unmarshal(raw, &cp))

	r := Restore(cp)
	assert.Equal(t, e.Survey(), r.Survey())
	assert.Equal(t, e.Revision(), r.Revision())
	assert.True(t, r.IsDirty())
	require.NotNil(t, r.PendingNavigation())
	assert.Equal(t, "/dashboard", r.PendingNavigation().Target)
}
