package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystudio/internal/model"
)

func TestCleanDraftNavigatesFreely(t *testing.T) {
	e := New()
	assert.Equal(t, NavAllowed, e.RequestNavigation("/home"))
	assert.Nil(t, e.PendingNavigation())
}

func TestDirtyDraftConfirmDiscards(t *testing.T) {
	e := New()
	require.NoError(t, e.AddQuestion(model.QuestionTypeShortAnswer))

	assert.Equal(t, NavPending, e.RequestNavigation("/home"))
	target, ok := e.ConfirmNavigation()
	assert.True(t, ok)
	assert.Equal(t, "/home", target)
	assert.Zero(t, e.QuestionCount())
	assert.False(t, e.IsDirty())
	assert.Nil(t, e.PendingNavigation())
}

func TestDirtyDraftCancelKeepsEditing(t *testing.T) {
	e := New()
	require.NoError(t, e.AddQuestion(model.QuestionTypeShortAnswer))

	e.RequestNavigation("/home")
	assert.True(t, e.CancelNavigation())
	assert.Equal(t, 1, e.QuestionCount())
	assert.True(t, e.IsDirty())

	_, ok := e.ConfirmNavigation()
	assert.False(t, ok)
	assert.False(t, e.CancelNavigation())
}
