package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystudio/internal/cache"
	"surveystudio/internal/logger"
	"surveystudio/internal/model"
)

func campusSurvey() *model.PublishedSurvey {
	return &model.PublishedSurvey{
		SurveyID: 9,
		Title:    "Campus",
		Status:   model.StatusPublished,
		NiceURL:  "campus-9",
		Questions: []model.PublishedQuestion{
			{QuestionID: 3, QuestionText: "Why", QuestionType: model.QuestionTypeShortAnswer, QuestionOrder: 3},
			{QuestionID: 1, QuestionText: "Pick", QuestionType: model.QuestionTypeMultipleChoice, IsRequired: true, QuestionOrder: 1,
				Options: []model.PublishedOption{{OptionID: 11, OptionOrder: 2}, {OptionID: 10, OptionOrder: 1}}},
			{QuestionID: 2, QuestionText: "Tags", QuestionType: model.QuestionTypeCheckbox, QuestionOrder: 2,
				Options: []model.PublishedOption{{OptionID: 20, OptionOrder: 1}, {OptionID: 21, OptionOrder: 2}}},
		},
	}
}

func optionRow(questionID, optionID int) model.AnswerRow {
	return model.AnswerRow{QuestionID: questionID, SelectedOptionID: &optionID}
}

func TestBuildAnswersRowsPerType(t *testing.T) {
	rows, err := BuildAnswers(campusSurvey(), []model.AnswerInput{
		{QuestionID: 2, OptionIDs: []int{21, 20}},
		{QuestionID: 3, Text: "  great food "},
		{QuestionID: 1, OptionIDs: []int{10}},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.AnswerRow{
		{QuestionID: 3, ResponseText: "great food"},
		optionRow(1, 10),
		optionRow(2, 21),
		optionRow(2, 20),
	}, rows)
}

func TestBuildAnswersSkipsBlankAnswers(t *testing.T) {
	rows, err := BuildAnswers(campusSurvey(), []model.AnswerInput{
		{QuestionID: 1, OptionIDs: []int{11}},
		{QuestionID: 2},
		{QuestionID: 3, Text: "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.AnswerRow{optionRow(1, 11)}, rows)
}

func TestBuildAnswersRejects(t *testing.T) {
	tests := []struct {
		name     string
		inputs   []model.AnswerInput
		question int
	}{
		{"missing required", []model.AnswerInput{{QuestionID: 3, Text: "x"}}, 1},
		{"unknown question", []model.AnswerInput{{QuestionID: 99, Text: "x"}}, 99},
		{"two picks on single choice", []model.AnswerInput{{QuestionID: 1, OptionIDs: []int{10, 11}}}, 1},
		{"foreign option", []model.AnswerInput{{QuestionID: 1, OptionIDs: []int{20}}}, 1},
		{"repeated option", []model.AnswerInput{{QuestionID: 1, OptionIDs: []int{10}}, {QuestionID: 2, OptionIDs: []int{20, 20}}}, 2},
		{"text on choice", []model.AnswerInput{{QuestionID: 1, Text: "A"}}, 1},
		{"options on text", []model.AnswerInput{{QuestionID: 1, OptionIDs: []int{10}}, {QuestionID: 3, OptionIDs: []int{10}}}, 3},
		{"answered twice", []model.AnswerInput{{QuestionID: 1, OptionIDs: []int{10}}, {QuestionID: 1, OptionIDs: []int{11}}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildAnswers(campusSurvey(), tt.inputs)
			var aerr *AnswerError
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, tt.question, aerr.QuestionID)
		})
	}
}

func TestBuildAnswersEmpty(t *testing.T) {
	sv := campusSurvey()
	sv.Questions[1].IsRequired = false
	_, err := BuildAnswers(sv, nil)
	assert.ErrorIs(t, err, ErrEmptySubmission)
}

func newResponseFixture(t *testing.T, fb *fakeBackend) (*ResponseService, cache.ResultsCache, *fakePublisher) {
	t.Helper()
	rc := cache.NewResultsCache(newRedis(t), time.Hour)
	pub := &fakePublisher{}
	return NewResponseService(fb, rc, pub, passUpstream{}, logger.Discard()), rc, pub
}

func TestFormSortsAndRejectsClosed(t *testing.T) {
	sv := campusSurvey()
	fb := &fakeBackend{published: func(niceURL string) (*model.PublishedSurvey, error) {
		if niceURL == "closed" {
			return &model.PublishedSurvey{Status: model.StatusClosed}, nil
		}
		return sv, nil
	}}
	svc, _, _ := newResponseFixture(t, fb)
	ctx := context.Background()

	form, err := svc.Form(ctx, testSession(1), "campus-9")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{form.Questions[0].QuestionID, form.Questions[1].QuestionID, form.Questions[2].QuestionID})
	assert.Equal(t, 10, form.Questions[0].Options[0].OptionID)

	_, err = svc.Form(ctx, testSession(1), "closed")
	assert.ErrorIs(t, err, ErrSurveyNotOpen)
}

func TestBrowseListsOpenSurveys(t *testing.T) {
	fb := &fakeBackend{listPub: func() ([]model.PublishedSurvey, error) {
		return []model.PublishedSurvey{
			{SurveyID: 1, Status: model.StatusPublished},
			{SurveyID: 2, Status: model.StatusClosed},
			{SurveyID: 3},
		}, nil
	}}
	svc, _, _ := newResponseFixture(t, fb)
	list, err := svc.Browse(context.Background(), testSession(1))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].SurveyID)
	assert.Equal(t, 3, list[1].SurveyID)
}

func TestSubmitRecordsAndInvalidatesResults(t *testing.T) {
	var sent model.Submission
	fb := &fakeBackend{
		published: func(string) (*model.PublishedSurvey, error) { return campusSurvey(), nil },
		submit: func(niceURL string, sub model.Submission) error {
			assert.Equal(t, "campus-9", niceURL)
			sent = sub
			return nil
		},
	}
	svc, rc, pub := newResponseFixture(t, fb)
	ctx := context.Background()
	require.NoError(t, rc.Set(ctx, 7, &model.AggregatedSurveyResult{SurveyID: "9"}))

	n, err := svc.Submit(ctx, testSession(1), "campus-9", []model.AnswerInput{{QuestionID: 1, OptionIDs: []int{10}}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []model.AnswerRow{optionRow(1, 10)}, sent.Answers)
	assert.Equal(t, []model.SurveyEventType{model.EventResponseSubmitted}, pub.types())

	got, err := rc.Get(ctx, 7, "9")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSubmitInvalidAnswersNeverReachBackend(t *testing.T) {
	fb := &fakeBackend{
		published: func(string) (*model.PublishedSurvey, error) { return campusSurvey(), nil },
		submit:    func(string, model.Submission) error { return errors.New("unreachable") },
	}
	svc, _, pub := newResponseFixture(t, fb)
	_, err := svc.Submit(context.Background(), testSession(1), "campus-9", nil)
	var aerr *AnswerError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 0, fb.count("submit"))
	assert.Empty(t, pub.types())
}
