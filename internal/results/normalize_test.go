package results

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystudio/internal/model"
)

func raws(t *testing.T, items ...any) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func percentages(r model.AggregatedResult) []int {
	var out []int
	for _, d := range r.Data {
		out = append(out, d.Percentage)
	}
	return out
}

func TestNormalizeChoicePercentages(t *testing.T) {
	cases := []struct {
		name   string
		counts []int
		want   []int
	}{
		{"three to one", []int{3, 1}, []int{75, 25}},
		{"all zero", []int{0, 0}, []int{0, 0}},
		{"thirds", []int{1, 1, 1}, []int{33, 33, 33}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := model.QuestionAggregate{QuestionText: "Pick", QuestionType: model.QuestionTypeMultipleChoice}
			for i, c := range tc.counts {
				q.Options = append(q.Options, model.OptionCount{OptionText: string(rune('A' + i)), Count: c})
			}
			out := Normalize("1", &model.AggregatePayload{Questions: []model.QuestionAggregate{q}})
			require.Len(t, out.Questions, 1)
			assert.Equal(t, tc.want, percentages(out.Questions[0]))
			assert.Equal(t, "A", out.Questions[0].Data[0].Label)
		})
	}
}

func TestNormalizeIgnoresBackendPercentages(t *testing.T) {
	q := model.QuestionAggregate{
		QuestionType: model.QuestionTypeCheckbox,
		Options: []model.OptionCount{
			{OptionText: "a", Count: 1, Percentage: 90},
			{OptionText: "b", Count: 1, Percentage: 90},
		},
		Cooccurrence: []model.Cooccurrence{{OptionA: "a", OptionB: "b", Count: 1}},
	}
	out := Normalize("1", &model.AggregatePayload{Questions: []model.QuestionAggregate{q}})
	r := out.Questions[0]
	assert.Equal(t, []int{50, 50}, percentages(r))
	assert.Equal(t, q.Cooccurrence, r.Cooccurrence)
}

func TestNormalizeShortAnswer(t *testing.T) {
	q := model.QuestionAggregate{
		QuestionType: model.QuestionTypeShortAnswer,
		Data:         raws(t, "Great library", map[string]string{"response_text": "Library hours"}, 42),
		WordMap:      []model.WordCount{{Word: "library", Count: 2}},
	}
	out := Normalize("1", &model.AggregatePayload{Questions: []model.QuestionAggregate{q}})
	r := out.Questions[0]
	assert.Equal(t, []string{"Great library", "Library hours"}, r.Responses)
	assert.Equal(t, q.WordMap, r.WordMap)
}

func TestNormalizeShortAnswerBuildsWordMapWhenMissing(t *testing.T) {
	q := model.QuestionAggregate{
		QuestionType: model.QuestionTypeShortAnswer,
		Data:         raws(t, "Library is great", "the LIBRARY"),
	}
	out := Normalize("1", &model.AggregatePayload{Questions: []model.QuestionAggregate{q}})
	assert.Equal(t, []model.WordCount{
		{Word: "library", Count: 2},
		{Word: "great", Count: 1},
	}, out.Questions[0].WordMap)
}

func TestNormalizeRatingAverage(t *testing.T) {
	q := model.QuestionAggregate{
		QuestionType: model.QuestionTypeRating,
		Data: raws(t,
			map[string]int{"rating": 5, "count": 2},
			map[string]int{"rating": 4, "count": 1},
			map[string]int{"rating": 1, "count": 1},
		),
	}
	out := Normalize("1", &model.AggregatePayload{Questions: []model.QuestionAggregate{q}})
	r := out.Questions[0]
	require.NotNil(t, r.Average)
	assert.Equal(t, 3.8, *r.Average)
	assert.Equal(t, []model.RatingDatum{
		{Rating: 5, Count: 2, Percentage: 50},
		{Rating: 4, Count: 1, Percentage: 25},
		{Rating: 1, Count: 1, Percentage: 25},
	}, r.Ratings)
}

func TestNormalizeRatingUsesPercentagesWithoutCounts(t *testing.T) {
	q := model.QuestionAggregate{
		QuestionType: model.QuestionTypeRating,
		Data: raws(t,
			map[string]float64{"rating": 4, "percentage": 50},
			map[string]float64{"rating": 2, "percentage": 50},
		),
	}
	out := Normalize("1", &model.AggregatePayload{Questions: []model.QuestionAggregate{q}})
	require.NotNil(t, out.Questions[0].Average)
	assert.Equal(t, 3.0, *out.Questions[0].Average)
}

func TestNormalizeDefaultsMissingArrays(t *testing.T) {
	out := Normalize("1", &model.AggregatePayload{
		Questions: []model.QuestionAggregate{
			{QuestionType: model.QuestionTypeMultipleChoice},
			{QuestionType: model.QuestionTypeShortAnswer},
			{QuestionType: "matrix"},
		},
	})
	for _, r := range out.Questions {
		assert.NotNil(t, r.Data)
		assert.NotNil(t, r.Responses)
		assert.NotNil(t, r.WordMap)
	}
	assert.NotNil(t, out.SubmissionDates)

	empty := Normalize("2", nil)
	assert.Equal(t, "2", empty.SurveyID)
	assert.NotNil(t, empty.Questions)
}

func TestNormalizeIsPureAndDeterministic(t *testing.T) {
	first := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	p := &model.AggregatePayload{
		SurveyTitle:     "Campus",
		KPIs:            model.KPIs{TotalResponses: 4, FirstResponseAt: &first},
		SubmissionDates: []string{"2025-01-02T10:00:00Z"},
		Questions: []model.QuestionAggregate{
			{QuestionType: model.QuestionTypeCheckbox, Options: []model.OptionCount{{OptionText: "a", Count: 3}, {OptionText: "b", Count: 1}}},
			{QuestionType: model.QuestionTypeShortAnswer, Data: raws(t, "alpha beta", "beta gamma")},
		},
	}
	before, err := json.Marshal(p)
	require.NoError(t, err)

	a := Normalize("7", p)
	b := Normalize("7", p)
	assert.Equal(t, a, b)

	a.Questions[0].Data[0].Count = 99
	a.SubmissionDates[0] = "changed"
	after, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}
