// Package results turns backend aggregate payloads into one rendering
// model that does not depend on question type.
package results

import (
	"encoding/json"
	"math"

	"surveystudio/internal/model"
)

// Normalize converts a raw aggregate payload. It never mutates p and
// identical input yields identical output.
func Normalize(surveyID string, p *model.AggregatePayload) *model.AggregatedSurveyResult {
	out := &model.AggregatedSurveyResult{
		SurveyID:        surveyID,
		Questions:       []model.AggregatedResult{},
		SubmissionDates: []string{},
	}
	if p == nil {
		return out
	}
	out.Title = p.SurveyTitle
	out.KPIs = copyKPIs(p.KPIs)
	out.SubmissionDates = append(out.SubmissionDates, p.SubmissionDates...)

	for _, q := range p.Questions {
		out.Questions = append(out.Questions, normalizeQuestion(q))
	}
	return out
}

func normalizeQuestion(q model.QuestionAggregate) model.AggregatedResult {
	r := model.AggregatedResult{
		Title:     q.QuestionText,
		Type:      q.QuestionType,
		Data:      []model.ChoiceDatum{},
		Responses: []string{},
		WordMap:   []model.WordCount{},
	}

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeCheckbox:
		r.Data = choiceData(q.Options)
		if q.QuestionType == model.QuestionTypeCheckbox && len(q.Cooccurrence) > 0 {
			r.Cooccurrence = append([]model.Cooccurrence{}, q.Cooccurrence...)
		}
	case model.QuestionTypeShortAnswer:
		r.Responses = textResponses(q.Data)
		if len(q.WordMap) > 0 {
			r.WordMap = append(r.WordMap, q.WordMap...)
		} else {
			r.WordMap = WordMap(r.Responses)
		}
	case model.QuestionTypeRating:
		r.Ratings, r.Average = ratingData(q.Data)
	}
	return r
}

// Percent returns round(count/total*100), or 0 when total is 0
func Percent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

func choiceData(opts []model.OptionCount) []model.ChoiceDatum {
	total := 0
	for _, o := range opts {
		total += o.Count
	}
	data := make([]model.ChoiceDatum, 0, len(opts))
	for _, o := range opts {
		data = append(data, model.ChoiceDatum{
			Label:      o.OptionText,
			Count:      o.Count,
			Percentage: Percent(o.Count, total),
		})
	}
	return data
}

// textEntry is a free-text answer sent as an object instead of a string
type textEntry struct {
	ResponseText string `json:"response_text"`
	Label        string `json:"label"`
	Option       string `json:"option"`
}

func textResponses(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var e textEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		switch {
		case e.ResponseText != "":
			out = append(out, e.ResponseText)
		case e.Label != "":
			out = append(out, e.Label)
		case e.Option != "":
			out = append(out, e.Option)
		}
	}
	return out
}

type ratingRow struct {
	Rating     int      `json:"rating"`
	Count      int      `json:"count"`
	Percentage *float64 `json:"percentage"`
}

// ratingData computes bars and the weighted average
// sum(rating*percentage)/100, rounded to one decimal.
func ratingData(raw []json.RawMessage) ([]model.RatingDatum, *float64) {
	rows := make([]ratingRow, 0, len(raw))
	total := 0
	for _, item := range raw {
		var row ratingRow
		if err := json.Unmarshal(item, &row); err != nil {
			continue
		}
		rows = append(rows, row)
		total += row.Count
	}
	bars := make([]model.RatingDatum, 0, len(rows))
	if len(rows) == 0 {
		return bars, nil
	}

	weighted := 0.0
	for _, row := range rows {
		pct := 0.0
		switch {
		case total > 0:
			pct = float64(row.Count) / float64(total) * 100
		case row.Percentage != nil:
			pct = *row.Percentage
		}
		weighted += float64(row.Rating) * pct
		bars = append(bars, model.RatingDatum{
			Rating:     row.Rating,
			Count:      row.Count,
			Percentage: int(math.Round(pct)),
		})
	}
	avg := math.Round(weighted/100*10) / 10
	return bars, &avg
}

func copyKPIs(k model.KPIs) model.KPIs {
	out := k
	if k.FirstResponseAt != nil {
		t := *k.FirstResponseAt
		out.FirstResponseAt = &t
	}
	if k.LastResponseAt != nil {
		t := *k.LastResponseAt
		out.LastResponseAt = &t
	}
	return out
}
