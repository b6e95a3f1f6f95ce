package results

import (
	"sort"
	"time"

	"surveystudio/internal/model"
)

// Granularity is the bucket size of a response trend
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Trend buckets submission timestamps in chronological order. Daily
// buckets are labeled "Jan 2", monthly ones "Jan 2006". Unparseable
// dates are skipped.
func Trend(dates []string, g Granularity) []model.TrendPoint {
	parsed := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if t, ok := parseDate(d); ok {
			parsed = append(parsed, t)
		}
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	points := []model.TrendPoint{}
	var last time.Time
	for _, t := range parsed {
		bucket, label := bucketOf(t, g)
		if len(points) == 0 || !bucket.Equal(last) {
			points = append(points, model.TrendPoint{Label: label})
			last = bucket
		}
		points[len(points)-1].Count++
	}
	return points
}

func bucketOf(t time.Time, g Granularity) (time.Time, string) {
	if g == Monthly {
		b := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return b, b.Format("Jan 2006")
	}
	b := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return b, b.Format("Jan 2")
}
