package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"surveystudio/internal/model"
)

func TestTrendDaily(t *testing.T) {
	dates := []string{
		"2025-01-03T09:00:00Z",
		"2025-01-02T10:00:00Z",
		"not a date",
		"2025-01-02 18:30:00",
		"2025-02-01",
	}
	assert.Equal(t, []model.TrendPoint{
		{Label: "Jan 2", Count: 2},
		{Label: "Jan 3", Count: 1},
		{Label: "Feb 1", Count: 1},
	}, Trend(dates, Daily))
}

func TestTrendMonthly(t *testing.T) {
	dates := []string{"2025-02-10", "2024-12-31T23:00:00Z", "2025-02-01"}
	assert.Equal(t, []model.TrendPoint{
		{Label: "Dec 2024", Count: 1},
		{Label: "Feb 2025", Count: 2},
	}, Trend(dates, Monthly))
}

func TestTrendEmpty(t *testing.T) {
	assert.Empty(t, Trend(nil, Daily))
	assert.NotNil(t, Trend(nil, Daily))
}

func TestWordMapCap(t *testing.T) {
	var responses []string
	for i := 0; i < MaxWords+10; i++ {
		responses = append(responses, "word"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	assert.Len(t, WordMap(responses), MaxWords)
}
