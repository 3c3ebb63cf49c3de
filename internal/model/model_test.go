package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/season-stats-service/internal/model"
)

func TestSeason_IncludesDate(t *testing.T) {
	s := model.Season{
		Year:      2026,
		StartDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"start day", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), true},
		{"start day late evening", time.Date(2026, 10, 1, 23, 59, 0, 0, time.UTC), true},
		{"end day afternoon", time.Date(2027, 6, 30, 15, 0, 0, 0, time.UTC), true},
		{"mid season", time.Date(2027, 1, 15, 12, 0, 0, 0, time.UTC), true},
		{"day before start", time.Date(2026, 9, 30, 23, 59, 0, 0, time.UTC), false},
		{"day after end", time.Date(2027, 7, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.IncludesDate(tc.d))
		})
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2026, 10, 18, 17, 45, 3, 99, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), model.DateOf(in))
}
