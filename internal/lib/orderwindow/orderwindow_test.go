package orderwindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Check(t *testing.T) {
	// 2026-10-18 приходится на воскресенье.
	sunday := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		days        []int
		now         time.Time
		wantOpen    bool
		wantCurrent string
		wantMessage string
	}{
		{
			name:        "sunday inside default window",
			days:        []int{0, 1, 2},
			now:         sunday,
			wantOpen:    true,
			wantCurrent: "Sunday",
			wantMessage: "Orders are only accepted on: Sunday, Monday, Tuesday",
		},
		{
			name:        "tuesday inside default window",
			days:        []int{0, 1, 2},
			now:         sunday.AddDate(0, 0, 2),
			wantOpen:    true,
			wantCurrent: "Tuesday",
			wantMessage: "Orders are only accepted on: Sunday, Monday, Tuesday",
		},
		{
			name:        "thursday outside window",
			days:        []int{0, 1, 2},
			now:         sunday.AddDate(0, 0, 4),
			wantOpen:    false,
			wantCurrent: "Thursday",
			wantMessage: "Orders are only accepted on: Sunday, Monday, Tuesday",
		},
		{
			name:        "custom window",
			days:        []int{5, 6},
			now:         sunday.AddDate(0, 0, -1),
			wantOpen:    true,
			wantCurrent: "Saturday",
			wantMessage: "Orders are only accepted on: Friday, Saturday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(tt.days, time.UTC).WithClock(func() time.Time { return tt.now })
			st := w.Check()
			assert.Equal(t, tt.wantOpen, st.Open)
			assert.Equal(t, tt.wantCurrent, st.CurrentDay)
			assert.Equal(t, tt.days, st.AllowedDays)
			assert.Equal(t, tt.wantMessage, st.Message)
		})
	}
}

func TestWindow_UsesLocation(t *testing.T) {
	// 23:30 UTC в субботу, в Лагосе (UTC+1) уже воскресенье.
	lagos := time.FixedZone("WAT", 3600)
	saturdayNight := time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC)

	w := New([]int{0}, lagos).WithClock(func() time.Time { return saturdayNight })
	assert.True(t, w.Check().Open)

	w = New([]int{0}, time.UTC).WithClock(func() time.Time { return saturdayNight })
	assert.False(t, w.Check().Open)
}
