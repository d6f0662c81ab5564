package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustParseDate(t *testing.T) {
	d := MustParseDate("2024-03-11")
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), d)

	assert.Panics(t, func() { MustParseDate("11-03-2024") })
	assert.Panics(t, func() { MustParseDate("") })
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(time.Date(2024, 3, 11, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, MustParseDate("2024-03-11"), start)
	assert.Equal(t, MustParseDate("2024-03-12"), end)
}

func TestISOWeekBounds(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		monday string
		sunday string
	}{
		{name: "Midweek", date: "2024-03-13", monday: "2024-03-11", sunday: "2024-03-17"},
		{name: "Monday itself", date: "2024-03-11", monday: "2024-03-11", sunday: "2024-03-17"},
		{name: "Sunday belongs to the preceding Monday", date: "2024-03-17", monday: "2024-03-11", sunday: "2024-03-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monday, sunday := ISOWeekBounds(MustParseDate(tt.date))
			require.Equal(t, MustParseDate(tt.monday), monday)
			require.Equal(t, MustParseDate(tt.sunday), sunday)
		})
	}
}
