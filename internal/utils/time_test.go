package utils

import (
	"testing"
	"time"
)

func TestNextOccurrence(t *testing.T) {
	// Tuesday 2024-06-04 10:00 UTC
	now := time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		hour      int
		minute    int
		daysToAdd int
		want      time.Time
	}{
		{
			name:   "future time today stays today",
			hour:   15,
			minute: 30,
			want:   time.Date(2024, 6, 4, 15, 30, 0, 0, time.UTC),
		},
		{
			name:   "past time today rolls to tomorrow",
			hour:   9,
			minute: 0,
			want:   time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "exact current minute rolls to tomorrow",
			hour:   10,
			minute: 0,
			want:   time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC),
		},
		{
			name:      "explicit offset is trusted even when past",
			hour:      9,
			minute:    0,
			daysToAdd: 3,
			want:      time.Date(2024, 6, 7, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(now, tt.hour, tt.minute, tt.daysToAdd)
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextWeekdayOccurrence(t *testing.T) {
	// Wednesday 2024-06-05 10:00 UTC
	now := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		target time.Weekday
		hour   int
		minute int
		want   time.Time
	}{
		{
			name:   "monday from wednesday lands next monday",
			target: time.Monday,
			hour:   9,
			minute: 0,
			want:   time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "same weekday future time stays today",
			target: time.Wednesday,
			hour:   15,
			minute: 0,
			want:   time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC),
		},
		{
			name:   "same weekday past time moves a full week out",
			target: time.Wednesday,
			hour:   9,
			minute: 0,
			want:   time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC),
		},
		{
			name:   "friday from wednesday lands this friday",
			target: time.Friday,
			hour:   9,
			minute: 0,
			want:   time.Date(2024, 6, 7, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextWeekdayOccurrence(now, tt.target, tt.hour, tt.minute)
			if !got.Equal(tt.want) {
				t.Errorf("NextWeekdayOccurrence() = %v, want %v", got, tt.want)
			}
			if got.Weekday() != tt.target {
				t.Errorf("NextWeekdayOccurrence() landed on %v, want %v", got.Weekday(), tt.target)
			}
			if !got.After(now) {
				t.Errorf("NextWeekdayOccurrence() = %v is not after now %v", got, now)
			}
		})
	}
}
