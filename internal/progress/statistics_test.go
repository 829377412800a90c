package progress

import (
	"ethioheritage_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var addis = time.FixedZone("EAT", 3*60*60)

func day(d, h, m int) time.Time {
	return time.Date(2026, 1, d, h, m, 0, 0, addis)
}

func TestUpdateStreak(t *testing.T) {
	tests := []struct {
		name        string
		activity    []time.Time
		wantCurrent int
		wantLongest int
	}{
		{"first activity", []time.Time{day(1, 10, 0)}, 1, 1},
		{"consecutive days", []time.Time{day(1, 10, 0), day(2, 10, 0), day(3, 10, 0)}, 3, 3},
		{"gap resets", []time.Time{day(1, 10, 0), day(6, 10, 0)}, 1, 1},
		{"same day unchanged", []time.Time{day(1, 8, 0), day(1, 20, 0)}, 1, 1},
		{"midnight boundary counts as next day", []time.Time{day(1, 23, 59), day(2, 0, 1)}, 2, 2},
		{"22 hours on the same day does not increment", []time.Time{day(2, 0, 1), day(2, 23, 59)}, 1, 1},
		{"longest survives a reset", []time.Time{day(1, 9, 0), day(2, 9, 0), day(3, 9, 0), day(10, 9, 0)}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stats model.LearnerStatistics
			for _, at := range tt.activity {
				UpdateStreak(&stats, at, addis)
				assert.GreaterOrEqual(t, stats.LongestStreak, stats.CurrentStreak)
			}
			assert.Equal(t, tt.wantCurrent, stats.CurrentStreak)
			assert.Equal(t, tt.wantLongest, stats.LongestStreak)
			assert.Equal(t, tt.activity[len(tt.activity)-1], *stats.LastActivityDate)
		})
	}
}

func TestUpdateStreakUsesConfiguredCalendar(t *testing.T) {
	// 22:30 UTC on Jan 1 is already Jan 2 in Addis Ababa.
	first := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	second := time.Date(2026, 1, 1, 22, 30, 0, 0, time.UTC)

	var inUTC model.LearnerStatistics
	UpdateStreak(&inUTC, first, time.UTC)
	UpdateStreak(&inUTC, second, time.UTC)
	assert.Equal(t, 1, inUTC.CurrentStreak)

	var inAddis model.LearnerStatistics
	UpdateStreak(&inAddis, first, addis)
	UpdateStreak(&inAddis, second, addis)
	assert.Equal(t, 2, inAddis.CurrentStreak)
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 0, AverageScore(nil))
	assert.Equal(t, 85, AverageScore([]int{80, 90, 70, 100}))
	assert.Equal(t, 67, AverageScore([]int{100, 50, 50}))
	assert.Equal(t, 50, AverageScore([]int{49, 50}), "49.5 rounds up")
}

func TestApplyTotals(t *testing.T) {
	stats := model.LearnerStatistics{CurrentStreak: 4, LongestStreak: 6}
	ApplyTotals(&stats, model.LearnerTotals{LessonsCompleted: 3, TimeSpent: 45, Scores: []int{70, 80}})

	assert.Equal(t, 3, stats.TotalLessonsCompleted)
	assert.Equal(t, 45, stats.TotalTimeSpent)
	assert.Equal(t, 75, stats.AverageScore)
	assert.Equal(t, 4, stats.CurrentStreak, "streak is untouched")
}
