package progress

import (
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/util"
	"math"
	"time"
)

// UpdateStreak applies one activity at now. Days are calendar days in loc, not rolling
// 24h windows: 23:59 followed by 00:01 is consecutive, 00:01 followed by 23:59 is the same day.
func UpdateStreak(stats *model.LearnerStatistics, now time.Time, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(util.DateFormat)
	yesterday := now.In(loc).AddDate(0, 0, -1).Format(util.DateFormat)

	switch {
	case stats.LastActivityDate == nil:
		stats.CurrentStreak = 1
	default:
		last := stats.LastActivityDate.In(loc).Format(util.DateFormat)
		switch last {
		case yesterday:
			stats.CurrentStreak++
		case today:
			if stats.CurrentStreak < 1 {
				stats.CurrentStreak = 1
			}
		default:
			stats.CurrentStreak = 1
		}
	}

	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.LastActivityDate = timePtr(now)
}

// AverageScore is the rounded mean of scores, 0 for an empty slice.
func AverageScore(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}

// ApplyTotals copies the aggregated lesson totals onto stats and recomputes the average score.
func ApplyTotals(stats *model.LearnerStatistics, totals model.LearnerTotals) {
	stats.TotalLessonsCompleted = totals.LessonsCompleted
	stats.TotalTimeSpent = totals.TimeSpent
	stats.AverageScore = AverageScore(totals.Scores)
}
