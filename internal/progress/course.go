package progress

import (
	"ethioheritage_backend/internal/model"
	"math"
	"time"
)

// Percentage is round(100 * completed / total), 0 when there are no lessons.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// RecomputeCourse refreshes the percentage and status of cp. totalLessons comes from the
// catalog; when it is unknown (<= 0) the aggregate's own lesson count is used.
// It reports whether this call moved the course to completed.
func RecomputeCourse(cp *model.CourseProgress, totalLessons int, now time.Time) bool {
	if totalLessons <= 0 {
		totalLessons = len(cp.Lessons)
	}
	cp.ProgressPercentage = Percentage(cp.CompletedLessons(), totalLessons)

	// completed is terminal
	if cp.Status == model.StatusCompleted {
		return false
	}

	if cp.ProgressPercentage >= 100 {
		cp.Status = model.StatusCompleted
		cp.CompletedAt = timePtr(now)
		if cp.StartedAt == nil {
			cp.StartedAt = timePtr(now)
		}
		return true
	}

	if cp.Status == model.StatusNotStarted && cp.ProgressPercentage > 0 {
		cp.Status = model.StatusInProgress
		if cp.StartedAt == nil {
			cp.StartedAt = timePtr(now)
		}
	}
	return false
}

// CourseScore is the rounded mean of the scored, completed lessons of cp (0 if none).
func CourseScore(cp *model.CourseProgress) int {
	var scores []int
	for _, l := range cp.Lessons {
		if l.Status == model.StatusCompleted && l.Score != nil {
			scores = append(scores, *l.Score)
		}
	}
	return AverageScore(scores)
}

// CourseTimeSpent sums the minutes recorded on every lesson of cp.
func CourseTimeSpent(cp *model.CourseProgress) int {
	total := 0
	for _, l := range cp.Lessons {
		total += l.TimeSpent
	}
	return total
}
