// Package progress holds the learner progress rules: lesson transitions, course percentage,
// learner streaks and averages, and the achievement triggers. Functions mutate the aggregate
// they are given; persisting it is the caller's job.
package progress

import (
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/util"
	"time"
)

// Completion is a lesson-completion event. Score and TimeSpent are optional.
type Completion struct {
	Score     *int
	TimeSpent int // minutes
}

func (c Completion) Validate() error {
	if c.Score != nil && (*c.Score < 0 || *c.Score > 100) {
		return util.ErrInvalidScore
	}
	if c.TimeSpent < 0 {
		return util.ErrInvalidTimeSpent
	}
	return nil
}

// NewLessonProgress seeds a not_started record for lesson.
func NewLessonProgress(userID uint, lesson model.Lesson) model.LessonProgress {
	return model.LessonProgress{
		UserID:   userID,
		LessonID: lesson.ID,
		CourseID: lesson.CourseID,
		Position: lesson.Position,
		Status:   model.StatusNotStarted,
	}
}

// StartLesson records an access. The first access moves not_started to in_progress and
// counts as the first attempt; later accesses only touch LastAccessedAt.
func StartLesson(lp *model.LessonProgress, now time.Time) {
	if lp.Status == model.StatusNotStarted {
		lp.Status = model.StatusInProgress
		lp.StartedAt = timePtr(now)
		if lp.Attempts < 1 {
			lp.Attempts = 1
		}
	}
	lp.LastAccessedAt = timePtr(now)
}

// CompleteLesson marks the lesson completed. CompletedAt always reflects the latest
// completion, time spent accumulates and the score only ever goes up.
func CompleteLesson(lp *model.LessonProgress, c Completion, now time.Time) {
	if lp.StartedAt == nil {
		lp.StartedAt = timePtr(now)
	}
	lp.Status = model.StatusCompleted
	lp.CompletedAt = timePtr(now)
	lp.LastAccessedAt = timePtr(now)
	lp.Attempts++
	lp.TimeSpent += c.TimeSpent
	if c.Score != nil && (lp.Score == nil || *c.Score > *lp.Score) {
		score := *c.Score
		lp.Score = &score
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
