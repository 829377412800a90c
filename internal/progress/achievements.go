package progress

import (
	"ethioheritage_backend/internal/model"
)

const (
	AchievementFirstLesson    = "first_lesson"
	AchievementStreak7        = "streak_7"
	AchievementCourseComplete = "course_complete"
	AchievementTenLessons     = "lessons_10"
	AchievementPerfectScore   = "perfect_score"
)

// Catalog lists every achievement a learner can earn.
var Catalog = []model.AchievementDefinition{
	{ID: AchievementFirstLesson, Type: model.AchievementMilestone, Name: "First Steps", Description: "Completed your first lesson", Icon: "footprints"},
	{ID: AchievementStreak7, Type: model.AchievementStreak, Name: "Week of Discovery", Description: "Learned on 7 consecutive days", Icon: "flame"},
	{ID: AchievementCourseComplete, Type: model.AchievementCourse, Name: "Heritage Scholar", Description: "Completed a course", Icon: "scroll"},
	{ID: AchievementTenLessons, Type: model.AchievementMilestone, Name: "Seasoned Explorer", Description: "Completed 10 lessons", Icon: "compass"},
	{ID: AchievementPerfectScore, Type: model.AchievementPerformance, Name: "Flawless", Description: "Scored 100 on a lesson", Icon: "star"},
}

// Evaluation is the state the rules look at after one completion event.
type Evaluation struct {
	Before          model.LearnerStatistics
	After           model.LearnerStatistics
	CourseCompleted bool // the event moved the course to completed
	Lesson          *model.LessonProgress
	Score           *int // score submitted with the event
}

// Rule fires at the moment its threshold is crossed, never on a later update.
type Rule struct {
	AchievementID string
	Fires         func(Evaluation) bool
}

var Rules = []Rule{
	{AchievementFirstLesson, func(e Evaluation) bool {
		return becomes(e.Before.TotalLessonsCompleted, e.After.TotalLessonsCompleted, 1)
	}},
	{AchievementStreak7, func(e Evaluation) bool {
		return becomes(e.Before.CurrentStreak, e.After.CurrentStreak, 7)
	}},
	{AchievementCourseComplete, func(e Evaluation) bool {
		return e.CourseCompleted
	}},
	{AchievementTenLessons, func(e Evaluation) bool {
		return becomes(e.Before.TotalLessonsCompleted, e.After.TotalLessonsCompleted, 10)
	}},
	{AchievementPerfectScore, func(e Evaluation) bool {
		return e.Score != nil && *e.Score == 100
	}},
}

func becomes(before, after, threshold int) bool {
	return before != threshold && after == threshold
}

// Evaluate returns the definitions of achievements whose rule fired and which are not in earned.
func Evaluate(catalog []model.AchievementDefinition, rules []Rule, e Evaluation, earned map[string]bool) []model.AchievementDefinition {
	byID := make(map[string]model.AchievementDefinition, len(catalog))
	for _, d := range catalog {
		byID[d.ID] = d
	}

	seen := make(map[string]bool, len(earned))
	for id, ok := range earned {
		seen[id] = ok
	}

	var unlocked []model.AchievementDefinition
	for _, r := range rules {
		if seen[r.AchievementID] {
			continue
		}
		def, ok := byID[r.AchievementID]
		if !ok {
			continue
		}
		if r.Fires(e) {
			unlocked = append(unlocked, def)
			seen[r.AchievementID] = true
		}
	}
	return unlocked
}
