package repository

import (
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressRepository persists the CourseProgress aggregate and its lesson records.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, lesson_id ASC")
}

func (r *ProgressRepository) FindCourseProgress(userID, courseID uint) (*model.CourseProgress, error) {
	var cp model.CourseProgress
	err := r.DB.Preload("Lessons", orderedLessons).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cp).Error
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.CourseProgress, error) {
	var list []model.CourseProgress
	err := r.DB.Preload("Lessons", orderedLessons).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// Create inserts the aggregate together with its seeded lesson records.
// LearnerIDs lists every learner with at least one enrollment.
func (r *ProgressRepository) LearnerIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.CourseProgress{}).Distinct("user_id").Order("user_id").Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ProgressRepository) Create(cp *model.CourseProgress) error {
	return r.DB.Create(cp).Error
}

func (r *ProgressRepository) SaveLesson(lp *model.LessonProgress) error {
	return r.DB.Save(lp).Error
}

// UpdateVersioned writes the course-level fields of cp only if nobody else has since the
// aggregate was read. On success cp.Version is advanced.
func (r *ProgressRepository) UpdateVersioned(cp *model.CourseProgress) error {
	result := r.DB.Model(&model.CourseProgress{}).
		Where("id = ? AND version = ?", cp.ID, cp.Version).
		Updates(map[string]interface{}{
			"status":              cp.Status,
			"progress_percentage": cp.ProgressPercentage,
			"started_at":          cp.StartedAt,
			"completed_at":        cp.CompletedAt,
			"version":             cp.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrConflict
	}
	cp.Version++
	return nil
}

// Delete removes the aggregate and every lesson record it owns.
func (r *ProgressRepository) Delete(cp *model.CourseProgress) error {
	if err := r.DB.Where("course_progress_id = ?", cp.ID).Delete(&model.LessonProgress{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(&model.CourseProgress{}, cp.ID).Error
}

// LearnerTotals aggregates every lesson record of the learner across enrolled courses.
func (r *ProgressRepository) LearnerTotals(userID uint) (model.LearnerTotals, error) {
	var totals model.LearnerTotals

	var completed int64
	err := r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ? AND status = ?", userID, model.StatusCompleted).
		Count(&completed).Error
	if err != nil {
		return totals, err
	}
	totals.LessonsCompleted = int(completed)

	err = r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(time_spent), 0)").
		Scan(&totals.TimeSpent).Error
	if err != nil {
		return totals, err
	}

	err = r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ? AND status = ? AND score IS NOT NULL", userID, model.StatusCompleted).
		Pluck("score", &totals.Scores).Error
	return totals, err
}
