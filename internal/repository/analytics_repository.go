package repository

import (
	"ethioheritage_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// AnalyticsRepository answers aggregate questions about a course's enrollments.
type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) StatusCounts(courseID uint) (map[model.ProgressStatus]int64, error) {
	var rows []struct {
		Status model.ProgressStatus
		Total  int64
	}
	err := r.DB.Model(&model.CourseProgress{}).
		Select("status, COUNT(*) AS total").
		Where("course_id = ?", courseID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ProgressStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *AnalyticsRepository) AverageProgress(courseID uint) (float64, error) {
	var avg float64
	err := r.DB.Model(&model.CourseProgress{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(AVG(progress_percentage), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *AnalyticsRepository) AverageLessonScore(courseID uint) (float64, error) {
	var avg float64
	err := r.DB.Model(&model.LessonProgress{}).
		Where("course_id = ? AND status = ? AND score IS NOT NULL", courseID, model.StatusCompleted).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *AnalyticsRepository) CertificatesIssued(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).Where("course_id = ? AND is_valid = ?", courseID, true).Count(&count).Error
	return count, err
}

// MonthlyCompletions buckets course completions over the last months months, oldest first.
// Bucketing happens here rather than in SQL so mysql and sqlite agree.
func (r *AnalyticsRepository) MonthlyCompletions(courseID uint, months int, now time.Time) ([]model.MonthlyData, error) {
	if months < 1 {
		months = 1
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	var completedAt []time.Time
	err := r.DB.Model(&model.CourseProgress{}).
		Where("course_id = ? AND status = ? AND completed_at >= ?", courseID, model.StatusCompleted, start).
		Pluck("completed_at", &completedAt).Error
	if err != nil {
		return nil, err
	}

	data := make([]model.MonthlyData, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		data[i] = model.MonthlyData{Month: month}
		index[month] = i
	}
	for _, t := range completedAt {
		if i, ok := index[t.In(now.Location()).Format("2006-01")]; ok {
			data[i].Completions++
		}
	}
	return data, nil
}

func (r *AnalyticsRepository) LessonFunnel(courseID uint) ([]model.LessonFunnel, error) {
	var funnel []model.LessonFunnel
	err := r.DB.Model(&model.LessonProgress{}).
		Select("lesson_id, MIN(position) AS position, "+
			"SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END) AS started, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed",
			model.StatusNotStarted, model.StatusCompleted).
		Where("course_id = ?", courseID).
		Group("lesson_id").
		Order("position ASC").
		Scan(&funnel).Error
	return funnel, err
}
