package repository

import (
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/util"

	"gorm.io/gorm"
)

type StatisticsRepository struct {
	DB *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) *StatisticsRepository {
	return &StatisticsRepository{DB: db}
}

func (r *StatisticsRepository) WithTx(tx *gorm.DB) *StatisticsRepository {
	return &StatisticsRepository{DB: tx}
}

func (r *StatisticsRepository) FindByUserID(userID uint) (*model.LearnerStatistics, error) {
	var stats model.LearnerStatistics
	if err := r.DB.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetOrCreate returns the learner's record, inserting an empty one on first use.
func (r *StatisticsRepository) GetOrCreate(userID uint) (*model.LearnerStatistics, error) {
	var stats model.LearnerStatistics
	err := r.DB.Where(model.LearnerStatistics{UserID: userID}).FirstOrCreate(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdateVersioned writes stats if its version is still current and advances it.
func (r *StatisticsRepository) UpdateVersioned(stats *model.LearnerStatistics) error {
	result := r.DB.Model(&model.LearnerStatistics{}).
		Where("id = ? AND version = ?", stats.ID, stats.Version).
		Updates(map[string]interface{}{
			"total_lessons_completed": stats.TotalLessonsCompleted,
			"total_time_spent":        stats.TotalTimeSpent,
			"current_streak":          stats.CurrentStreak,
			"longest_streak":          stats.LongestStreak,
			"last_activity_date":      stats.LastActivityDate,
			"average_score":           stats.AverageScore,
			"version":                 stats.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrConflict
	}
	stats.Version++
	return nil
}
