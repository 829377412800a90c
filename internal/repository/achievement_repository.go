package repository

import (
	"ethioheritage_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: tx}
}

func (r *AchievementRepository) FindByUserID(userID uint) ([]model.EarnedAchievement, error) {
	var achievements []model.EarnedAchievement
	err := r.DB.Where("user_id = ?", userID).Order("earned_at ASC, id ASC").Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

// EarnedIDs returns the set of achievement ids the learner holds.
func (r *AchievementRepository) EarnedIDs(userID uint) (map[string]bool, error) {
	var ids []string
	err := r.DB.Model(&model.EarnedAchievement{}).Where("user_id = ?", userID).Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

// CreateIfAbsent inserts a unless the learner already holds that achievement.
// It reports whether a row was written.
func (r *AchievementRepository) CreateIfAbsent(a *model.EarnedAchievement) (bool, error) {
	result := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(a)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
