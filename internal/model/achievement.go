package model

import (
	"time"

	"gorm.io/datatypes"
)

type AchievementType string

const (
	AchievementMilestone   AchievementType = "milestone"
	AchievementStreak      AchievementType = "streak"
	AchievementCourse      AchievementType = "course"
	AchievementPerformance AchievementType = "performance"
)

// AchievementDefinition is a static catalog entry.
type AchievementDefinition struct {
	ID          string          `json:"id"`
	Type        AchievementType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
}

// EarnedAchievement is immutable once created; one per (user, achievement).
// swagger:model EarnedAchievement
type EarnedAchievement struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID        uint            `gorm:"not null;uniqueIndex:idx_user_achievement" json:"userId"`
	AchievementID string          `gorm:"size:64;not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	Type          AchievementType `gorm:"size:20;not null" json:"type"`
	EarnedAt      time.Time       `gorm:"not null" json:"earnedAt"`
	Context       datatypes.JSON  `json:"context,omitempty"`
	CreatedAt     time.Time       `json:"-"`
}

func (EarnedAchievement) TableName() string {
	return "user_achievements"
}

// AchievementView joins an earned instance with its catalog entry.
type AchievementView struct {
	AchievementDefinition
	EarnedAt time.Time `json:"earnedAt"`
}
