package model

import "time"

// LearnerStatistics holds cross-course totals and the daily streak for one learner.
// swagger:model LearnerStatistics
type LearnerStatistics struct {
	ID                    uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID                uint       `gorm:"not null;uniqueIndex" json:"userId"`
	TotalLessonsCompleted int        `gorm:"not null" json:"totalLessonsCompleted"`
	TotalTimeSpent        int        `gorm:"not null" json:"totalTimeSpent"` // minutes
	CurrentStreak         int        `gorm:"not null" json:"currentStreak"`
	LongestStreak         int        `gorm:"not null" json:"longestStreak"`
	LastActivityDate      *time.Time `json:"lastActivityDate,omitempty"`
	AverageScore          int        `gorm:"not null" json:"averageScore"`
	Version               int        `gorm:"not null" json:"-"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func (LearnerStatistics) TableName() string {
	return "learner_statistics"
}

// LearnerTotals is what the progress repository aggregates from lesson records.
type LearnerTotals struct {
	LessonsCompleted int
	TimeSpent        int
	Scores           []int
}
