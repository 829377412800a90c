package model

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// CourseProgress is the learner's enrollment in a course and owns one LessonProgress per lesson.
// swagger:model CourseProgress
type CourseProgress struct {
	ID                 uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uint             `gorm:"not null;uniqueIndex:idx_user_course" json:"userId"`
	CourseID           uint             `gorm:"not null;uniqueIndex:idx_user_course;index" json:"courseId"`
	Status             ProgressStatus   `gorm:"size:20;not null" json:"status"`
	ProgressPercentage int              `gorm:"not null" json:"progressPercentage"`
	EnrolledAt         time.Time        `gorm:"not null" json:"enrolledAt"`
	StartedAt          *time.Time       `json:"startedAt,omitempty"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	Version            int              `gorm:"not null" json:"version"`
	Lessons            []LessonProgress `gorm:"foreignKey:CourseProgressID;constraint:OnDelete:CASCADE" json:"lessons"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

func (CourseProgress) TableName() string {
	return "course_progresses"
}

// Lesson returns the record for lessonID, or nil.
func (p *CourseProgress) Lesson(lessonID uint) *LessonProgress {
	for i := range p.Lessons {
		if p.Lessons[i].LessonID == lessonID {
			return &p.Lessons[i]
		}
	}
	return nil
}

// CompletedLessons counts lesson records with status completed.
func (p *CourseProgress) CompletedLessons() int {
	n := 0
	for _, l := range p.Lessons {
		if l.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// swagger:model LessonProgress
type LessonProgress struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseProgressID uint           `gorm:"index;not null" json:"-"`
	UserID           uint           `gorm:"not null;uniqueIndex:idx_user_lesson" json:"userId"`
	LessonID         uint           `gorm:"not null;uniqueIndex:idx_user_lesson" json:"lessonId"`
	CourseID         uint           `gorm:"index;not null" json:"courseId"`
	Position         int            `gorm:"not null" json:"position"`
	Status           ProgressStatus `gorm:"size:20;not null" json:"status"`
	TimeSpent        int            `gorm:"not null" json:"timeSpent"` // minutes
	Score            *int           `json:"score,omitempty"`
	Attempts         int            `gorm:"not null" json:"attempts"`
	StartedAt        *time.Time     `json:"startedAt,omitempty"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	LastAccessedAt   *time.Time     `json:"lastAccessedAt,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progresses"
}
