package model

// swagger:model Course
type Course struct {
	BaseModel
	Title        string   `gorm:"size:200;not null" json:"title"`
	Description  string   `gorm:"type:text" json:"description"`
	Category     string   `gorm:"size:50;index" json:"category"` // e.g. history, architecture, manuscripts
	ImageURL     string   `gorm:"size:255" json:"imageUrl"`
	InstructorID uint     `gorm:"index;not null" json:"instructorId"`
	Published    bool     `json:"published"`
	Lessons      []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID        uint   `gorm:"index;not null" json:"courseId"`
	Title           string `gorm:"size:200;not null" json:"title"`
	Content         string `gorm:"type:text" json:"content,omitempty"`
	Position        int    `gorm:"not null" json:"position"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (Lesson) TableName() string {
	return "lessons"
}
