package model

// CourseAnalytics summarises enrollments of one course.
type CourseAnalytics struct {
	CourseID           uint           `json:"courseId"`
	Enrolled           int64          `json:"enrolled"`
	NotStarted         int64          `json:"notStarted"`
	InProgress         int64          `json:"inProgress"`
	Completed          int64          `json:"completed"`
	AverageProgress    float64        `json:"averageProgress"`
	CompletionRate     float64        `json:"completionRate"` // percent of enrolled learners who completed
	AverageLessonScore float64        `json:"averageLessonScore"`
	CertificatesIssued int64          `json:"certificatesIssued"`
	MonthlyCompletions []MonthlyData  `json:"monthlyCompletions"`
	Lessons            []LessonFunnel `json:"lessons"`
}

// MonthlyData counts course completions per month.
type MonthlyData struct {
	Month       string `json:"month"`
	Completions int    `json:"completions"`
}

// LessonFunnel is the completion count of a single lesson within a course.
type LessonFunnel struct {
	LessonID  uint  `json:"lessonId"`
	Position  int   `json:"position"`
	Started   int64 `json:"started"`
	Completed int64 `json:"completed"`
}
