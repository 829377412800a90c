package model

import "time"

// Certificate is never hard-deleted; revocation flips IsValid.
// swagger:model Certificate
type Certificate struct {
	UUIDBase
	CertificateID    string     `gorm:"size:32;not null;uniqueIndex" json:"certificateId"`
	VerificationCode string     `gorm:"size:64;not null;uniqueIndex" json:"verificationCode"`
	UserID           uint       `gorm:"not null;index:idx_certificate_user_course" json:"userId"`
	CourseID         uint       `gorm:"not null;index:idx_certificate_user_course" json:"courseId"`
	LearnerName      string     `gorm:"size:100" json:"learnerName"`
	CourseTitle      string     `gorm:"size:200" json:"courseTitle"`
	CompletionDate   time.Time  `gorm:"not null" json:"completionDate"`
	FinalScore       int        `gorm:"not null" json:"finalScore"`
	TimeSpent        int        `gorm:"not null" json:"timeSpent"`
	LessonsCompleted int        `gorm:"not null" json:"lessonsCompleted"`
	TotalLessons     int        `gorm:"not null" json:"totalLessons"`
	IsValid          bool       `gorm:"not null;index" json:"isValid"`
	RevokedAt        *time.Time `json:"revokedAt,omitempty"`
	RevokeReason     string     `gorm:"size:255" json:"revokeReason,omitempty"`
	DocumentURL      string     `gorm:"size:255" json:"documentUrl,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// CertificateVerification is the public projection returned by verification.
type CertificateVerification struct {
	CertificateID    string    `json:"certificateId"`
	LearnerName      string    `json:"learnerName"`
	CourseTitle      string    `json:"courseTitle"`
	CompletionDate   time.Time `json:"completionDate"`
	FinalScore       int       `json:"finalScore"`
	LessonsCompleted int       `json:"lessonsCompleted"`
	TotalLessons     int       `json:"totalLessons"`
	TimeSpent        int       `json:"timeSpent"`
	IsValid          bool      `json:"isValid"`
}

func (c *Certificate) Verification() CertificateVerification {
	return CertificateVerification{
		CertificateID:    c.CertificateID,
		LearnerName:      c.LearnerName,
		CourseTitle:      c.CourseTitle,
		CompletionDate:   c.CompletionDate,
		FinalScore:       c.FinalScore,
		LessonsCompleted: c.LessonsCompleted,
		TotalLessons:     c.TotalLessons,
		TimeSpent:        c.TimeSpent,
		IsValid:          c.IsValid,
	}
}
