package model

// UserRole comes from the trusted identity in the access token; accounts live in the auth layer.
type UserRole string

const (
	Learner    UserRole = "learner"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)
