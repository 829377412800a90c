// Package policy decides who may do what. Every role or ownership check in the API goes through Evaluate.
package policy

import "ethioheritage_backend/internal/model"

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionRevoke Action = "revoke"
)

type ResourceKind string

const (
	ResourceCourse      ResourceKind = "course"
	ResourceAnalytics   ResourceKind = "course_analytics"
	ResourceProgress    ResourceKind = "progress"
	ResourceAchievement ResourceKind = "achievement"
	ResourceCertificate ResourceKind = "certificate"
)

type Subject struct {
	UserID uint
	Role   model.UserRole
}

// Resource describes the target. OwnerID is the learner for progress data and the
// instructor for courses; zero means "not owned by anyone yet" (e.g. a new course).
type Resource struct {
	Kind    ResourceKind
	OwnerID uint
}

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func Evaluate(subject Subject, action Action, resource Resource) Decision {
	if subject.Role == model.Admin {
		return Allow
	}

	switch resource.Kind {
	case ResourceCourse:
		switch action {
		case ActionRead:
			return Allow
		case ActionCreate:
			return Decision(subject.Role == model.Instructor)
		case ActionUpdate, ActionDelete:
			return Decision(subject.Role == model.Instructor && owns(subject, resource))
		}

	case ResourceAnalytics:
		return Decision(action == ActionRead && subject.Role == model.Instructor && owns(subject, resource))

	case ResourceProgress, ResourceAchievement:
		return Decision(owns(subject, resource))

	case ResourceCertificate:
		switch action {
		case ActionRead:
			// public verification reads go through the anonymous projection, not this check
			return Decision(owns(subject, resource))
		case ActionCreate:
			return Decision(owns(subject, resource))
		case ActionRevoke:
			return Deny
		}
	}

	return Deny
}

func owns(subject Subject, resource Resource) bool {
	return subject.UserID != 0 && subject.UserID == resource.OwnerID
}
