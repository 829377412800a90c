package service

import (
	"context"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/policy"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/util"
	"math"
	"time"
)

const analyticsMonths = 6

type AnalyticsService struct {
	Repo    *repository.AnalyticsRepository
	Catalog CatalogReader
	Now     func() time.Time
}

func NewAnalyticsService(repo *repository.AnalyticsRepository, catalog CatalogReader) *AnalyticsService {
	return &AnalyticsService{Repo: repo, Catalog: catalog, Now: time.Now}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CourseAnalytics is available to the course's instructor and to admins.
func (s *AnalyticsService) CourseAnalytics(ctx context.Context, subject policy.Subject, courseID uint) (*model.CourseAnalytics, error) {
	course, err := s.Catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !policy.Evaluate(subject, policy.ActionRead, policy.Resource{Kind: policy.ResourceAnalytics, OwnerID: course.InstructorID}) {
		return nil, util.ErrPermissionDenied
	}

	counts, err := s.Repo.StatusCounts(courseID)
	if err != nil {
		return nil, err
	}
	avgProgress, err := s.Repo.AverageProgress(courseID)
	if err != nil {
		return nil, err
	}
	avgScore, err := s.Repo.AverageLessonScore(courseID)
	if err != nil {
		return nil, err
	}
	issued, err := s.Repo.CertificatesIssued(courseID)
	if err != nil {
		return nil, err
	}
	monthly, err := s.Repo.MonthlyCompletions(courseID, analyticsMonths, s.Now())
	if err != nil {
		return nil, err
	}
	funnel, err := s.Repo.LessonFunnel(courseID)
	if err != nil {
		return nil, err
	}

	a := &model.CourseAnalytics{
		CourseID:           courseID,
		NotStarted:         counts[model.StatusNotStarted],
		InProgress:         counts[model.StatusInProgress],
		Completed:          counts[model.StatusCompleted],
		AverageProgress:    round2(avgProgress),
		AverageLessonScore: round2(avgScore),
		CertificatesIssued: issued,
		MonthlyCompletions: monthly,
		Lessons:            funnel,
	}
	a.Enrolled = a.NotStarted + a.InProgress + a.Completed
	if a.Enrolled > 0 {
		a.CompletionRate = round2(100 * float64(a.Completed) / float64(a.Enrolled))
	}
	return a, nil
}
