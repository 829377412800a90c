package service

import (
	"context"
	"encoding/json"
	"errors"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/policy"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogReader is the read-only view of courses and lessons the progress side depends on.
type CatalogReader interface {
	GetCourse(ctx context.Context, courseID uint) (*model.Course, error)
	GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error)
	LessonCount(ctx context.Context, courseID uint) (int, error)
}

const courseCacheTTL = 5 * time.Minute

type CatalogService struct {
	Repo  *repository.CatalogRepository
	Redis *redis.Client
}

func NewCatalogService(repo *repository.CatalogRepository, rdb *redis.Client) *CatalogService {
	return &CatalogService{Repo: repo, Redis: rdb}
}

func courseCacheKey(courseID uint) string {
	return fmt.Sprintf("catalog:course:%d", courseID)
}

// GetCourse returns the course with its lessons in position order.
func (s *CatalogService) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	if s.Redis != nil {
		if data, err := s.Redis.Get(ctx, courseCacheKey(courseID)).Bytes(); err == nil {
			var course model.Course
			if json.Unmarshal(data, &course) == nil {
				return &course, nil
			}
		}
	}

	course, err := s.Repo.FindCourseByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, fmt.Errorf("load course %d: %w", courseID, err)
	}

	if s.Redis != nil {
		if data, err := json.Marshal(course); err == nil {
			if err := s.Redis.Set(ctx, courseCacheKey(courseID), data, courseCacheTTL).Err(); err != nil {
				logger.Log.Warn("Failed to cache course", zap.Uint("courseId", courseID), zap.Error(err))
			}
		}
	}
	return course, nil
}

func (s *CatalogService) GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.Repo.FindLessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, fmt.Errorf("load lesson %d: %w", lessonID, err)
	}
	return lesson, nil
}

func (s *CatalogService) LessonCount(ctx context.Context, courseID uint) (int, error) {
	count, err := s.Repo.CountLessons(courseID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *CatalogService) invalidate(ctx context.Context, courseID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, courseCacheKey(courseID)).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate course cache", zap.Uint("courseId", courseID), zap.Error(err))
	}
}

// ListCourses shows drafts only to instructors and admins.
func (s *CatalogService) ListCourses(ctx context.Context, subject *policy.Subject, category string, page, limit int) ([]model.Course, int64, error) {
	filter := repository.CourseFilter{
		Category:      category,
		PublishedOnly: true,
		Page:          page,
		Limit:         limit,
	}
	if subject != nil {
		switch subject.Role {
		case model.Admin:
			filter.PublishedOnly = false
		case model.Instructor:
			filter.PublishedOnly = false
			filter.InstructorID = subject.UserID
		}
	}
	return s.Repo.ListCourses(filter)
}

// ViewCourse hides unpublished courses from everyone but their owner and admins.
func (s *CatalogService) ViewCourse(ctx context.Context, subject *policy.Subject, courseID uint) (*model.Course, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Published {
		return course, nil
	}
	if subject != nil && policy.Evaluate(*subject, policy.ActionUpdate, policy.Resource{Kind: policy.ResourceCourse, OwnerID: course.InstructorID}) {
		return course, nil
	}
	return nil, util.ErrCourseNotFound
}

func (s *CatalogService) CreateCourse(ctx context.Context, subject policy.Subject, course *model.Course) error {
	if !policy.Evaluate(subject, policy.ActionCreate, policy.Resource{Kind: policy.ResourceCourse}) {
		return util.ErrPermissionDenied
	}
	course.ID = 0
	course.InstructorID = subject.UserID
	for i := range course.Lessons {
		course.Lessons[i].Position = i + 1
	}
	return s.Repo.CreateCourse(course)
}

func (s *CatalogService) authorizeOwner(ctx context.Context, subject policy.Subject, action policy.Action, courseID uint) (*model.Course, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !policy.Evaluate(subject, action, policy.Resource{Kind: policy.ResourceCourse, OwnerID: course.InstructorID}) {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, subject policy.Subject, courseID uint, changes model.Course) (*model.Course, error) {
	course, err := s.authorizeOwner(ctx, subject, policy.ActionUpdate, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = changes.Title
	course.Description = changes.Description
	course.Category = changes.Category
	course.ImageURL = changes.ImageURL
	course.Published = changes.Published
	if err := s.Repo.UpdateCourse(course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, subject policy.Subject, courseID uint) error {
	if _, err := s.authorizeOwner(ctx, subject, policy.ActionDelete, courseID); err != nil {
		return err
	}
	if err := s.Repo.DeleteCourse(courseID); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}

// AddLesson appends a lesson. Existing enrollments pick it up lazily, which lowers their percentage.
func (s *CatalogService) AddLesson(ctx context.Context, subject policy.Subject, courseID uint, lesson *model.Lesson) error {
	if _, err := s.authorizeOwner(ctx, subject, policy.ActionUpdate, courseID); err != nil {
		return err
	}
	lesson.ID = 0
	lesson.CourseID = courseID
	if err := s.Repo.CreateLesson(lesson); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}
