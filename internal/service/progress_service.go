package service

import (
	"context"
	"errors"
	"ethioheritage_backend/internal/config"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/progress"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/events"
	"ethioheritage_backend/pkg/logger"
	"ethioheritage_backend/pkg/monitoring"
	"ethioheritage_backend/pkg/tracing"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressSettings are the hot-reloadable knobs of the progress aggregate.
type ProgressSettings struct {
	Location        *time.Location
	ConflictRetries int
}

func SettingsFromConfig(cfg *config.ProgressConfig) ProgressSettings {
	return ProgressSettings{
		Location:        cfg.Location(),
		ConflictRetries: cfg.ConflictRetries,
	}
}

// CompletionResult is everything a completion changed, for the caller to render.
type CompletionResult struct {
	Lesson          *model.LessonProgress    `json:"lesson"`
	Course          *model.CourseProgress    `json:"course"`
	Statistics      *model.LearnerStatistics `json:"statistics"`
	NewAchievements []model.AchievementView  `json:"newAchievements"`
	CourseCompleted bool                     `json:"courseCompleted"`
}

type ProgressService struct {
	DB           *gorm.DB
	Catalog      CatalogReader
	ProgressRepo *repository.ProgressRepository
	StatsRepo    *repository.StatisticsRepository
	Achievements *AchievementService
	Locker       LearnerLocker
	Notifier     Notifier
	Events       events.Publisher
	Now          func() time.Time
	settings     atomic.Pointer[ProgressSettings]
}

func NewProgressService(
	db *gorm.DB,
	catalog CatalogReader,
	progressRepo *repository.ProgressRepository,
	statsRepo *repository.StatisticsRepository,
	achievements *AchievementService,
	locker LearnerLocker,
	notifier Notifier,
	publisher events.Publisher,
	cfg *config.ProgressConfig,
) *ProgressService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &ProgressService{
		DB:           db,
		Catalog:      catalog,
		ProgressRepo: progressRepo,
		StatsRepo:    statsRepo,
		Achievements: achievements,
		Locker:       locker,
		Notifier:     notifier,
		Events:       publisher,
		Now:          time.Now,
	}
	s.UpdateSettings(SettingsFromConfig(cfg))
	return s
}

func (s *ProgressService) Settings() ProgressSettings {
	return *s.settings.Load()
}

func (s *ProgressService) UpdateSettings(settings ProgressSettings) {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.ConflictRetries < 0 {
		settings.ConflictRetries = 0
	}
	s.settings.Store(&settings)
}

// mutate runs fn in a transaction while holding the learner's lock, retrying version conflicts.
// fn must only touch the database through tx.
func (s *ProgressService) mutate(ctx context.Context, userID uint, fn func(tx *gorm.DB) error) error {
	unlock, err := s.Locker.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	retries := s.Settings().ConflictRetries
	for attempt := 0; ; attempt++ {
		err := s.DB.WithContext(ctx).Transaction(fn)
		if err == nil || !errors.Is(err, util.ErrConflict) {
			return err
		}
		monitoring.ProgressConflicts.Inc()
		if attempt >= retries {
			return err
		}
		logger.Log.Warn("Progress version conflict, retrying",
			zap.Uint("userId", userID),
			zap.Int("attempt", attempt+1),
		)
	}
}

func conflictOnDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrConflict
	}
	return err
}

// enrollTx loads the learner's aggregate for course, creating it with one not_started lesson
// record per catalog lesson when absent.
func (s *ProgressService) enrollTx(tx *gorm.DB, userID uint, course *model.Course, now time.Time) (*model.CourseProgress, bool, error) {
	repo := s.ProgressRepo.WithTx(tx)

	cp, err := repo.FindCourseProgress(userID, course.ID)
	if err == nil {
		return cp, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cp = &model.CourseProgress{
		UserID:     userID,
		CourseID:   course.ID,
		Status:     model.StatusNotStarted,
		EnrolledAt: now,
	}
	for _, lesson := range course.Lessons {
		cp.Lessons = append(cp.Lessons, progress.NewLessonProgress(userID, lesson))
	}
	if err := repo.Create(cp); err != nil {
		return nil, false, conflictOnDuplicate(err)
	}
	if _, err := s.StatsRepo.WithTx(tx).GetOrCreate(userID); err != nil {
		return nil, false, conflictOnDuplicate(err)
	}
	return cp, true, nil
}

func (s *ProgressService) publishedCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.Catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

// Enroll is idempotent: an existing enrollment is returned unchanged.
func (s *ProgressService) Enroll(ctx context.Context, userID, courseID uint) (*model.CourseProgress, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.Enroll")
	defer span.End()

	course, err := s.publishedCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var result *model.CourseProgress
	err = s.mutate(ctx, userID, func(tx *gorm.DB) error {
		cp, created, err := s.enrollTx(tx, userID, course, s.Now())
		if err != nil {
			return err
		}
		if created {
			logger.Log.Info("Learner enrolled", zap.Uint("userId", userID), zap.Uint("courseId", courseID))
		}
		result = cp
		return nil
	})
	return result, err
}

// Unenroll deletes the aggregate and refreshes the learner's totals. Streaks, achievements
// and certificates are kept.
func (s *ProgressService) Unenroll(ctx context.Context, userID, courseID uint) error {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.Unenroll")
	defer span.End()

	return s.mutate(ctx, userID, func(tx *gorm.DB) error {
		repo := s.ProgressRepo.WithTx(tx)
		cp, err := repo.FindCourseProgress(userID, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrProgressNotFound
			}
			return err
		}
		if err := repo.Delete(cp); err != nil {
			return err
		}

		statsRepo := s.StatsRepo.WithTx(tx)
		stats, err := statsRepo.GetOrCreate(userID)
		if err != nil {
			return err
		}
		totals, err := repo.LearnerTotals(userID)
		if err != nil {
			return err
		}
		progress.ApplyTotals(stats, totals)
		return statsRepo.UpdateVersioned(stats)
	})
}

// lessonTx returns the learner's record for lesson inside cp, creating it for lessons
// added to the course after enrollment.
func (s *ProgressService) lessonTx(tx *gorm.DB, cp *model.CourseProgress, lesson *model.Lesson) (*model.LessonProgress, error) {
	if lp := cp.Lesson(lesson.ID); lp != nil {
		return lp, nil
	}
	lp := progress.NewLessonProgress(cp.UserID, *lesson)
	lp.CourseProgressID = cp.ID
	if err := s.ProgressRepo.WithTx(tx).SaveLesson(&lp); err != nil {
		return nil, conflictOnDuplicate(err)
	}
	cp.Lessons = append(cp.Lessons, lp)
	return &cp.Lessons[len(cp.Lessons)-1], nil
}

// lessonContext resolves the lesson and its course before any lock or transaction is taken.
func (s *ProgressService) lessonContext(ctx context.Context, lessonID uint) (*model.Lesson, *model.Course, error) {
	lesson, err := s.Catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.Catalog.GetCourse(ctx, lesson.CourseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			return nil, nil, util.ErrLessonNotFound
		}
		return nil, nil, err
	}
	if !course.Published {
		return nil, nil, util.ErrLessonNotFound
	}
	return lesson, course, nil
}

// StartLesson records an access to lesson, enrolling the learner when needed.
func (s *ProgressService) StartLesson(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.StartLesson")
	defer span.End()
	span.SetAttributes(attribute.Int64("lesson.id", int64(lessonID)))

	lesson, course, err := s.lessonContext(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	total := len(course.Lessons)

	var result model.LessonProgress
	err = s.mutate(ctx, userID, func(tx *gorm.DB) error {
		now := s.Now()
		cp, _, err := s.enrollTx(tx, userID, course, now)
		if err != nil {
			return err
		}
		lp, err := s.lessonTx(tx, cp, lesson)
		if err != nil {
			return err
		}

		progress.StartLesson(lp, now)
		if err := s.ProgressRepo.WithTx(tx).SaveLesson(lp); err != nil {
			return err
		}

		progress.RecomputeCourse(cp, total, now)
		if err := s.ProgressRepo.WithTx(tx).UpdateVersioned(cp); err != nil {
			return err
		}
		result = *lp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CompleteLesson applies a completion and everything that follows from it: course
// percentage and status, learner totals, streak and achievements.
func (s *ProgressService) CompleteLesson(ctx context.Context, userID, lessonID uint, c progress.Completion) (*CompletionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.CompleteLesson")
	defer span.End()
	span.SetAttributes(attribute.Int64("lesson.id", int64(lessonID)))

	if err := c.Validate(); err != nil {
		return nil, err
	}

	lesson, course, err := s.lessonContext(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	total := len(course.Lessons)
	settings := s.Settings()

	var result *CompletionResult
	err = s.mutate(ctx, userID, func(tx *gorm.DB) error {
		now := s.Now()
		progressRepo := s.ProgressRepo.WithTx(tx)
		statsRepo := s.StatsRepo.WithTx(tx)

		cp, _, err := s.enrollTx(tx, userID, course, now)
		if err != nil {
			return err
		}
		lp, err := s.lessonTx(tx, cp, lesson)
		if err != nil {
			return err
		}

		progress.CompleteLesson(lp, c, now)
		if err := progressRepo.SaveLesson(lp); err != nil {
			return err
		}

		courseCompleted := progress.RecomputeCourse(cp, total, now)
		if err := progressRepo.UpdateVersioned(cp); err != nil {
			return err
		}

		stats, err := statsRepo.GetOrCreate(userID)
		if err != nil {
			return conflictOnDuplicate(err)
		}
		before := *stats

		totals, err := progressRepo.LearnerTotals(userID)
		if err != nil {
			return err
		}
		progress.ApplyTotals(stats, totals)
		progress.UpdateStreak(stats, now, settings.Location)
		if err := statsRepo.UpdateVersioned(stats); err != nil {
			return err
		}

		unlocked, err := s.Achievements.Award(tx, userID, progress.Evaluation{
			Before:          before,
			After:           *stats,
			CourseCompleted: courseCompleted,
			Lesson:          lp,
			Score:           c.Score,
		}, now)
		if err != nil {
			return err
		}

		lessonCopy := *lp
		result = &CompletionResult{
			Lesson:          &lessonCopy,
			Course:          cp,
			Statistics:      stats,
			NewAchievements: unlocked,
			CourseCompleted: courseCompleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCompletion(ctx, userID, course, result)
	return result, nil
}

// afterCompletion runs once the transaction has committed; failures here are only logged.
func (s *ProgressService) afterCompletion(ctx context.Context, userID uint, course *model.Course, r *CompletionResult) {
	monitoring.LessonsCompleted.Inc()
	s.publish(ctx, events.Event{
		Type:     events.LessonCompleted,
		UserID:   userID,
		CourseID: course.ID,
		Data: map[string]interface{}{
			"lessonId":  r.Lesson.LessonID,
			"score":     r.Lesson.Score,
			"timeSpent": r.Lesson.TimeSpent,
		},
	})

	if r.CourseCompleted {
		monitoring.CoursesCompleted.Inc()
		data := map[string]interface{}{"courseId": course.ID, "courseTitle": course.Title}
		s.Notifier.PushToUser(userID, WSMessage{Type: NotifyCourseCompleted, Data: data})
		s.publish(ctx, events.Event{Type: events.CourseCompleted, UserID: userID, CourseID: course.ID, Data: data})
		logger.Log.Info("Course completed", zap.Uint("userId", userID), zap.Uint("courseId", course.ID))
	}

	for _, a := range r.NewAchievements {
		monitoring.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
		s.Notifier.PushToUser(userID, WSMessage{Type: NotifyAchievementUnlocked, Data: a})
		s.publish(ctx, events.Event{Type: events.AchievementUnlocked, UserID: userID, CourseID: course.ID, Data: a})
	}
}

func (s *ProgressService) publish(ctx context.Context, event events.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.Now()
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID uint) (*model.CourseProgress, error) {
	cp, err := s.ProgressRepo.FindCourseProgress(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProgressNotFound
		}
		return nil, fmt.Errorf("load course progress: %w", err)
	}
	return cp, nil
}

func (s *ProgressService) ListEnrollments(ctx context.Context, userID uint) ([]model.CourseProgress, error) {
	return s.ProgressRepo.ListByUser(userID)
}

// GetStatistics returns a zero record for learners without any activity.
func (s *ProgressService) GetStatistics(ctx context.Context, userID uint) (*model.LearnerStatistics, error) {
	stats, err := s.StatsRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.LearnerStatistics{UserID: userID}, nil
		}
		return nil, err
	}
	return stats, nil
}

// RecomputeStatistics rebuilds a learner's totals and average from their lesson records.
// The streak is history and is left untouched.
func (s *ProgressService) RecomputeStatistics(ctx context.Context, userID uint) (*model.LearnerStatistics, error) {
	var stats *model.LearnerStatistics
	err := s.mutate(ctx, userID, func(tx *gorm.DB) error {
		statsRepo := s.StatsRepo.WithTx(tx)
		current, err := statsRepo.GetOrCreate(userID)
		if err != nil {
			return conflictOnDuplicate(err)
		}
		totals, err := s.ProgressRepo.WithTx(tx).LearnerTotals(userID)
		if err != nil {
			return err
		}
		progress.ApplyTotals(current, totals)
		if err := statsRepo.UpdateVersioned(current); err != nil {
			return err
		}
		stats = current
		return nil
	})
	return stats, err
}

// ReconcileStatistics recomputes every enrolled learner's totals. Failures are logged and
// counted; the run continues with the next learner.
func (s *ProgressService) ReconcileStatistics(ctx context.Context) (processed, failed int, err error) {
	ids, err := s.ProgressRepo.LearnerIDs()
	if err != nil {
		return 0, 0, fmt.Errorf("list learners: %w", err)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return processed, failed, ctx.Err()
		}
		if _, err := s.RecomputeStatistics(ctx, id); err != nil {
			failed++
			logger.Log.Error("Failed to recompute statistics", zap.Uint("userId", id), zap.Error(err))
			continue
		}
		processed++
	}
	return processed, failed, nil
}
