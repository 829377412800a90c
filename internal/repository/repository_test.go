package repository

import (
	"ethioheritage_backend/internal/config"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/database"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: util.DatabaseSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, lessons int) *model.Course {
	t.Helper()
	repo := NewCatalogRepository(db)
	course := &model.Course{Title: "Axum Obelisks", Category: "history", InstructorID: 7, Published: true}
	require.NoError(t, repo.CreateCourse(course))
	for i := 0; i < lessons; i++ {
		require.NoError(t, repo.CreateLesson(&model.Lesson{CourseID: course.ID, Title: "lesson"}))
	}
	loaded, err := repo.FindCourseByID(course.ID)
	require.NoError(t, err)
	return loaded
}

func enroll(t *testing.T, db *gorm.DB, userID uint, course *model.Course) *model.CourseProgress {
	t.Helper()
	cp := &model.CourseProgress{
		UserID:     userID,
		CourseID:   course.ID,
		Status:     model.StatusNotStarted,
		EnrolledAt: time.Now(),
	}
	for _, l := range course.Lessons {
		cp.Lessons = append(cp.Lessons, model.LessonProgress{
			UserID:   userID,
			LessonID: l.ID,
			CourseID: course.ID,
			Position: l.Position,
			Status:   model.StatusNotStarted,
		})
	}
	require.NoError(t, NewProgressRepository(db).Create(cp))
	return cp
}

func intPtr(v int) *int { return &v }

func TestCatalogCreateLessonAppendsPosition(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, 3)

	require.Len(t, course.Lessons, 3)
	for i, l := range course.Lessons {
		assert.Equal(t, i+1, l.Position)
	}

	count, err := NewCatalogRepository(db).CountLessons(course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestCatalogListCoursesFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db)
	require.NoError(t, repo.CreateCourse(&model.Course{Title: "A", Category: "history", Published: true}))
	require.NoError(t, repo.CreateCourse(&model.Course{Title: "B", Category: "history"}))
	require.NoError(t, repo.CreateCourse(&model.Course{Title: "C", Category: "music", Published: true}))

	courses, total, err := repo.ListCourses(CourseFilter{Category: "history", PublishedOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, "A", courses[0].Title)
}

func TestProgressUpdateVersionedDetectsConflict(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, 2)
	cp := enroll(t, db, 1, course)
	repo := NewProgressRepository(db)

	first, err := repo.FindCourseProgress(1, course.ID)
	require.NoError(t, err)
	second, err := repo.FindCourseProgress(1, course.ID)
	require.NoError(t, err)
	require.Len(t, first.Lessons, 2)

	first.ProgressPercentage = 50
	first.Status = model.StatusInProgress
	require.NoError(t, repo.UpdateVersioned(first))
	assert.Equal(t, 1, first.Version)

	second.ProgressPercentage = 100
	assert.ErrorIs(t, repo.UpdateVersioned(second), util.ErrConflict)

	stored, err := repo.FindCourseProgress(1, cp.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.ProgressPercentage)
	assert.Equal(t, model.StatusInProgress, stored.Status)
}

func TestProgressLearnerTotalsAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	c1 := seedCourse(t, db, 2)
	c2 := seedCourse(t, db, 1)
	cp1 := enroll(t, db, 5, c1)
	cp2 := enroll(t, db, 5, c2)
	enroll(t, db, 6, c2)

	cp1.Lessons[0].Status = model.StatusCompleted
	cp1.Lessons[0].Score = intPtr(80)
	cp1.Lessons[0].TimeSpent = 10
	cp1.Lessons[1].Status = model.StatusInProgress
	cp1.Lessons[1].TimeSpent = 4
	cp2.Lessons[0].Status = model.StatusCompleted
	cp2.Lessons[0].TimeSpent = 6
	for _, lp := range []*model.LessonProgress{&cp1.Lessons[0], &cp1.Lessons[1], &cp2.Lessons[0]} {
		require.NoError(t, repo.SaveLesson(lp))
	}

	totals, err := repo.LearnerTotals(5)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.LessonsCompleted)
	assert.Equal(t, 20, totals.TimeSpent)
	assert.Equal(t, []int{80}, totals.Scores)

	ids, err := repo.LearnerIDs()
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 6}, ids)

	require.NoError(t, repo.Delete(cp1))
	_, err = repo.FindCourseProgress(5, c1.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	totals, err = repo.LearnerTotals(5)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.LessonsCompleted)
	assert.Equal(t, 6, totals.TimeSpent)
	assert.Empty(t, totals.Scores)
}

func TestStatisticsGetOrCreateAndVersion(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatisticsRepository(db)

	stats, err := repo.GetOrCreate(9)
	require.NoError(t, err)
	again, err := repo.GetOrCreate(9)
	require.NoError(t, err)
	assert.Equal(t, stats.ID, again.ID)

	stats.CurrentStreak = 2
	stats.LongestStreak = 2
	require.NoError(t, repo.UpdateVersioned(stats))
	again.CurrentStreak = 5
	assert.ErrorIs(t, repo.UpdateVersioned(again), util.ErrConflict)

	stored, err := repo.FindByUserID(9)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentStreak)
	assert.Equal(t, 1, stored.Version)
}

func TestAchievementCreateIfAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewAchievementRepository(db)

	created, err := repo.CreateIfAbsent(&model.EarnedAchievement{
		UserID: 3, AchievementID: "first_lesson", Type: model.AchievementMilestone, EarnedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(&model.EarnedAchievement{
		UserID: 3, AchievementID: "first_lesson", Type: model.AchievementMilestone, EarnedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, created)

	list, err := repo.FindByUserID(3)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	earned, err := repo.EarnedIDs(3)
	require.NoError(t, err)
	assert.True(t, earned["first_lesson"])
}

func TestCertificateLookupAndRevoke(t *testing.T) {
	db := newTestDB(t)
	repo := NewCertificateRepository(db)
	cert := &model.Certificate{
		CertificateID:    "EH360-2026-0a1b2c3d",
		VerificationCode: "CODE",
		UserID:           1,
		CourseID:         2,
		CompletionDate:   time.Now(),
		IsValid:          true,
	}
	require.NoError(t, repo.Create(cert))

	active, err := repo.FindActive(1, 2)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, active.ID)

	exists, err := repo.VerificationCodeExists("CODE")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Revoke(active, "fraud", time.Now()))
	_, err = repo.FindActive(1, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byID, err := repo.FindByCertificateID("EH360-2026-0a1b2c3d")
	require.NoError(t, err)
	assert.False(t, byID.IsValid)
	assert.Equal(t, "fraud", byID.RevokeReason)
}

func TestAnalyticsAggregates(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, 2)
	progressRepo := NewProgressRepository(db)
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	done := enroll(t, db, 1, course)
	for i := range done.Lessons {
		done.Lessons[i].Status = model.StatusCompleted
		done.Lessons[i].Score = intPtr(90)
		require.NoError(t, progressRepo.SaveLesson(&done.Lessons[i]))
	}
	done.Status = model.StatusCompleted
	done.ProgressPercentage = 100
	done.CompletedAt = &now
	require.NoError(t, progressRepo.UpdateVersioned(done))

	half := enroll(t, db, 2, course)
	half.Lessons[0].Status = model.StatusCompleted
	half.Lessons[0].Score = intPtr(70)
	require.NoError(t, progressRepo.SaveLesson(&half.Lessons[0]))
	half.Status = model.StatusInProgress
	half.ProgressPercentage = 50
	require.NoError(t, progressRepo.UpdateVersioned(half))

	enroll(t, db, 3, course)

	repo := NewAnalyticsRepository(db)

	counts, err := repo.StatusCounts(course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[model.StatusCompleted])
	assert.EqualValues(t, 1, counts[model.StatusInProgress])
	assert.EqualValues(t, 1, counts[model.StatusNotStarted])

	avg, err := repo.AverageProgress(course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, avg, 0.01)

	score, err := repo.AverageLessonScore(course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 83.33, score, 0.01)

	monthly, err := repo.MonthlyCompletions(course.ID, 3, now)
	require.NoError(t, err)
	require.Len(t, monthly, 3)
	assert.Equal(t, "2026-03", monthly[0].Month)
	assert.Equal(t, "2026-05", monthly[2].Month)
	assert.Equal(t, 1, monthly[2].Completions)

	funnel, err := repo.LessonFunnel(course.ID)
	require.NoError(t, err)
	require.Len(t, funnel, 2)
	assert.EqualValues(t, 2, funnel[0].Completed)
	assert.EqualValues(t, 1, funnel[1].Completed)
}
