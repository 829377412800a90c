package service

import (
	"context"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/policy"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	instructor = policy.Subject{UserID: 100, Role: model.Instructor}
	otherTutor = policy.Subject{UserID: 101, Role: model.Instructor}
	learner    = policy.Subject{UserID: 1, Role: model.Learner}
	admin      = policy.Subject{UserID: 900, Role: model.Admin}
)

func TestCatalogCourseLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course := &model.Course{Title: "Ethiopian Manuscripts", Category: "manuscripts"}
	assert.ErrorIs(t, f.catalog.CreateCourse(ctx, learner, course), util.ErrPermissionDenied)
	require.NoError(t, f.catalog.CreateCourse(ctx, instructor, course))
	assert.Equal(t, uint(100), course.InstructorID)

	// drafts are hidden from learners
	_, err := f.catalog.ViewCourse(ctx, &learner, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = f.catalog.ViewCourse(ctx, &instructor, course.ID)
	require.NoError(t, err)

	lesson := &model.Lesson{Title: "Ge'ez script"}
	assert.ErrorIs(t, f.catalog.AddLesson(ctx, otherTutor, course.ID, lesson), util.ErrPermissionDenied)
	require.NoError(t, f.catalog.AddLesson(ctx, instructor, course.ID, lesson))
	assert.Equal(t, 1, lesson.Position)

	_, err = f.catalog.UpdateCourse(ctx, otherTutor, course.ID, model.Course{Title: "x"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	updated, err := f.catalog.UpdateCourse(ctx, instructor, course.ID, model.Course{Title: "Ethiopian Manuscripts", Published: true})
	require.NoError(t, err)
	assert.True(t, updated.Published)

	viewed, err := f.catalog.ViewCourse(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Len(t, viewed.Lessons, 1)

	count, err := f.catalog.LessonCount(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, f.catalog.DeleteCourse(ctx, otherTutor, course.ID), util.ErrPermissionDenied)
	require.NoError(t, f.catalog.DeleteCourse(ctx, admin, course.ID))
	_, err = f.catalog.GetCourse(ctx, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
	_, err = f.catalog.GetLesson(ctx, lesson.ID)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestCatalogListCoursesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.course(t, "Published", 1)
	require.NoError(t, f.catalog.CreateCourse(ctx, otherTutor, &model.Course{Title: "Someone else's draft"}))
	require.NoError(t, f.catalog.CreateCourse(ctx, instructor, &model.Course{Title: "My draft"}))

	list, total, err := f.catalog.ListCourses(ctx, nil, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Published", list[0].Title)

	_, total, err = f.catalog.ListCourses(ctx, &instructor, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "own courses, drafts included")

	_, total, err = f.catalog.ListCourses(ctx, &admin, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestCatalogCacheInvalidation(t *testing.T) {
	_, rdb := newMiniredis(t)
	f := newFixture(t)
	catalog := NewCatalogService(repository.NewCatalogRepository(f.db), rdb)
	ctx := context.Background()

	course := f.course(t, "Cached", 1)
	first, err := catalog.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, first.Lessons, 1)

	exists, err := rdb.Exists(ctx, courseCacheKey(course.ID)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, exists)

	require.NoError(t, catalog.AddLesson(ctx, instructor, course.ID, &model.Lesson{Title: "Second"}))
	second, err := catalog.GetCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, second.Lessons, 2)
}
