package repository

import (
	"ethioheritage_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository owns courses and their lessons.
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: tx}
}

type CourseFilter struct {
	Category      string
	PublishedOnly bool
	InstructorID  uint
	Page          int
	Limit         int
}

func (r *CatalogRepository) ListCourses(f CourseFilter) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{})
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if f.InstructorID != 0 {
		query = query.Where("instructor_id = ?", f.InstructorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	var courses []model.Course
	err := query.Order("id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&courses).Error
	return courses, total, err
}

// FindCourseByID loads the course with its lessons in position order.
func (r *CatalogRepository) FindCourseByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CatalogRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CatalogRepository) LessonsOfCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).Order("position ASC, id ASC").Find(&lessons).Error
	return lessons, err
}

func (r *CatalogRepository) CountLessons(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *CatalogRepository) CreateCourse(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CatalogRepository) UpdateCourse(course *model.Course) error {
	return r.DB.Model(course).Select("title", "description", "category", "image_url", "published").Updates(course).Error
}

// DeleteCourse soft-deletes the course and its lessons. Progress records are left alone.
func (r *CatalogRepository) DeleteCourse(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}

// CreateLesson appends the lesson when Position is unset.
func (r *CatalogRepository) CreateLesson(lesson *model.Lesson) error {
	if lesson.Position <= 0 {
		var maxPos int
		err := r.DB.Model(&model.Lesson{}).
			Where("course_id = ?", lesson.CourseID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error
		if err != nil {
			return err
		}
		lesson.Position = maxPos + 1
	}
	return r.DB.Create(lesson).Error
}
