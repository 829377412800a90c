package controller

import (
	"ethioheritage_backend/internal/middleware"
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService *service.CatalogService
}

func NewCourseController(catalogService *service.CatalogService) *CourseController {
	return &CourseController{CatalogService: catalogService}
}

type LessonRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"durationMinutes" binding:"min=0"`
}

type CourseRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description"`
	Category    string          `json:"category" binding:"max=50"`
	ImageURL    string          `json:"imageUrl" binding:"max=255"`
	Published   bool            `json:"published"`
	Lessons     []LessonRequest `json:"lessons" binding:"dive"`
}

func (r CourseRequest) toModel() model.Course {
	course := model.Course{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Published:   r.Published,
	}
	for _, l := range r.Lessons {
		course.Lessons = append(course.Lessons, model.Lesson{
			Title:           l.Title,
			Content:         l.Content,
			DurationMinutes: l.DurationMinutes,
		})
	}
	return course
}

// @Summary List courses
// @Description Published courses; instructors also see their drafts
// @Tags courses
// @Produce json
// @Param category query string false "category filter"
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.CatalogService.ListCourses(ctx.Request.Context(), middleware.Subject(ctx), ctx.Query("category"), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CatalogService.ViewCourse(ctx.Request.Context(), middleware.Subject(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CourseRequest true "course"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	subject := middleware.Subject(ctx)
	if subject == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course := req.toModel()
	if err := c.CatalogService.CreateCourse(ctx.Request.Context(), *subject, &course); err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param request body CourseRequest true "course"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	subject := middleware.Subject(ctx)
	if subject == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CatalogService.UpdateCourse(ctx.Request.Context(), *subject, id, req.toModel())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary Delete course
// @Tags courses
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	subject := middleware.Subject(ctx)
	if subject == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CatalogService.DeleteCourse(ctx.Request.Context(), *subject, id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Add lesson
// @Description Appends a lesson to the course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Param request body LessonRequest true "lesson"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/courses/{id}/lessons [post]
func (c *CourseController) AddLesson(ctx *gin.Context) {
	subject := middleware.Subject(ctx)
	if subject == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson := model.Lesson{Title: req.Title, Content: req.Content, DurationMinutes: req.DurationMinutes}
	if err := c.CatalogService.AddLesson(ctx.Request.Context(), *subject, id, &lesson); err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}
