package controller

import (
	"ethioheritage_backend/internal/progress"
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

type CompleteLessonRequest struct {
	Score     *int `json:"score"`
	TimeSpent int  `json:"timeSpent"` // minutes
}

// @Summary Enroll in course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 201 {object} util.Response{data=model.CourseProgress}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/enroll [post]
func (c *ProgressController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cp, err := c.ProgressService.Enroll(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, cp)
}

// @Summary Leave course
// @Description Drops the course progress; earned achievements and certificates stay
// @Tags progress
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/enroll [delete]
func (c *ProgressController) Unenroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.ProgressService.Unenroll(ctx.Request.Context(), user.UserID, courseID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List enrollments
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CourseProgress}
// @Router /api/progress/courses [get]
func (c *ProgressController) ListEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.ProgressService.ListEnrollments(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary Course progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Failure 404 {object} util.Response
// @Router /api/progress/courses/{id} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cp, err := c.ProgressService.GetCourseProgress(ctx.Request.Context(), user.UserID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, cp)
}

// @Summary Start lesson
// @Description Enrolls implicitly and marks the lesson in progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "lesson id"
// @Success 200 {object} util.Response{data=model.LessonProgress}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/progress/lessons/{lessonId}/start [post]
func (c *ProgressController) StartLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}

	lp, err := c.ProgressService.StartLesson(ctx.Request.Context(), user.UserID, lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lp)
}

// @Summary Complete lesson
// @Description Records the score and time spent, then recomputes course progress, statistics and achievements
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lessonId path int true "lesson id"
// @Param request body CompleteLessonRequest false "score 0-100 and minutes spent"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/progress/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}

	var req CompleteLessonRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), user.UserID, lessonID, progress.Completion{
		Score:     req.Score,
		TimeSpent: req.TimeSpent,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Learner statistics
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.LearnerStatistics}
// @Router /api/progress/statistics [get]
func (c *ProgressController) GetStatistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.ProgressService.GetStatistics(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
