package controller

import (
	"ethioheritage_backend/internal/middleware"
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary Course analytics
// @Description Enrollment funnel, scores and monthly completions for the course owner
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.CourseAnalytics}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/analytics [get]
func (c *AnalyticsController) GetCourseAnalytics(ctx *gin.Context) {
	subject := middleware.Subject(ctx)
	if subject == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	report, err := c.AnalyticsService.CourseAnalytics(ctx.Request.Context(), *subject, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
