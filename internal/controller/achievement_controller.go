package controller

import (
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary Earned achievements
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.AchievementView}
// @Router /api/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.ListAchievements(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// @Summary Achievement catalog
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.AchievementDefinition}
// @Router /api/achievements/catalog [get]
func (c *AchievementController) GetCatalog(ctx *gin.Context) {
	util.Success(ctx, c.AchievementService.ListCatalog())
}
