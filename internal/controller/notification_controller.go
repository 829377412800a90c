package controller

import (
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Hub *service.NotificationHub
}

func NewNotificationController(hub *service.NotificationHub) *NotificationController {
	return &NotificationController{Hub: hub}
}

// @Summary Progress notifications
// @Description Websocket stream of achievement, course and certificate notifications. Browsers pass the token as a query parameter.
// @Tags notifications
// @Security BearerAuth
// @Param token query string false "access token"
// @Router /api/ws [get]
func (c *NotificationController) Connect(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, user.UserID)
}
