package controller

import (
	"errors"
	"ethioheritage_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to statuses; anything unknown is logged as a 500.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrProgressNotFound),
		errors.Is(err, util.ErrCertificateNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrNotEligible):
		util.UnprocessableEntity(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidScore), errors.Is(err, util.ErrInvalidTimeSpent):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrConflict), errors.Is(err, util.ErrLockTimeout):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
