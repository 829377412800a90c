package controller

import (
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

type RevokeRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// @Summary Issue certificate
// @Description Returns the existing certificate when one was already issued
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Success 201 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/courses/{id}/certificate [post]
func (c *CertificateController) Issue(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cert, created, err := c.CertificateService.Issue(ctx.Request.Context(), user.UserID, user.Name, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, cert)
		return
	}
	util.Success(ctx, cert)
}

// @Summary My certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/certificates [get]
func (c *CertificateController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.CertificateService.ListCertificates(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// @Summary Verify certificate
// @Description Public lookup by verification code. Revoked certificates are reported as not found.
// @Tags certificates
// @Produce json
// @Param code path string true "verification code"
// @Success 200 {object} util.Response{data=model.CertificateVerification}
// @Failure 404 {object} util.Response
// @Router /api/certificates/verify/{code} [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	v, err := c.CertificateService.Verify(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, v)
}

// @Summary Revoke certificate
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param certificateId path string true "certificate id"
// @Param request body RevokeRequest true "reason"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /api/admin/certificates/{certificateId}/revoke [post]
func (c *CertificateController) Revoke(ctx *gin.Context) {
	var req RevokeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cert, err := c.CertificateService.Revoke(ctx.Request.Context(), ctx.Param("certificateId"), req.Reason)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}
