package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/interface/api/rest/dto/terms"
	"filevault-api/internal/interface/api/rest/middleware"
)

// TermsController is reachable before the terms are accepted.
type TermsController struct {
	termsService ports.TermsService
	logger       *zap.Logger
}

func NewTermsController(
	r *gin.Engine,
	termsService ports.TermsService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *TermsController {
	tc := &TermsController{
		termsService: termsService,
		logger:       logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.GET(RouteTerms, auth, tc.CurrentTermsHandler)
	r.POST(RouteTerms, auth, tc.RespondHandler)
	r.GET(RouteTermsStatus, auth, tc.StatusHandler)

	return tc
}

func (tc *TermsController) CurrentTermsHandler(c *gin.Context) {
	p, err := tc.termsService.CurrentTerms(c.Request.Context())
	if err != nil {
		abortWithError(c, tc.logger, "CurrentTerms", "failed to get the terms of use", err)
		return
	}

	c.JSON(http.StatusOK, terms.ToResponseTerms(*p))
}

func (tc *TermsController) StatusHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	st, err := tc.termsService.TermsStatus(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, tc.logger, "TermsStatus", "failed to get the terms status", err)
		return
	}

	c.JSON(http.StatusOK, terms.ToResponseStatus(*st))
}

// RespondHandler records acceptance; "accepted": false requests deletion of the account.
func (tc *TermsController) RespondHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req terms.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if req.Accepted == nil {
		badRequest(c, "invalid request body", map[string]string{"accepted": "accepted is required"})
		return
	}

	st, err := tc.termsService.RespondToTerms(c.Request.Context(), actor, *req.Accepted)
	if err != nil {
		abortWithError(c, tc.logger, "RespondToTerms", "failed to record the terms response", err)
		return
	}

	c.JSON(http.StatusOK, terms.ToResponseStatus(*st))
}
