package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/interface/api/rest/dto/share"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type ShareController struct {
	sharingService ports.SharingService
	fileService    ports.FileService
	logger         *zap.Logger
	now            func() time.Time
}

func NewShareController(
	r *gin.Engine,
	sharingService ports.SharingService,
	fileService ports.FileService,
	clock ports.Clock,
	logger *zap.Logger,
	jwtService *jwt.Service,
	terms ports.TermsService,
) *ShareController {
	sc := &ShareController{
		sharingService: sharingService,
		fileService:    fileService,
		logger:         logger,
		now:            clock.Now,
	}

	auth := middleware.AuthMiddleware(jwtService)
	gate := requireTerms(terms, logger)
	r.POST(RouteFolderShares, auth, gate, sc.GrantFolderHandler)
	r.DELETE(RouteFolderShares, auth, gate, sc.RevokeFolderHandler)
	r.POST(RouteFileTokens, auth, gate, sc.IssueTokenHandler)
	r.GET(RouteShare, sc.DownloadSharedHandler)

	return sc
}

func (sc *ShareController) GrantFolderHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	folderID, ok := folderParam(c)
	if !ok {
		return
	}

	var req share.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if errs := validator.ValidateGrant(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	g, err := sc.sharingService.GrantFolder(
		c.Request.Context(), folderID, actor, req.Email, share.ToDomainPermissions(req),
	)
	if err != nil {
		abortWithError(c, sc.logger, "GrantFolder", "failed to share a folder", err)
		return
	}

	c.JSON(http.StatusCreated, share.ToResponseGrant(*g))
}

func (sc *ShareController) RevokeFolderHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	folderID, ok := folderParam(c)
	if !ok {
		return
	}

	var req share.RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if errs := validator.ValidateRevoke(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	if err := sc.sharingService.RevokeFolderGrant(c.Request.Context(), folderID, actor, req.Email); err != nil {
		abortWithError(c, sc.logger, "RevokeFolderGrant", "failed to revoke a share", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (sc *ShareController) IssueTokenHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	fileID, ok := fileParam(c)
	if !ok {
		return
	}

	var req share.TokenRequest
	// empty body means an unbounded link
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body", err.Error())
			return
		}
	}
	if errs := validator.ValidateToken(req, sc.now()); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	s, err := sc.sharingService.IssueFileToken(c.Request.Context(), actor, fileID, share.ToDomainTokenOptions(req))
	if err != nil {
		abortWithError(c, sc.logger, "IssueFileToken", "failed to create a share link", err)
		return
	}

	c.JSON(http.StatusCreated, share.ToResponseToken(*s))
}

// DownloadSharedHandler serves a token link without authentication.
func (sc *ShareController) DownloadSharedHandler(c *gin.Context) {
	token := c.Param("token")
	if !validator.IsShareToken(token) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found or forbidden"})
		return
	}

	meta, content, err := sc.fileService.DownloadShared(c.Request.Context(), token)
	if err != nil {
		abortWithError(c, sc.logger, "DownloadShared", "failed to get a file", err)
		return
	}

	writeContent(c, meta, content)
}
