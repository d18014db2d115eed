package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/interface/api/rest/dto/folder"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type FolderController struct {
	folderService  ports.FolderService
	sharingService ports.SharingService
	logger         *zap.Logger
}

func NewFolderController(
	r *gin.Engine,
	folderService ports.FolderService,
	sharingService ports.SharingService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	terms ports.TermsService,
) *FolderController {
	fc := &FolderController{
		folderService:  folderService,
		sharingService: sharingService,
		logger:         logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	gate := requireTerms(terms, logger)
	r.GET(RouteFolders, auth, gate, fc.ListRootHandler)
	r.POST(RouteFolders, auth, gate, fc.CreateFolderHandler)
	r.GET(RouteSharedFolders, auth, gate, fc.SharedWithMeHandler)
	r.GET(RouteFolder, auth, gate, fc.ListFolderHandler)
	r.PATCH(RouteFolder, auth, gate, fc.UpdateFolderHandler)
	r.DELETE(RouteFolder, auth, gate, fc.DeleteFolderHandler)

	return fc
}

func (fc *FolderController) ListRootHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	content, err := fc.folderService.ListFolder(c.Request.Context(), actor, nil)
	if err != nil {
		abortWithError(c, fc.logger, "ListFolder", "failed to list folders", err)
		return
	}

	c.JSON(http.StatusOK, folder.ToResponseContent(*content))
}

func (fc *FolderController) ListFolderHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	folderID, ok := folderParam(c)
	if !ok {
		return
	}

	content, err := fc.folderService.ListFolder(c.Request.Context(), actor, &folderID)
	if err != nil {
		abortWithError(c, fc.logger, "ListFolder", "failed to list folder", err)
		return
	}

	c.JSON(http.StatusOK, folder.ToResponseContent(*content))
}

func (fc *FolderController) CreateFolderHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req folder.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if errs := validator.ValidateCreateFolder(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	f, err := fc.folderService.CreateFolder(c.Request.Context(), actor, req.ParentID, req.Name)
	if err != nil {
		abortWithError(c, fc.logger, "CreateFolder", "failed to create a folder", err)
		return
	}

	c.JSON(http.StatusCreated, folder.ToResponseFolder(*f))
}

func (fc *FolderController) UpdateFolderHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	folderID, ok := folderParam(c)
	if !ok {
		return
	}

	var req folder.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if errs := validator.ValidateUpdateFolder(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	f, err := fc.folderService.RenameOrMove(c.Request.Context(), actor, folderID, folder.ToDomainPlacement(req))
	if err != nil {
		abortWithError(c, fc.logger, "RenameOrMove", "failed to update a folder", err)
		return
	}

	c.JSON(http.StatusOK, folder.ToResponseFolder(*f))
}

func (fc *FolderController) DeleteFolderHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	folderID, ok := folderParam(c)
	if !ok {
		return
	}

	if err := fc.folderService.DeleteFolder(c.Request.Context(), actor, folderID); err != nil {
		abortWithError(c, fc.logger, "DeleteFolder", "failed to delete a folder", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (fc *FolderController) SharedWithMeHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	folders, err := fc.sharingService.SharedWithMe(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, fc.logger, "SharedWithMe", "failed to get shared folders", err)
		return
	}

	c.JSON(http.StatusOK, folder.ResponseData{
		Data: folder.ToResponseFolders(folders),
	})
}

func folderParam(c *gin.Context) (uuid.UUID, bool) {
	ok, id := validator.IsUUID(c.Param("folder_id"))
	if !ok {
		badRequest(c, "folder_id must be a valid UUID", nil)
	}
	return id, ok
}
