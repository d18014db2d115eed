package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/interface/api/rest/dto/backup"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type BackupController struct {
	backupService ports.BackupService
	logger        *zap.Logger
}

func NewBackupController(
	r *gin.Engine,
	backupService ports.BackupService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	terms ports.TermsService,
) *BackupController {
	bc := &BackupController{
		backupService: backupService,
		logger:        logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	gate := requireTerms(terms, logger)
	r.POST(RouteBackups, auth, gate, bc.TriggerBackupHandler)
	r.GET(RouteBackups, auth, gate, bc.ListBackupsHandler)
	r.GET(RouteBackup, auth, gate, bc.GetBackupHandler)
	r.DELETE(RouteBackup, auth, gate, bc.DeleteBackupHandler)

	return bc
}

// TriggerBackupHandler answers 500 with the failed record when the run itself failed.
func (bc *BackupController) TriggerBackupHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	b, err := bc.backupService.TriggerBackup(c.Request.Context(), actor)
	if err != nil {
		if b == nil {
			abortWithError(c, bc.logger, "TriggerBackup", "failed to create a backup", err)
			return
		}
		bc.logger.Error("TriggerBackup() error", zap.Error(err), zap.String("backup_id", b.UUID.String()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":  "failed to create a backup",
			"backup": backup.ToResponseBackup(*b),
		})
		return
	}

	c.JSON(http.StatusCreated, backup.ToResponseBackup(*b))
}

func (bc *BackupController) ListBackupsHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	bs, err := bc.backupService.ListBackups(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, bc.logger, "ListBackups", "failed to list backups", err)
		return
	}

	c.JSON(http.StatusOK, backup.ToResponseList(bs))
}

func (bc *BackupController) GetBackupHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	backupID, ok := backupParam(c)
	if !ok {
		return
	}

	b, err := bc.backupService.GetBackup(c.Request.Context(), actor, backupID)
	if err != nil {
		abortWithError(c, bc.logger, "GetBackup", "failed to get a backup", err)
		return
	}

	c.JSON(http.StatusOK, backup.ToResponseBackup(*b))
}

func (bc *BackupController) DeleteBackupHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	backupID, ok := backupParam(c)
	if !ok {
		return
	}

	if err := bc.backupService.DeleteBackup(c.Request.Context(), actor, backupID); err != nil {
		abortWithError(c, bc.logger, "DeleteBackup", "failed to delete a backup", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func backupParam(c *gin.Context) (uuid.UUID, bool) {
	ok, id := validator.IsUUID(c.Param("backup_id"))
	if !ok {
		badRequest(c, "backup_id must be a valid UUID", nil)
	}
	return id, ok
}
