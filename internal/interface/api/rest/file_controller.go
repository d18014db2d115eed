package rest

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	domain "filevault-api/internal/domain/file"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/interface/api/rest/dto/file"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

// multipart framing allowance on top of the payload limit
const formOverhead = int64(1 << 20)

type FileController struct {
	uploadService ports.UploadService
	fileService   ports.FileService
	logger        *zap.Logger
	maxSize       int64
}

func NewFileController(
	r *gin.Engine,
	uploadService ports.UploadService,
	fileService ports.FileService,
	logger *zap.Logger,
	jwtService *jwt.Service,
	terms ports.TermsService,
	maxUploadBytes uint64,
) *FileController {
	fc := &FileController{
		uploadService: uploadService,
		fileService:   fileService,
		logger:        logger,
		maxSize:       int64(maxUploadBytes),
	}

	auth := middleware.AuthMiddleware(jwtService)
	gate := requireTerms(terms, logger)
	r.POST(RouteFiles, auth, gate, fc.UploadFileHandler)
	r.GET(RouteFileContent, auth, gate, fc.DownloadFileHandler)
	r.PATCH(RouteFileVisibility, auth, gate, fc.SetVisibilityHandler)
	r.PATCH(RouteFile, auth, gate, fc.RenameFileHandler)
	r.DELETE(RouteFile, auth, gate, fc.DeleteFileHandler)

	return fc
}

func (fc *FileController) UploadFileHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.maxSize+formOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required", nil)
		return
	}
	if fh.Size > fc.maxSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file too large, limit is " + humanize.IBytes(uint64(fc.maxSize)),
		})
		return
	}

	var folderID *uuid.UUID
	if raw := c.PostForm("folder_id"); raw != "" {
		ok, id := validator.IsUUID(raw)
		if !ok {
			badRequest(c, "folder_id must be a valid UUID", nil)
			return
		}
		folderID = &id
	}
	public := false
	if raw := c.PostForm("public"); raw != "" {
		if public, err = strconv.ParseBool(raw); err != nil {
			badRequest(c, "public must be a boolean", nil)
			return
		}
	}

	src, err := fh.Open()
	if err != nil {
		badRequest(c, "cannot read uploaded file", nil)
		return
	}
	defer src.Close()

	f, err := fc.uploadService.UploadFile(c.Request.Context(), actor, domain.Upload{
		FolderID: folderID,
		Name:     fh.Filename,
		Size:     fh.Size,
		Public:   public,
		Content:  src,
	})
	if err != nil {
		abortWithError(c, fc.logger, "UploadFile", "failed to upload a file", err)
		return
	}

	c.JSON(http.StatusCreated, file.ToResponseFile(*f))
}

func (fc *FileController) DownloadFileHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	fileID, ok := fileParam(c)
	if !ok {
		return
	}

	meta, content, err := fc.fileService.DownloadFile(c.Request.Context(), actor, fileID)
	if err != nil {
		abortWithError(c, fc.logger, "DownloadFile", "failed to get a file", err)
		return
	}

	writeContent(c, meta, content)
}

func (fc *FileController) SetVisibilityHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	fileID, ok := fileParam(c)
	if !ok {
		return
	}

	var req file.VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if req.Public == nil {
		badRequest(c, "invalid request body", map[string]string{"public": "public is required"})
		return
	}

	f, err := fc.fileService.SetVisibility(c.Request.Context(), actor, fileID, *req.Public)
	if err != nil {
		abortWithError(c, fc.logger, "SetVisibility", "failed to update a file", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseFile(*f))
}

func (fc *FileController) RenameFileHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	fileID, ok := fileParam(c)
	if !ok {
		return
	}

	var req file.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err.Error())
		return
	}
	if errs := validator.ValidateRenameFile(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}

	f, err := fc.fileService.RenameFile(c.Request.Context(), actor, fileID, req.Name, req.KeepExtension)
	if err != nil {
		abortWithError(c, fc.logger, "RenameFile", "failed to rename a file", err)
		return
	}

	c.JSON(http.StatusOK, file.ToResponseFile(*f))
}

func (fc *FileController) DeleteFileHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}
	fileID, ok := fileParam(c)
	if !ok {
		return
	}

	if err := fc.fileService.DeleteFile(c.Request.Context(), actor, fileID); err != nil {
		abortWithError(c, fc.logger, "DeleteFile", "failed to delete a file", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func fileParam(c *gin.Context) (uuid.UUID, bool) {
	ok, id := validator.IsUUID(c.Param("file_id"))
	if !ok {
		badRequest(c, "file_id must be a valid UUID", nil)
	}
	return id, ok
}

func writeContent(c *gin.Context, meta *domain.File, content []byte) {
	ct := meta.MimeType
	if ct == "" {
		ct = domain.DefaultMimeType
	}
	c.Header("Content-Disposition", contentDisposition(meta.Name))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("ETag", strconv.Quote(meta.Hash))
	c.Data(http.StatusOK, ct, content)
}

// contentDisposition carries an ASCII filename for old clients and, when the name needs it,
// the UTF-8 filename* form as well.
func contentDisposition(name string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": domain.ASCIIName(name)})
	if domain.IsASCIIName(name) {
		return v
	}
	// FormatMediaType switches to filename* only for non-ASCII values
	ext := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if !strings.Contains(ext, "filename*=") {
		return v
	}
	return v + strings.TrimPrefix(ext, "attachment")
}
