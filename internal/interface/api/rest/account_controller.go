package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"filevault-api/internal/application/ports"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/interface/api/rest/dto/account"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/internal/interface/api/rest/validator"
)

type AccountController struct {
	accountService ports.AccountService
	logger         *zap.Logger
}

func NewAccountController(
	r *gin.Engine,
	accountService ports.AccountService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *AccountController {
	ac := &AccountController{
		accountService: accountService,
		logger:         logger,
	}

	auth := middleware.AuthMiddleware(jwtService)
	r.POST(RouteAccount, auth, ac.ProvisionHandler)
	r.GET(RouteAccount, auth, ac.GetAccountHandler)
	r.POST(RouteAccountDeletion, auth, ac.RequestDeletionHandler)

	return ac
}

// ProvisionHandler registers the token's identity. Repeated calls return the stored account.
func (ac *AccountController) ProvisionHandler(c *gin.Context) {
	id, ok := middleware.Identity(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req account.Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body", err.Error())
			return
		}
	}
	if errs := validator.ValidateAccount(req); errs != nil {
		badRequest(c, "invalid request body", errs)
		return
	}
	if !validator.IsEmail(id.Email) {
		badRequest(c, "token carries no valid email", nil)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = id.Name
	}

	u, err := ac.accountService.ProvisionAccount(c.Request.Context(), id.UserID, id.Email, name)
	if err != nil {
		abortWithError(c, ac.logger, "ProvisionAccount", "failed to provision an account", err)
		return
	}

	c.JSON(http.StatusOK, account.ToResponseAccount(*u))
}

func (ac *AccountController) GetAccountHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	u, err := ac.accountService.FetchAccount(c.Request.Context(), actor)
	if err != nil {
		abortWithError(c, ac.logger, "FetchAccount", "failed to get an account", err)
		return
	}

	c.JSON(http.StatusOK, account.ToResponseAccount(*u))
}

func (ac *AccountController) RequestDeletionHandler(c *gin.Context) {
	actor, ok := middleware.ActorID(c)
	if !ok {
		unauthorized(c)
		return
	}

	if err := ac.accountService.RequestDeletion(c.Request.Context(), actor); err != nil {
		abortWithError(c, ac.logger, "RequestDeletion", "failed to request account deletion", err)
		return
	}

	c.Status(http.StatusAccepted)
}
