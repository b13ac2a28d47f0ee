// Package handlers translates HTTP requests into account lifecycle operations.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"account-core/internal/goerrors"
	"account-core/internal/middleware"
	"account-core/internal/schemas"
	"account-core/internal/services"
	"account-core/internal/utils"
)

type AccountHdl interface {
	Login(c *gin.Context)
	Register(c *gin.Context)
	Activate(c *gin.Context)
	GetAccount(c *gin.Context)
	UpdateAccount(c *gin.Context)
	ChangePassword(c *gin.Context)
	DeleteAccount(c *gin.Context)
	RequestPasswordReset(c *gin.Context)
	ResetPassword(c *gin.Context)
	VerifySession(c *gin.Context)
	VerifyAdminSession(c *gin.Context)
	ListAccounts(c *gin.Context)
	GetAccountByID(c *gin.Context)
	UpdateAccountByID(c *gin.Context)
	DeleteAccountByID(c *gin.Context)
	GrantAdmin(c *gin.Context)
	RevokeAdmin(c *gin.Context)
	ListAuthorities(c *gin.Context)
}

type AccountHandler struct {
	AccountService services.AccountSvc
	Validator      *utils.Validator
}

func NewAccountHandler(accountService services.AccountSvc) AccountHdl {
	return &AccountHandler{
		AccountService: accountService,
		Validator:      utils.GetValidator(),
	}
}

// Login exchanges email and password for a session token.
func (handler *AccountHandler) Login(c *gin.Context) {
	loginRequest := middleware.SanitizedPayload[schemas.LoginRequest](c)

	token, err := handler.AccountService.Login(c.Request.Context(), loginRequest.Email, loginRequest.Password)
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, token, http.StatusOK)
}

// Register creates a pending account. The activation link is mailed in the background.
func (handler *AccountHandler) Register(c *gin.Context) {
	registrationRequest := middleware.SanitizedPayload[schemas.RegistrationRequest](c)

	if !handler.Validator.VerifyEmail(registrationRequest.Email) {
		utils.WriteAndLogError(c, goerrors.EmailUnreachable, http.StatusUnprocessableEntity, errors.New("email unreachable"))
		return
	}

	pending, err := handler.AccountService.Register(c.Request.Context(), registrationRequest)
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, pending, http.StatusCreated)
}

func (handler *AccountHandler) Activate(c *gin.Context) {
	activationRequest := middleware.SanitizedPayload[schemas.ActivationRequest](c)

	account, err := handler.AccountService.Activate(c.Request.Context(), activationRequest.ActivationKey)
	if err != nil {
		writeKeyError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, account, http.StatusOK)
}

func (handler *AccountHandler) GetAccount(c *gin.Context) {
	account, err := handler.AccountService.GetAccount(c.Request.Context(), sessionToken(c))
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, account, http.StatusOK)
}

func (handler *AccountHandler) UpdateAccount(c *gin.Context) {
	updateRequest := middleware.SanitizedPayload[schemas.UpdateProfileRequest](c)

	account, err := handler.AccountService.UpdateProfile(c.Request.Context(), sessionToken(c), updateRequest.ProfileFields())
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, account, http.StatusOK)
}

func (handler *AccountHandler) ChangePassword(c *gin.Context) {
	changePasswordRequest := middleware.SanitizedPayload[schemas.ChangePasswordRequest](c)

	if err := handler.AccountService.UpdatePassword(c.Request.Context(), sessionToken(c), changePasswordRequest.Password); err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Password changed"}, http.StatusOK)
}

// DeleteAccount removes the account of the session. The id in the path must be its own.
func (handler *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	removed, err := handler.AccountService.RemoveOwnAccount(c.Request.Context(), sessionToken(c), id)
	writeRemoval(c, removed, err)
}

func (handler *AccountHandler) RequestPasswordReset(c *gin.Context) {
	resetRequest := middleware.SanitizedPayload[schemas.PasswordResetRequest](c)

	if err := handler.AccountService.RequestPasswordReset(c.Request.Context(), resetRequest.Email); err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Password reset mail sent"}, http.StatusOK)
}

// ResetPassword completes a reset with the key from the path.
func (handler *AccountHandler) ResetPassword(c *gin.Context) {
	completion := middleware.SanitizedPayload[schemas.PasswordResetCompletion](c)

	err := handler.AccountService.ResetPassword(c.Request.Context(), c.Param(utils.ResetKeyKey), completion.Password)
	if err != nil {
		writeKeyError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Password reset"}, http.StatusOK)
}

// VerifySession answers whether the bearer token is a valid session. It never fails.
func (handler *AccountHandler) VerifySession(c *gin.Context) {
	token, err := utils.ExtractBearerToken(c)
	valid := err == nil && handler.AccountService.VerifySession(c.Request.Context(), token)

	utils.WriteAndLogResponse(c, &schemas.VerificationDTO{Valid: valid}, http.StatusOK)
}

// VerifyAdminSession answers whether the bearer token is a valid admin session.
func (handler *AccountHandler) VerifyAdminSession(c *gin.Context) {
	valid := false
	if token, err := utils.ExtractBearerToken(c); err == nil {
		_, err = handler.AccountService.VerifyAdminSession(c.Request.Context(), token)
		valid = err == nil
	}

	utils.WriteAndLogResponse(c, &schemas.VerificationDTO{Valid: valid}, http.StatusOK)
}

func (handler *AccountHandler) ListAccounts(c *gin.Context) {
	offset, limit := utils.ParsePaginationParams(c)

	accounts, total, err := handler.AccountService.ListAccountsPage(c.Request.Context(), offset, limit)
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.SendPaginatedResponse(c, accounts, offset, limit, int(total))
}

func (handler *AccountHandler) GetAccountByID(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	account, err := handler.AccountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}
	authorities, err := handler.AccountService.AccountAuthorities(c.Request.Context(), id)
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.AdminAccountDTO{AccountDTO: *account, Authorities: authorities}, http.StatusOK)
}

func (handler *AccountHandler) UpdateAccountByID(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	updateRequest := middleware.SanitizedPayload[schemas.UpdateProfileRequest](c)

	account, err := handler.AccountService.UpdateProfileAsAdmin(c.Request.Context(), id, updateRequest.ProfileFields())
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, account, http.StatusOK)
}

func (handler *AccountHandler) DeleteAccountByID(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	removed, err := handler.AccountService.RemoveAccount(c.Request.Context(), id)
	writeRemoval(c, removed, err)
}

func (handler *AccountHandler) GrantAdmin(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	if err := handler.AccountService.GrantAdmin(c.Request.Context(), id); err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (handler *AccountHandler) RevokeAdmin(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	if err := handler.AccountService.RevokeAdmin(c.Request.Context(), id); err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (handler *AccountHandler) ListAuthorities(c *gin.Context) {
	authorities, err := handler.AccountService.ListAuthorities(c.Request.Context())
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, authorities, http.StatusOK)
}

func sessionToken(c *gin.Context) string {
	return c.GetString(utils.TokenKey.String())
}

func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(utils.IdKey), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, errors.New("invalid account id"))
		return 0, false
	}
	return id, true
}

func writeRemoval(c *gin.Context, removed bool, err error) {
	if err != nil {
		utils.WriteAndLogCoreError(c, err)
		return
	}
	if !removed {
		utils.WriteAndLogError(c, goerrors.AccountNotFound, http.StatusNotFound, errors.New("no live account"))
		return
	}
	c.Status(http.StatusNoContent)
}

// writeKeyError reports unknown activation and reset keys as KeyNotFound.
func writeKeyError(c *gin.Context, err error) {
	if errors.Is(err, goerrors.ErrNotFound) {
		utils.WriteAndLogError(c, goerrors.KeyNotFound, http.StatusNotFound, err)
		return
	}
	utils.WriteAndLogCoreError(c, err)
}
