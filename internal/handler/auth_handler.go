package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes binds the auth endpoints to the gin RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/swagger-login", h.SwaggerLogin)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/confirm", h.ConfirmAccount)
		auth.POST("/request-password-reset", h.RequestPasswordReset)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/resend-confirmation", h.ResendConfirmation)

		auth.PUT("/change-role", middleware.RequireRole(model.RoleAdmin), h.ChangeRole)
	}
}

// Register handles POST /auth/register
// @Summary      Register a new user
// @Description  Creates an inactive account. The default role depends on whether the client IP is whitelisted. A confirmation email is sent.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration Payload"
// @Success      200      {object}  response.Response{data=service.MessageResponse}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Login handles POST /auth/login
// @Summary      Login user
// @Description  Authenticates by username and password and returns an access/refresh token pair. A guest logging in from a whitelisted IP is upgraded to the user role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokenRes, err := h.authService.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// SwaggerLogin handles POST /auth/swagger-login (form-encoded, for interactive tooling)
// @Summary      Login via OAuth2 form
// @Description  Form-encoded variant of login used by the Swagger UI Authorize dialog.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  service.TokenResponse
// @Failure      400       {object}  response.Response
// @Router       /auth/swagger-login [post]
func (h *AuthHandler) SwaggerLogin(c *gin.Context) {
	req := service.LoginRequest{
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "username and password are required"))
		return
	}

	tokenRes, err := h.authService.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	// Swagger's OAuth2 flow expects the bare token object, not the envelope.
	c.JSON(http.StatusOK, tokenRes)
}

// Refresh handles POST /auth/refresh
// @Summary      Refresh tokens
// @Description  Issues a new access/refresh token pair from a valid refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest  true  "Refresh Token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokenRes, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		// Any refresh failure is an authentication failure.
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// ConfirmAccount handles POST /auth/confirm?token=
// @Summary      Confirm account
// @Description  Activates an account using the emailed confirmation token.
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Confirmation token"
// @Success      200    {object}  response.Response{data=service.MessageResponse}
// @Failure      404    {object}  response.Response
// @Router       /auth/confirm [post]
func (h *AuthHandler) ConfirmAccount(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "token is required"))
		return
	}

	res, err := h.authService.ConfirmAccount(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
			return
		}
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// RequestPasswordReset handles POST /auth/request-password-reset?email=
// @Summary      Request password reset
// @Description  Generates a time-limited reset token and mails a reset link.
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Account email"
// @Success      200    {object}  response.Response{data=service.MessageResponse}
// @Failure      404    {object}  response.Response
// @Router       /auth/request-password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "email is required"))
		return
	}

	res, err := h.authService.RequestPasswordReset(c.Request.Context(), email)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ResetPassword handles POST /auth/reset-password?token=&new_password=
// @Summary      Reset password
// @Description  Sets a new password using a valid, unexpired reset token. The token is single-use.
// @Tags         auth
// @Produce      json
// @Param        token         query     string  true  "Reset token"
// @Param        new_password  query     string  true  "New password"
// @Success      200           {object}  response.Response{data=service.MessageResponse}
// @Failure      400           {object}  response.Response
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Query("token")
	newPassword := c.Query("new_password")
	if token == "" || newPassword == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "token and new_password are required"))
		return
	}

	res, err := h.authService.ResetPassword(c.Request.Context(), token, newPassword)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ResendConfirmation handles POST /auth/resend-confirmation?email=
// @Summary      Resend confirmation email
// @Description  Regenerates the confirmation token and resends the confirmation mail.
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Account email"
// @Success      200    {object}  response.Response{data=service.MessageResponse}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /auth/resend-confirmation [post]
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "email is required"))
		return
	}

	res, err := h.authService.ResendConfirmation(c.Request.Context(), email)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ChangeRole handles PUT /auth/change-role (admin only)
// @Summary      Change user role
// @Description  Sets the role of the given user. Requires the admin role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ChangeUserRoleRequest  true  "Role Change Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/change-role [put]
func (h *AuthHandler) ChangeRole(c *gin.Context) {
	var req service.ChangeUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.authService.ChangeUserRole(c.Request.Context(), req.UserID, req.NewRole)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, response.Error(status, msg))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"message":  res.Message,
		"user_id":  req.UserID,
		"new_role": req.NewRole,
	}))
}
