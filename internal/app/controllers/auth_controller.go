// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edafa/admissions/internal/app/models/dto"
	"github.com/edafa/admissions/internal/app/services"
	"github.com/edafa/admissions/internal/middleware"
)

// AuthController handles staff authentication.
type AuthController struct {
	authService *services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Login authenticates a staff user and returns a JWT access token
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid login data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	user, token, expiresIn, err := c.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.AuthResponse{
			Token: dto.TokenResponse{
				AccessToken: token,
				TokenType:   "Bearer",
				ExpiresIn:   expiresIn,
			},
			User: dto.UserResponse{
				ID:       user.ID,
				Email:    user.Email,
				Name:     user.Name,
				RoleType: string(user.RoleType),
			},
		},
		Timestamp: time.Now(),
	})
}
