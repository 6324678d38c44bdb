package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edafa/admissions/internal/app/models/dto"
	"github.com/edafa/admissions/internal/pkg/apperrors"
	"github.com/edafa/admissions/internal/pkg/logger"
)

// HandleAPIError maps service errors onto HTTP responses. Business errors
// carry their own message; unexpected errors are logged and masked.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrAdmissionNotFound,
		apperrors.ErrCycleNotFound,
		apperrors.ErrDepartmentNotFound,
		apperrors.ErrProgramNotFound,
		apperrors.ErrCourseNotFound,
		apperrors.ErrBatchNotFound,
		apperrors.ErrProductNotFound,
		apperrors.ErrProviderNotFound,
		apperrors.ErrUserNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, err)

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, err)
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, err)
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, err)

	case apperrors.Is(err, apperrors.ErrAccessDenied,
		apperrors.ErrPermissionDenied,
		apperrors.ErrAccountDisabled):
		respond(c, http.StatusForbidden, dto.ErrorCodeAccessDenied, err)

	case errors.Is(err, apperrors.ErrInvalidTransition):
		respond(c, http.StatusConflict, dto.ErrorCodeInvalidTransition, err)
	case errors.Is(err, apperrors.ErrCapacityReached):
		respond(c, http.StatusConflict, dto.ErrorCodeCapacityReached, err)
	case apperrors.Is(err, apperrors.ErrConflict,
		apperrors.ErrInvoiceExists,
		apperrors.ErrAlreadyEnrolled,
		apperrors.ErrResourceAlreadyExists,
		apperrors.ErrEmailAlreadyExists):
		respond(c, http.StatusConflict, dto.ErrorCodeConflict, err)

	case errors.Is(err, apperrors.ErrRegisterClosed):
		respond(c, http.StatusBadRequest, dto.ErrorCodeRegisterClosed, err)
	case apperrors.Is(err, apperrors.ErrValidationFailed,
		apperrors.ErrBadRequest,
		apperrors.ErrBelowMinimumAge,
		apperrors.ErrCourseNotInCycle,
		apperrors.ErrNonPositiveFee,
		apperrors.ErrCourseNotSelected,
		apperrors.ErrTransactionPending):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, err)

	case errors.Is(err, apperrors.ErrConfiguration):
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Configuration error")
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeConfiguration, "Service is not configured correctly"),
		})

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}

func respond(c *gin.Context, status int, code dto.ErrorCode, err error) {
	c.JSON(status, dto.APIResponse{
		Error: dto.NewErrorDetail(code, err.Error()),
	})
}
