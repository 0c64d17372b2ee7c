package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/solenne/roadmapper/internal/apperror"
	"github.com/solenne/roadmapper/internal/dto"
	"gorm.io/gorm"
)

// WriteError maps a service error onto the HTTP surface. Domain error kinds
// carry their own status; anything else is a 500.
func WriteError(ctx *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		ctx.JSON(statusFor(appErr.Kind), dto.ErrorResponse{Message: appErr.Message()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "resource not found"})
		return
	}
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal server error", Details: []string{err.Error()}})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindProtection, apperror.KindStateConflict:
		return http.StatusConflict
	case apperror.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
