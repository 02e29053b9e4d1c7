package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "expensely/internal/errors"
	"expensely/internal/logger"
)

// ErrorHandler returns a Gin middleware that renders the last error attached
// to the context when the handler chain did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RenderError(c, c.Errors.Last().Err)
	}
}

// RenderError writes err as {"error":{"code","message"}}. AppErrors keep their
// status and code, binding failures become INVALID_INPUT, and anything else
// is logged and hidden behind INTERNAL_ERROR.
func RenderError(c *gin.Context, err error) {
	appErr := toAppError(err)

	if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"message", appErr.Message,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
	}
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return InvalidInput(err)
	}

	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// InvalidInput turns a request binding failure into an INVALID_INPUT error
// with a readable per-field message.
func InvalidInput(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, describeValidation(verrs))
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

func describeValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
