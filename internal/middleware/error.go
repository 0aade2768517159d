package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/freightrates/internal/apperrors"
	"github.com/guttosm/freightrates/internal/domain/dto"
	"github.com/guttosm/freightrates/internal/logger"
)

// ErrorHandler renders the last error attached with c.Error as the standard
// error envelope, unless the handler already wrote a response.
//
// Behavior:
//   - *apperrors.AppError keeps its code, message and status.
//   - Any other error becomes 2002 "Internal server error" (500).
//   - The internal cause is logged with the request id and never returned.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
//	...
//	_ = c.Error(apperrors.Validation("date_from must be less than or equal to date_to"))
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	writeError(c, toAppError(c.Errors.Last().Err))
}

// AbortWithError stops the chain and writes appErr as the error envelope.
func AbortWithError(c *gin.Context, appErr *apperrors.AppError) {
	writeError(c, appErr)
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternal, err)
}

func writeError(c *gin.Context, appErr *apperrors.AppError) {
	rid, _ := c.Get(RequestIDKey)
	ev := logger.L().Warn()
	if appErr.StatusCode >= 500 {
		ev = logger.L().Error()
	}
	ev.Str("request_id", toString(rid)).
		Int("error_code", appErr.Code).
		Int("status", appErr.StatusCode).
		Err(appErr.Internal).
		Msg(appErr.Message)

	c.AbortWithStatusJSON(appErr.StatusCode, dto.NewErrorResponse(appErr.StatusCode, appErr.Code, appErr.Message))
}
