package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"shiftdesk/pkg/apperr"
	"shiftdesk/pkg/response"
)

// MustGetUserID extracts the authenticated user_id from the Gin context.
// Returns false (after writing a 401) when the auth middleware did not run;
// callers should return immediately in that case.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// tokenIdentity extracts the jti and expiry the auth middleware stored.
func tokenIdentity(c *gin.Context) (string, time.Time, bool) {
	jti, ok := c.Get("token_jti")
	if !ok {
		return "", time.Time{}, false
	}
	exp, ok := c.Get("token_expires_at")
	if !ok {
		return "", time.Time{}, false
	}
	jtiStr, ok1 := jti.(string)
	expTime, ok2 := exp.(time.Time)
	return jtiStr, expTime, ok1 && ok2
}

// writeServiceError maps a classified business error onto the HTTP surface.
// Ownership errors travel as validation internally but surface as 403; code
// is the module's error code for the generic case.
func writeServiceError(c *gin.Context, err error, code int, forbidden ...error) {
	for _, f := range forbidden {
		if errors.Is(err, f) {
			response.Forbidden(c, code, err.Error())
			return
		}
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		response.BadRequest(c, code, err.Error())
	case apperr.KindConflict:
		response.Conflict(c, code, err.Error())
	case apperr.KindNotFound:
		response.NotFound(c, code, err.Error())
	default:
		response.InternalError(c)
	}
}
