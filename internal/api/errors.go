package api

import (
	"alcyxob/workout-scheduler/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// serviceErrorStatus maps service sentinels to HTTP codes. Anything unknown
// is logged and answered with fallback.
func serviceErrorStatus(c *gin.Context, err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, err.Error()
	default:
		log.Errorf("%s %s: %s", c.Request.Method, c.FullPath(), err)
		return http.StatusInternalServerError, fallback
	}
}

func abortWithServiceError(c *gin.Context, err error, fallback string) {
	code, message := serviceErrorStatus(c, err, fallback)
	abortWithError(c, code, message)
}

// abortWithPartialResult reports err along with what was persisted before it.
func abortWithPartialResult(c *gin.Context, err error, fallback string, partial any) {
	code, message := serviceErrorStatus(c, err, fallback)
	c.AbortWithStatusJSON(code, gin.H{"error": message, "partial": partial})
}

// requireUserID resolves the caller or aborts with 401.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}
