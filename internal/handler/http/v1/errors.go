package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/sirupsen/logrus"
)

// respondError переводит ошибку сервиса в HTTP-ответ. Детали 500-х наружу не отдаются.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidParameter):
		log.WithError(err).Warn("Invalid request parameters")
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidParamMessage(err)})
	case errors.Is(err, service.ErrForbidden):
		log.WithError(err).Warn("Forbidden operation")
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not allowed to modify this resource"})
	case errors.Is(err, service.ErrIncidentNotFound):
		log.WithError(err).Warn("Incident not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Incident not found"})
	case errors.Is(err, service.ErrCommentNotFound):
		log.WithError(err).Warn("Comment not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
	case errors.Is(err, service.ErrLocationNotFound):
		log.WithError(err).Warn("Location not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
	case errors.Is(err, service.ErrNotFound):
		log.WithError(err).Warn("Resource not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// invalidParamMessage отрезает служебные префиксы обертки ("service: ...")
func invalidParamMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, service.ErrInvalidParameter.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}
