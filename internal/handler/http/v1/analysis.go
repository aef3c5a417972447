package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// @Summary Analyze a route
// @Description Geocode source and destination, collect crimes, incidents and weather alerts around them and record the trip.
// @Tags Analysis
// @Produce json
// @Param userId path string true "User ID"
// @Param source path string true "Source place name"
// @Param destination path string true "Destination place name"
// @Param date path string true "Travel date, YYYY-MM-DD"
// @Success 200 {object} models.AreaAnalysis
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 404 {object} map[string]string "Location not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /analyzeArea/{userId}/{source}/{destination}/{date} [get]
func (h *Handler) analyzeArea(c *gin.Context) {
	log := h.logger.WithField("method", "analyzeArea").WithFields(logrus.Fields{
		"user_id":     c.Param("userId"),
		"source":      c.Param("source"),
		"destination": c.Param("destination"),
	})

	analysis, err := h.analyzerService.AnalyzeArea(
		c.Request.Context(),
		c.Param("userId"),
		c.Param("source"),
		c.Param("destination"),
		c.Param("date"),
	)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// @Summary List user trips
// @Description Trips recorded by route analysis, newest first
// @Tags Analysis
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {array} models.Trip
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /fetchtrip/{userId} [get]
func (h *Handler) fetchTrips(c *gin.Context) {
	log := h.logger.WithField("method", "fetchTrips").WithField("user_id", c.Param("userId"))

	trips, err := h.analyzerService.ListTrips(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}
