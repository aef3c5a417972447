package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Import a crime record
// @Description Store a crime used by route analysis. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param crime body CreateCrimeRequest true "Crime"
// @Success 201 {object} models.Crime
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/crimes [post]
func (h *Handler) createCrime(c *gin.Context) {
	var input CreateCrimeRequest
	log := h.logger.WithField("method", "createCrime")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crime, err := CrimeDTOToModel(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.CreateCrime(c.Request.Context(), crime); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, crime)
}

// @Summary Import a weather alert
// @Description Store a weather alert used by route analysis. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param alert body CreateWeatherAlertRequest true "Weather alert"
// @Success 201 {object} models.WeatherAlert
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/weather-alerts [post]
func (h *Handler) createWeatherAlert(c *gin.Context) {
	var input CreateWeatherAlertRequest
	log := h.logger.WithField("method", "createWeatherAlert")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := WeatherAlertDTOToModel(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.CreateWeatherAlert(c.Request.Context(), alert); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// @Summary Get statistics
// @Description Total incidents and distinct users who planned a trip within the stats window. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToStatsResponse(stats))
}
