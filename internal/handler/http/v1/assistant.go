package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Travel information
// @Description Ask the generative model about a place. The answer is returned as HTML.
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body TravelInfoRequest true "Query"
// @Success 200 {object} TravelInfoResponse
// @Failure 400 {object} map[string]string "Query is required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /travelInfo [post]
func (h *Handler) travelInfo(c *gin.Context) {
	var input TravelInfoRequest
	log := h.logger.WithField("method", "travelInfo")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	information, err := h.assistantService.TravelInfo(c.Request.Context(), input.Query)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, TravelInfoResponse{Query: input.Query, Information: information})
}

// @Summary Trip forecast
// @Description Generate a plain-text forecast for a planned trip
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body ForecastRequest true "Trip parameters"
// @Success 200 {object} ForecastResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /forecast/generate [post]
func (h *Handler) generateForecast(c *gin.Context) {
	var input ForecastRequest
	log := h.logger.WithField("method", "generateForecast")

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

	forecast, err := h.assistantService.Forecast(c.Request.Context(), ForecastDTOToModel(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ForecastResponse{Data: ForecastData{Forecast: forecast}})
}
