package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Инциденты, голоса и комментарии
	incidents := api.Group("/incidents")
	{
		incidents.POST("/report", h.reportIncident)
		incidents.GET("/nearby", h.getNearbyIncidents)
		incidents.GET("/:incidentId", h.getIncident)
		incidents.PUT("/:incidentId", h.updateIncident)
		incidents.DELETE("/:incidentId", h.deleteIncident)
		incidents.POST("/:incidentId/vote", h.voteIncident)
		incidents.POST("/:incidentId/comment", h.commentOnIncident)
		incidents.PUT("/:incidentId/comments/:commentId", h.updateComment)
		incidents.DELETE("/:incidentId/comments/:commentId", h.deleteComment)
	}

	// Анализ маршрута
	api.GET("/analyzeArea/:userId/:source/:destination/:date", h.analyzeArea)
	api.GET("/fetchtrip/:userId", h.fetchTrips)

	// Генеративный ассистент
	api.POST("/travelInfo", h.travelInfo)
	api.POST("/forecast/generate", h.generateForecast)

	// Административные маршруты под API-ключом
	admin := api.Group("/admin", APIKeyAuthMiddleware(h.cfg, h.logger))
	{
		admin.POST("/crimes", h.createCrime)
		admin.POST("/weather-alerts", h.createWeatherAlert)
		admin.GET("/stats", h.getStats)
	}

	api.GET("/system/health", h.healthCheck)
}
