package v1

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/travel_safety_system/internal/config"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/sirupsen/logrus"
)

// ImageStore сохраняет изображения, приложенные к отчету об инциденте
type ImageStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(path string) error
}

type Handler struct {
	incidentService  service.IncidentService
	analyzerService  service.AnalyzerService
	assistantService service.AssistantService
	adminService     service.AdminService
	images           ImageStore
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

func NewHandler(
	incidentService service.IncidentService,
	analyzerService service.AnalyzerService,
	assistantService service.AssistantService,
	adminService service.AdminService,
	images ImageStore,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		incidentService:  incidentService,
		analyzerService:  analyzerService,
		assistantService: assistantService,
		adminService:     adminService,
		images:           images,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
