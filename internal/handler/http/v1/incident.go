package v1

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/travel_safety_system/internal/storage"
	"github.com/sirupsen/logrus"
)

const nearbyParamsError = "Invalid parameters. Latitude, longitude, and radius must be numbers."

// @Summary Report an incident
// @Description Create an incident report. Accepts JSON or multipart/form-data with optional "images" files.
// @Tags Incidents
// @Accept json,mpfd
// @Produce json
// @Param incident body ReportIncidentRequest true "Incident report"
// @Success 201 {object} IncidentMessageResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/report [post]
func (h *Handler) reportIncident(c *gin.Context) {
	var input ReportIncidentRequest
	log := h.logger.WithField("method", "reportIncident")

	if err := c.ShouldBind(&input); err != nil {
		log.WithError(err).Warn("Failed to bind request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images, err := h.saveImages(c, log)
	if err != nil {
		return
	}

	model, err := ReportDTOToIncidentModel(input, images)
	if err != nil {
		h.removeImages(log, images)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.incidentService.CreateIncident(c.Request.Context(), model); err != nil {
		h.removeImages(log, images)
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, IncidentMessageResponse{Message: "Incident reported successfully", Incident: model})
}

// saveImages сохраняет файлы из поля "images". При ошибке ответ уже отправлен.
func (h *Handler) saveImages(c *gin.Context, log *logrus.Entry) ([]string, error) {
	images := []string{}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return images, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.WithError(err).Warn("Failed to read multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return nil, err
	}

	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	for _, fh := range form.File["images"] {
		if maxBytes > 0 && fh.Size > maxBytes {
			h.removeImages(log, images)
			c.JSON(http.StatusBadRequest, gin.H{"error": "image " + fh.Filename + " is too large"})
			return nil, errors.New("image too large")
		}
		path, err := h.images.Save(fh)
		if err != nil {
			h.removeImages(log, images)
			if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrEmptyFile) {
				log.WithError(err).WithField("file", fh.Filename).Warn("Rejected upload")
				c.JSON(http.StatusBadRequest, gin.H{"error": "file " + fh.Filename + " is not a valid image"})
				return nil, err
			}
			log.WithError(err).Error("Failed to store image")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return nil, err
		}
		images = append(images, path)
	}
	return images, nil
}

func (h *Handler) removeImages(log *logrus.Entry, images []string) {
	for _, path := range images {
		if err := h.images.Remove(path); err != nil {
			log.WithError(err).Warn("Failed to remove stored image")
		}
	}
}

// @Summary Find nearby incidents
// @Description Incidents inside the square [latitude±radius] x [longitude±radius] (degrees, inclusive).
// @Tags Incidents
// @Produce json
// @Param latitude query number true "Center latitude"
// @Param longitude query number true "Center longitude"
// @Param radius query number true "Half side of the box in degrees"
// @Param sort query string false "votes - order by upvotes minus downvotes"
// @Success 200 {array} models.Incident
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/nearby [get]
func (h *Handler) getNearbyIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "getNearbyIncidents")

	lat, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("longitude"), 64)
	radius, errRadius := strconv.ParseFloat(c.Query("radius"), 64)
	if errLat != nil || errLng != nil || errRadius != nil || !finite(lat, lng, radius) {
		log.WithFields(logrus.Fields{
			"latitude":  c.Query("latitude"),
			"longitude": c.Query("longitude"),
			"radius":    c.Query("radius"),
		}).Warn("Invalid nearby parameters")
		c.JSON(http.StatusBadRequest, gin.H{"error": nearbyParamsError})
		return
	}

	center := pointOf(lat, lng)
	incidents, err := h.incidentService.FindNearby(c.Request.Context(), center, radius, c.Query("sort") == "votes")
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func parseIncidentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("incidentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Get incident by ID
// @Description Get a single incident with votes and comments
// @Tags Incidents
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Success 200 {object} models.Incident
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{incidentId} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

// @Summary Update an incident
// @Description Change description, type, severity or status. Only the reporter may do this.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param incident body UpdateIncidentRequest true "Fields to change"
// @Success 200 {object} IncidentMessageResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 403 {object} map[string]string "Not the reporter"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{incidentId} [put]
func (h *Handler) updateIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateIncident").WithField("id", id)

	var input UpdateIncidentRequest
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

	incident, err := h.incidentService.UpdateIncident(c.Request.Context(), id, input.UserID, UpdateDTOToPatch(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, IncidentMessageResponse{Message: "Incident updated", Incident: incident})
}

// @Summary Delete an incident
// @Description Delete an incident with its votes and comments. Only the reporter may do this.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param userId query string false "Reporter ID (or in JSON body)"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or missing userId"
// @Failure 403 {object} map[string]string "Not the reporter"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{incidentId} [delete]
func (h *Handler) deleteIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteIncident").WithField("id", id)

	userID, ok := h.requestUserID(c, log)
	if !ok {
		return
	}

	if err := h.incidentService.DeleteIncident(c.Request.Context(), id, userID); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Incident deleted"})
}

// requestUserID берет userId из query, а если его нет - из JSON-тела
func (h *Handler) requestUserID(c *gin.Context, log *logrus.Entry) (string, bool) {
	if userID := c.Query("userId"); userID != "" {
		return userID, true
	}
	var input UserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			log.WithError(err).Warn("Failed to bind JSON")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return "", false
		}
	}
	if err := h.validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return "", false
	}
	return input.UserID, true
}

// @Summary Vote on an incident
// @Description Cast or switch an upvote/downvote. Repeating the same vote changes nothing.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param vote body VoteRequest true "Vote"
// @Success 200 {object} IncidentMessageResponse
// @Failure 400 {object} map[string]string "Invalid vote type"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{incidentId}/vote [post]
func (h *Handler) voteIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "voteIncident").WithField("id", id)

	var input VoteRequest
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

	incident, changed, err := h.incidentService.Vote(c.Request.Context(), id, input.UserID, voteTypeOf(input.VoteType))
	if err != nil {
		respondError(c, log, err)
		return
	}

	message := "Vote already recorded"
	if changed {
		message = "Vote updated"
	}
	c.JSON(http.StatusOK, IncidentMessageResponse{Message: message, Incident: incident})
}

// @Summary Comment on an incident
// @Description Append a comment to the incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param comment body CommentRequest true "Comment"
// @Success 200 {object} IncidentMessageResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{incidentId}/comment [post]
func (h *Handler) commentOnIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "commentOnIncident").WithField("id", id)

	var input CommentRequest
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

	incident, err := h.incidentService.Comment(c.Request.Context(), id, input.UserID, input.Comment)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, IncidentMessageResponse{Message: "Comment added", Incident: incident})
}

func parseCommentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment ID"})
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Edit a comment
// @Description Replace the comment text. Only the comment author may do this.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param commentId path string true "Comment ID"
// @Param comment body UpdateCommentRequest true "New text"
// @Success 200 {object} IncidentMessageResponse
// @Failure 400 {object} map[string]string "Invalid ID or request body"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Incident or comment not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{incidentId}/comments/{commentId} [put]
func (h *Handler) updateComment(c *gin.Context) {
	incidentID, ok := parseIncidentID(c)
	if !ok {
		return
	}
	commentID, ok := parseCommentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateComment").WithFields(logrus.Fields{"id": incidentID, "comment_id": commentID})

	var input UpdateCommentRequest
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

	incident, err := h.incidentService.UpdateComment(c.Request.Context(), incidentID, commentID, input.UserID, input.NewComment)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, IncidentMessageResponse{Message: "Comment updated", Incident: incident})
}

// @Summary Delete a comment
// @Description Remove a comment. Only the comment author may do this.
// @Tags Incidents
// @Produce json
// @Param incidentId path string true "Incident ID"
// @Param commentId path string true "Comment ID"
// @Param userId query string false "Author ID (or in JSON body)"
// @Success 200 {object} IncidentMessageResponse
// @Failure 400 {object} map[string]string "Invalid ID or missing userId"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Incident or comment not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{incidentId}/comments/{commentId} [delete]
func (h *Handler) deleteComment(c *gin.Context) {
	incidentID, ok := parseIncidentID(c)
	if !ok {
		return
	}
	commentID, ok := parseCommentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteComment").WithFields(logrus.Fields{"id": incidentID, "comment_id": commentID})

	userID, ok := h.requestUserID(c, log)
	if !ok {
		return
	}

	incident, err := h.incidentService.DeleteComment(c.Request.Context(), incidentID, commentID, userID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, IncidentMessageResponse{Message: "Comment deleted", Incident: incident})
}
