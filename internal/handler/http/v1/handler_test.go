package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/travel_safety_system/internal/config"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/shenikar/travel_safety_system/internal/service/mocks"
	"github.com/shenikar/travel_safety_system/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeImageStore запоминает сохраненные и удаленные файлы
type fakeImageStore struct {
	saved   []string
	removed []string
	err     error
}

func (s *fakeImageStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	path := "uploads/" + fh.Filename
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *fakeImageStore) Remove(path string) error {
	s.removed = append(s.removed, path)
	return nil
}

type testDeps struct {
	incidents *mocks.MockIncidentService
	analyzer  *mocks.MockAnalyzerService
	assistant *mocks.MockAssistantService
	admin     *mocks.MockAdminService
	images    *fakeImageStore
	router    *gin.Engine
}

// newTestHandler создает Handler с мокированными сервисами
func newTestHandler(t *testing.T) *testDeps {
	ctrl := gomock.NewController(t)
	deps := &testDeps{
		incidents: mocks.NewMockIncidentService(ctrl),
		analyzer:  mocks.NewMockAnalyzerService(ctrl),
		assistant: mocks.NewMockAssistantService(ctrl),
		admin:     mocks.NewMockAdminService(ctrl),
		images:    &fakeImageStore{},
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys:     []string{"test-api-key"},
		MaxUploadMB: 1,
	}

	handler := NewHandler(deps.incidents, deps.analyzer, deps.assistant, deps.admin, deps.images, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	deps.router = gin.New()
	handler.RegisterRoutes(deps.router.Group("/api"))
	return deps
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func floatPtr(v float64) *float64 { return &v }

type incidentEnvelope struct {
	Message  string          `json:"message"`
	Incident models.Incident `json:"incident"`
}

func TestReportIncident_JSON(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()

	deps.incidents.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, "u1", inc.UserID)
			assert.Equal(t, 12.97, inc.Location.Latitude)
			assert.Equal(t, models.CategoryFire, inc.Category)
			inc.ID = incidentID
			inc.Status = models.StatusOngoing
			return nil
		}).Times(1)

	w := makeRequest(deps.router, http.MethodPost, "/api/incidents/report", jsonBody(t, ReportIncidentRequest{
		UserID:       "u1",
		Description:  "Smoke",
		Latitude:     floatPtr(12.97),
		Longitude:    floatPtr(77.59),
		IncidentType: "Fire",
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp incidentEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Incident reported successfully", resp.Message)
	assert.Equal(t, incidentID, resp.Incident.ID)
}

func TestReportIncident_Multipart(t *testing.T) {
	deps := newTestHandler(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("userId", "u1"))
	require.NoError(t, writer.WriteField("description", "Crash"))
	require.NoError(t, writer.WriteField("latitude", "12.97"))
	require.NoError(t, writer.WriteField("longitude", "77.59"))
	part, err := writer.CreateFormFile("images", "crash.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, writer.Close())

	deps.incidents.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, []string{"uploads/crash.png"}, inc.Images)
			assert.Equal(t, 77.59, inc.Location.Longitude)
			return nil
		}).Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/incidents/report", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestReportIncident_RejectsNonImage(t *testing.T) {
	deps := newTestHandler(t)
	deps.images.err = fmt.Errorf("%w: detected text/plain", storage.ErrNotImage)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("userId", "u1"))
	require.NoError(t, writer.WriteField("latitude", "1"))
	require.NoError(t, writer.WriteField("longitude", "1"))
	part, err := writer.CreateFormFile("images", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("hello"))
	require.NoError(t, writer.Close())

	deps.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0)

	req := httptest.NewRequest(http.MethodPost, "/api/incidents/report", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not a valid image")
}

func TestReportIncident_ServiceErrorRemovesImages(t *testing.T) {
	deps := newTestHandler(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("userId", "u1"))
	require.NoError(t, writer.WriteField("latitude", "95"))
	require.NoError(t, writer.WriteField("longitude", "1"))
	part, err := writer.CreateFormFile("images", "a.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, writer.Close())

	deps.incidents.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("%w: latitude must be between -90 and 90", service.ErrInvalidParameter)).
		Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/incidents/report", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "latitude must be between -90 and 90")
	assert.Equal(t, []string{"uploads/a.png"}, deps.images.removed)
}

func TestReportIncident_ValidationError(t *testing.T) {
	deps := newTestHandler(t)
	deps.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(deps.router, http.MethodPost, "/api/incidents/report", bytes.NewBufferString(`{"userId":"u1","latitude":10}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Longitude")
}

func TestReportIncident_InvalidJSON(t *testing.T) {
	deps := newTestHandler(t)
	deps.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(deps.router, http.MethodPost, "/api/incidents/report", bytes.NewBufferString(`{"userId": "u1"`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestReportIncident_PersistenceError(t *testing.T) {
	deps := newTestHandler(t)
	deps.incidents.EXPECT().
		CreateIncident(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("service: could not create incident: %w: connection refused", service.ErrPersistence)).
		Times(1)

	w := makeRequest(deps.router, http.MethodPost, "/api/incidents/report", jsonBody(t, ReportIncidentRequest{
		UserID: "u1", Latitude: floatPtr(1), Longitude: floatPtr(1),
	}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGetNearbyIncidents(t *testing.T) {
	deps := newTestHandler(t)
	expected := []*models.Incident{{ID: uuid.New(), UserID: "u1"}}

	deps.incidents.EXPECT().
		FindNearby(gomock.Any(), models.Point{Latitude: 12.97, Longitude: 77.59}, 0.1, true).
		Return(expected, nil).
		Times(1)

	w := makeRequest(deps.router, http.MethodGet, "/api/incidents/nearby?latitude=12.97&longitude=77.59&radius=0.1&sort=votes", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []models.Incident
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, expected[0].ID, resp[0].ID)
}

func TestGetNearbyIncidents_InvalidParams(t *testing.T) {
	deps := newTestHandler(t)
	deps.incidents.EXPECT().FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	for _, query := range []string{
		"latitude=abc&longitude=77.59&radius=0.1",
		"latitude=12.97&radius=0.1",
		"latitude=NaN&longitude=77.59&radius=0.1",
		"latitude=12.97&longitude=77.59&radius=Inf",
	} {
		w := makeRequest(deps.router, http.MethodGet, "/api/incidents/nearby?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Contains(t, w.Body.String(), nearbyParamsError, query)
	}
}

func TestGetIncident(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()

	deps.incidents.EXPECT().GetIncident(gomock.Any(), incidentID).Return(&models.Incident{ID: incidentID}, nil).Times(1)
	w := makeRequest(deps.router, http.MethodGet, "/api/incidents/"+incidentID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	missing := uuid.New()
	deps.incidents.EXPECT().GetIncident(gomock.Any(), missing).Return(nil, service.ErrIncidentNotFound).Times(1)
	w = makeRequest(deps.router, http.MethodGet, "/api/incidents/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Incident not found")

	w = makeRequest(deps.router, http.MethodGet, "/api/incidents/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestVoteIncident_Messages(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()
	incident := &models.Incident{ID: incidentID, UpvoteCount: 1}

	gomock.InOrder(
		deps.incidents.EXPECT().Vote(gomock.Any(), incidentID, "A", models.VoteUp).Return(incident, true, nil),
		deps.incidents.EXPECT().Vote(gomock.Any(), incidentID, "A", models.VoteUp).Return(incident, false, nil),
	)

	url := fmt.Sprintf("/api/incidents/%s/vote", incidentID)
	for _, expected := range []string{"Vote updated", "Vote already recorded"} {
		w := makeRequest(deps.router, http.MethodPost, url, jsonBody(t, VoteRequest{UserID: "A", VoteType: "upvote"}))
		require.Equal(t, http.StatusOK, w.Code)
		var resp incidentEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, expected, resp.Message)
		assert.Equal(t, 1, resp.Incident.UpvoteCount)
	}
}

func TestVoteIncident_Errors(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()
	url := fmt.Sprintf("/api/incidents/%s/vote", incidentID)

	deps.incidents.EXPECT().
		Vote(gomock.Any(), incidentID, "A", models.VoteType("like")).
		Return(nil, false, fmt.Errorf("%w: invalid vote type \"like\"", service.ErrInvalidParameter)).
		Times(1)
	w := makeRequest(deps.router, http.MethodPost, url, jsonBody(t, VoteRequest{UserID: "A", VoteType: "like"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid vote type")

	deps.incidents.EXPECT().
		Vote(gomock.Any(), incidentID, "A", models.VoteDown).
		Return(nil, false, fmt.Errorf("service: could not record vote: %w", service.ErrIncidentNotFound)).
		Times(1)
	w = makeRequest(deps.router, http.MethodPost, url, jsonBody(t, VoteRequest{UserID: "A", VoteType: "downvote"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentOnIncident(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()

	deps.incidents.EXPECT().
		Comment(gomock.Any(), incidentID, "u2", "Still blocked").
		Return(&models.Incident{ID: incidentID, Comments: []models.Comment{{ID: uuid.New(), UserID: "u2", Text: "Still blocked", Timestamp: time.Now()}}}, nil).
		Times(1)

	w := makeRequest(deps.router, http.MethodPost, fmt.Sprintf("/api/incidents/%s/comment", incidentID),
		jsonBody(t, CommentRequest{UserID: "u2", Comment: "Still blocked"}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp incidentEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Comment added", resp.Message)
	require.Len(t, resp.Incident.Comments, 1)
	assert.Equal(t, "Still blocked", resp.Incident.Comments[0].Text)
}

func TestCommentOnIncident_EmptyText(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()

	deps.incidents.EXPECT().
		Comment(gomock.Any(), incidentID, "u1", "").
		Return(&models.Incident{ID: incidentID, Comments: []models.Comment{{ID: uuid.New(), UserID: "u1", Timestamp: time.Now()}}}, nil).
		Times(1)

	w := makeRequest(deps.router, http.MethodPost, fmt.Sprintf("/api/incidents/%s/comment", incidentID),
		strings.NewReader(`{"userId":"u1","comment":""}`))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp incidentEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Comment added", resp.Message)
	require.Len(t, resp.Incident.Comments, 1)
	assert.Empty(t, resp.Incident.Comments[0].Text)
}

func TestCommentOnIncident_TooLong(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()

	w := makeRequest(deps.router, http.MethodPost, fmt.Sprintf("/api/incidents/%s/comment", incidentID),
		jsonBody(t, CommentRequest{UserID: "u1", Comment: strings.Repeat("a", 2001)}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateIncident_Forbidden(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()

	deps.incidents.EXPECT().
		UpdateIncident(gomock.Any(), incidentID, "stranger", gomock.Any()).
		Return(nil, fmt.Errorf("service: incident not updated: %w", service.ErrForbidden)).
		Times(1)

	status := "Resolved"
	w := makeRequest(deps.router, http.MethodPut, "/api/incidents/"+incidentID.String(),
		jsonBody(t, UpdateIncidentRequest{UserID: "stranger", Status: &status}))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteIncident(t *testing.T) {
	deps := newTestHandler(t)
	incidentID := uuid.New()

	deps.incidents.EXPECT().DeleteIncident(gomock.Any(), incidentID, "owner").Return(nil).Times(2)

	w := makeRequest(deps.router, http.MethodDelete, "/api/incidents/"+incidentID.String()+"?userId=owner", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = makeRequest(deps.router, http.MethodDelete, "/api/incidents/"+incidentID.String(), jsonBody(t, UserRequest{UserID: "owner"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = makeRequest(deps.router, http.MethodDelete, "/api/incidents/"+incidentID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteComment(t *testing.T) {
	deps := newTestHandler(t)
	incidentID, commentID := uuid.New(), uuid.New()
	url := fmt.Sprintf("/api/incidents/%s/comments/%s", incidentID, commentID)

	deps.incidents.EXPECT().
		UpdateComment(gomock.Any(), incidentID, commentID, "author", "fixed").
		Return(&models.Incident{ID: incidentID}, nil).Times(1)
	w := makeRequest(deps.router, http.MethodPut, url, jsonBody(t, UpdateCommentRequest{UserID: "author", NewComment: "fixed"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Comment updated")

	deps.incidents.EXPECT().
		DeleteComment(gomock.Any(), incidentID, commentID, "author").
		Return(nil, fmt.Errorf("service: comment not deleted: %w", service.ErrCommentNotFound)).Times(1)
	w = makeRequest(deps.router, http.MethodDelete, url+"?userId=author", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Comment not found")
}

func TestAnalyzeArea(t *testing.T) {
	deps := newTestHandler(t)
	analysis := &models.AreaAnalysis{
		Occurrences: models.Occurrences{Crimes: []*models.Crime{}, Incidents: []*models.Incident{}, Weather: []*models.WeatherAlert{}},
		Route:       &models.Trip{ID: uuid.New(), UserID: "u1"},
	}

	deps.analyzer.EXPECT().AnalyzeArea(gomock.Any(), "u1", "Bangalore", "Mysore", "2024-06-10").Return(analysis, nil).Times(1)
	w := makeRequest(deps.router, http.MethodGet, "/api/analyzeArea/u1/Bangalore/Mysore/2024-06-10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"occurrences"`)
	assert.Contains(t, w.Body.String(), `"route"`)

	deps.analyzer.EXPECT().AnalyzeArea(gomock.Any(), "u1", "Bangalore", "Atlantis", "2024-06-10").
		Return(nil, fmt.Errorf("service: could not resolve: %w", service.ErrLocationNotFound)).Times(1)
	w = makeRequest(deps.router, http.MethodGet, "/api/analyzeArea/u1/Bangalore/Atlantis/2024-06-10", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	deps.analyzer.EXPECT().AnalyzeArea(gomock.Any(), "u1", "Bangalore", "Mysore", "tomorrow").
		Return(nil, fmt.Errorf("%w: date must be in YYYY-MM-DD format", service.ErrInvalidParameter)).Times(1)
	w = makeRequest(deps.router, http.MethodGet, "/api/analyzeArea/u1/Bangalore/Mysore/tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFetchTrips(t *testing.T) {
	deps := newTestHandler(t)
	deps.analyzer.EXPECT().ListTrips(gomock.Any(), "u1").Return([]*models.Trip{{ID: uuid.New(), UserID: "u1"}}, nil).Times(1)

	w := makeRequest(deps.router, http.MethodGet, "/api/fetchtrip/u1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var trips []models.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trips))
	assert.Len(t, trips, 1)
}

func TestTravelInfo(t *testing.T) {
	deps := newTestHandler(t)
	deps.assistant.EXPECT().TravelInfo(gomock.Any(), "Goa").Return("<h1>Goa</h1>", nil).Times(1)

	w := makeRequest(deps.router, http.MethodPost, "/api/travelInfo", jsonBody(t, TravelInfoRequest{Query: "Goa"}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp TravelInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Goa", resp.Query)
	assert.Equal(t, "<h1>Goa</h1>", resp.Information)

	w = makeRequest(deps.router, http.MethodPost, "/api/travelInfo", bytes.NewBufferString(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Query is required")
}

func TestTravelInfo_UpstreamError(t *testing.T) {
	deps := newTestHandler(t)
	deps.assistant.EXPECT().TravelInfo(gomock.Any(), "Goa").
		Return("", fmt.Errorf("service: travel info generation failed: %w: %w", service.ErrUpstream, errors.New("quota"))).Times(1)

	w := makeRequest(deps.router, http.MethodPost, "/api/travelInfo", jsonBody(t, TravelInfoRequest{Query: "Goa"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "quota")
}

func TestGenerateForecast(t *testing.T) {
	deps := newTestHandler(t)
	deps.assistant.EXPECT().
		Forecast(gomock.Any(), models.ForecastRequest{Source: "Delhi", Destination: "Agra", Travelers: 2, Preference: "safe"}).
		Return("Sunny", nil).Times(1)

	w := makeRequest(deps.router, http.MethodPost, "/api/forecast/generate",
		jsonBody(t, ForecastRequest{Source: "Delhi", Destination: "Agra", Travelers: 2, Preference: "safe"}))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Sunny", resp.Data.Forecast)

	w = makeRequest(deps.router, http.MethodPost, "/api/forecast/generate",
		jsonBody(t, ForecastRequest{Source: "Delhi", Destination: "Agra", Preference: "teleport"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes_RequireAPIKey(t *testing.T) {
	deps := newTestHandler(t)
	deps.admin.EXPECT().GetStats(gomock.Any()).Times(0)

	w := makeRequest(deps.router, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")

	w = makeRequest(deps.router, http.MethodGet, "/api/admin/stats", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}

func TestGetStats(t *testing.T) {
	deps := newTestHandler(t)
	deps.admin.EXPECT().GetStats(gomock.Any()).Return(&models.Stats{IncidentCount: 5, ActivePlanners: 2}, nil).Times(2)

	w := makeRequest(deps.router, http.MethodGet, "/api/admin/stats", nil, map[string]string{"X-API-Key": "test-api-key"})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatsResponse{IncidentCount: 5, ActivePlanners: 2}, resp)

	w = makeRequest(deps.router, http.MethodGet, "/api/admin/stats", nil, map[string]string{"Authorization": "Bearer test-api-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCrime(t *testing.T) {
	deps := newTestHandler(t)
	deps.admin.EXPECT().
		CreateCrime(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, crime *models.Crime) error {
			assert.Equal(t, "Theft", crime.CrimeType)
			assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), crime.OccurredAt)
			crime.ID = uuid.New()
			return nil
		}).Times(1)

	w := makeRequest(deps.router, http.MethodPost, "/api/admin/crimes", jsonBody(t, CreateCrimeRequest{
		Latitude: floatPtr(12.97), Longitude: floatPtr(77.59), CrimeType: "Theft", Date: "2024-05-01",
	}), map[string]string{"X-API-Key": "test-api-key"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = makeRequest(deps.router, http.MethodPost, "/api/admin/crimes", jsonBody(t, CreateCrimeRequest{
		Latitude: floatPtr(12.97), Longitude: floatPtr(77.59), CrimeType: "Theft", Date: "yesterday",
	}), map[string]string{"X-API-Key": "test-api-key"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateWeatherAlert(t *testing.T) {
	deps := newTestHandler(t)
	deps.admin.EXPECT().
		CreateWeatherAlert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, alert *models.WeatherAlert) error {
			require.NotNil(t, alert.StartTime)
			assert.Nil(t, alert.EndTime)
			assert.Equal(t, models.AlertStorm, alert.AlertType)
			return nil
		}).Times(1)

	w := makeRequest(deps.router, http.MethodPost, "/api/admin/weather-alerts", jsonBody(t, CreateWeatherAlertRequest{
		Latitude: floatPtr(12.97), Longitude: floatPtr(77.59), AlertType: "Storm", Severity: "Severe", StartTime: "2024-06-10T06:00:00Z",
	}), map[string]string{"X-API-Key": "test-api-key"})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHealthCheck(t *testing.T) {
	deps := newTestHandler(t)

	w := makeRequest(deps.router, http.MethodGet, "/api/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
