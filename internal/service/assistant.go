package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shenikar/travel_safety_system/internal/markup"
	"github.com/shenikar/travel_safety_system/internal/models"
	"github.com/sirupsen/logrus"
)

// TextGenerator - внешняя генеративная модель
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// AssistantService формирует запросы к модели и форматирует ответы
type AssistantService interface {
	TravelInfo(ctx context.Context, query string) (string, error)
	Forecast(ctx context.Context, req models.ForecastRequest) (string, error)
}

var forecastPreferences = map[string]string{
	"fast":     "fastest",
	"safe":     "safest",
	"scenic":   "most scenic",
	"balanced": "balanced",
}

type assistantService struct {
	generator TextGenerator
	logger    *logrus.Logger
}

func NewAssistantService(generator TextGenerator, logger *logrus.Logger) AssistantService {
	return &assistantService{
		generator: generator,
		logger:    logger,
	}
}

func travelInfoPrompt(query string) string {
	return fmt.Sprintf("Provide detailed travel information about %s. Format text with markdown-like syntax (headings, bullet points, bold).", query)
}

// TravelInfo возвращает справку о месте в виде HTML
func (s *assistantService) TravelInfo(ctx context.Context, query string) (string, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "assistant",
		"method":  "TravelInfo",
		"query":   query,
	})

	if strings.TrimSpace(query) == "" {
		return "", invalidParam("query is required")
	}

	text, err := s.generator.GenerateContent(ctx, travelInfoPrompt(query))
	if err != nil {
		log.WithError(err).Error("Failed to generate travel information")
		return "", upstream("service: travel info generation failed", err)
	}

	log.Info("Travel information generated")
	return markup.ToHTML(text), nil
}

func forecastPrompt(req models.ForecastRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a travel forecast for a trip from %s to %s", req.Source, req.Destination)
	if req.StartDate != "" && req.EndDate != "" {
		fmt.Fprintf(&b, " between %s and %s", req.StartDate, req.EndDate)
	} else if req.StartDate != "" {
		fmt.Fprintf(&b, " starting %s", req.StartDate)
	}
	if req.Travelers > 0 {
		fmt.Fprintf(&b, " for %d traveler(s)", req.Travelers)
	}
	if pref, ok := forecastPreferences[req.Preference]; ok {
		fmt.Fprintf(&b, ", preferring the %s route", pref)
	}
	b.WriteString(". Cover expected weather, safety considerations, crowd levels, estimated travel time and recommended precautions. Use short headings and bullet points.")
	return b.String()
}

// Forecast возвращает прогноз поездки в виде простого текста
func (s *assistantService) Forecast(ctx context.Context, req models.ForecastRequest) (string, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "assistant",
		"method":      "Forecast",
		"source":      req.Source,
		"destination": req.Destination,
	})

	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Destination) == "" {
		return "", invalidParam("source and destination are required")
	}
	if req.Preference != "" {
		if _, ok := forecastPreferences[req.Preference]; !ok {
			return "", invalidParam("unknown route preference %q", req.Preference)
		}
	}

	text, err := s.generator.GenerateContent(ctx, forecastPrompt(req))
	if err != nil {
		log.WithError(err).Error("Failed to generate forecast")
		return "", upstream("service: forecast generation failed", err)
	}

	log.Info("Forecast generated")
	return markup.ToPlainText(text), nil
}
