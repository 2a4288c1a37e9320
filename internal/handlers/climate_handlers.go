package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"climate-api/internal/services"
	"climate-api/pkg/logging"
	"climate-api/pkg/metrics"
)

// Route templates, also used as metric labels
const (
	RouteHome          = "/"
	RouteHealth        = "/health"
	RoutePrecipitation = "/api/v1.0/precipitation"
	RouteStations      = "/api/v1.0/station"
	RouteTemperatures  = "/api/v1.0/tobs"
	RouteFromStart     = "/api/v1.0/{start}"
	RouteRange         = "/api/v1.0/{start}/{end}"
	RouteOpenAPI       = "/api/docs/openapi.json"
	RouteDocs          = "/api/docs"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ClimateHandler handles climate API endpoints
type ClimateHandler struct {
	climateService *services.ClimateService
	statsService   *services.StatisticsService
	health         HealthChecker
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewClimateHandler creates a new climate handler
func NewClimateHandler(
	climateService *services.ClimateService,
	statsService *services.StatisticsService,
	health HealthChecker,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ClimateHandler {
	return &ClimateHandler{
		climateService: climateService,
		statsService:   statsService,
		health:         health,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Climate API</title></head>
<body>
Available Routes:<br/>
{{range .}}{{.Path}} {{.Description}}<br/>
{{end}}</body>
</html>
`))

type routeDoc struct {
	Path        string
	Description string
}

var availableRoutes = []routeDoc{
	{RoutePrecipitation, "Precipitation by Station and Date"},
	{RouteStations, "Stations"},
	{RouteTemperatures, "Temperatures for the previous year"},
	{"/api/v1.0/<start>", "Minimum, average and maximum temperature from a given start date"},
	{"/api/v1.0/<start>/<end>", "Minimum, average and maximum temperature between a start date and an end date"},
}

// Home handles GET /
func (h *ClimateHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTemplate.Execute(w, availableRoutes); err != nil {
		h.logger.Error(r.Context(), "[API_HOME_ERROR] Failed to render route listing", logging.Fields{}, err)
	}
}

// GetPrecipitation handles GET /api/v1.0/precipitation
func (h *ClimateHandler) GetPrecipitation(w http.ResponseWriter, r *http.Request) {
	records, err := h.climateService.Precipitation(r.Context())
	if err != nil {
		h.sendError(w, r, RoutePrecipitation, err)
		return
	}

	h.sendJSON(w, records, http.StatusOK)
}

// GetStations handles GET /api/v1.0/station
func (h *ClimateHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	records, err := h.climateService.Stations(r.Context())
	if err != nil {
		h.sendError(w, r, RouteStations, err)
		return
	}

	h.sendJSON(w, records, http.StatusOK)
}

// GetTemperatures handles GET /api/v1.0/tobs
func (h *ClimateHandler) GetTemperatures(w http.ResponseWriter, r *http.Request) {
	records, err := h.climateService.TrailingYearTemperatures(r.Context())
	if err != nil {
		h.sendError(w, r, RouteTemperatures, err)
		return
	}

	h.sendJSON(w, records, http.StatusOK)
}

// GetStatisticsFrom handles GET /api/v1.0/{start}
func (h *ClimateHandler) GetStatisticsFrom(w http.ResponseWriter, r *http.Request) {
	start := mux.Vars(r)["start"]

	stats, err := h.statsService.StatisticsFrom(r.Context(), start)
	if err != nil {
		h.sendError(w, r, RouteFromStart, err)
		return
	}

	h.sendJSON(w, stats, http.StatusOK)
}

// GetStatisticsRange handles GET /api/v1.0/{start}/{end}
func (h *ClimateHandler) GetStatisticsRange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	stats, err := h.statsService.StatisticsBetween(r.Context(), vars["start"], vars["end"])
	if err != nil {
		h.sendError(w, r, RouteRange, err)
		return
	}

	h.sendJSON(w, stats, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ClimateHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.health.HealthCheck(ctx); err != nil {
		h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Backing store unreachable", logging.Fields{
			"error": err.Error(),
		})
		status["status"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{
		"status": status["status"],
	})
	h.sendJSON(w, status, code)
}

// sendJSON sends a JSON response
func (h *ClimateHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError maps a service error to a response. Request errors become 404
// with their message; anything else is a store failure and becomes a 500.
func (h *ClimateHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	ctx := r.Context()

	var reqErr *services.RequestError
	if errors.As(err, &reqErr) {
		errorType := errorTypeOf(reqErr)
		h.metrics.RecordAPIError(errorType, endpoint)
		h.logger.Info(ctx, "[API_REQUEST_REJECTED] Request rejected", logging.Fields{
			"endpoint":   endpoint,
			"error_type": errorType,
			"reason":     reqErr.Message,
		})
		h.sendJSON(w, ErrorResponse{Error: reqErr.Message}, http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIError("internal_error", endpoint)
	h.logger.Error(ctx, "[API_INTERNAL_ERROR] Request failed", logging.Fields{
		"endpoint": endpoint,
		"path":     r.URL.Path,
	}, err)
	h.sendJSON(w, ErrorResponse{Error: "internal server error"}, http.StatusInternalServerError)
}

func errorTypeOf(err *services.RequestError) string {
	switch {
	case errors.Is(err, services.ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, services.ErrInvertedRange):
		return "inverted_range"
	case errors.Is(err, services.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, services.ErrEmptyResult):
		return "empty_result"
	default:
		return "request_error"
	}
}

// RegisterRoutes registers all climate API routes. The fixed /api/v1.0 routes
// are registered before the {start} patterns so they match first.
func (h *ClimateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(RouteHome, h.Home).Methods("GET")
	router.HandleFunc(RouteHealth, h.HealthCheck).Methods("GET")
	router.HandleFunc(RouteOpenAPI, OpenAPISpec).Methods("GET")
	router.HandleFunc(RouteDocs, SwaggerUI).Methods("GET")

	router.HandleFunc(RoutePrecipitation, h.GetPrecipitation).Methods("GET")
	router.HandleFunc(RouteStations, h.GetStations).Methods("GET")
	router.HandleFunc(RouteTemperatures, h.GetTemperatures).Methods("GET")
	router.HandleFunc(RouteFromStart, h.GetStatisticsFrom).Methods("GET")
	router.HandleFunc(RouteRange, h.GetStatisticsRange).Methods("GET")
}
