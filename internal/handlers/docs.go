package handlers

import (
	"encoding/json"
	"net/http"
)

func jsonContent(schema interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{"schema": schema},
	}
}

func arrayOf(ref string) map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": map[string]string{"$ref": "#/components/schemas/" + ref},
	}
}

func schemaRef(ref string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + ref}
}

func dateParam(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "path",
		"description": description,
		"required":    true,
		"schema":      map[string]string{"type": "string", "format": "date", "example": "2017-01-01"},
	}
}

var errorResponse = map[string]interface{}{
	"description": "Invalid, inverted or out-of-range date, or no matching data",
	"content":     jsonContent(schemaRef("Error")),
}

var internalErrorResponse = map[string]interface{}{
	"description": "Backing store failure",
	"content":     jsonContent(schemaRef("Error")),
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Climate API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	statsResponse := map[string]interface{}{
		"description": "Temperature statistics",
		"content":     jsonContent(schemaRef("TemperatureStatistics")),
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Climate API",
			"description": "Read-only precipitation, station and temperature data for the Hawaii weather station dataset",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			RoutePrecipitation: map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List precipitation",
					"description": "Every measurement's date, precipitation and station, in storage order",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content":     jsonContent(arrayOf("PrecipitationRecord")),
						},
						"500": internalErrorResponse,
					},
				},
			},
			RouteStations: map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List stations",
					"description": "Every station with its location",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content":     jsonContent(arrayOf("StationRecord")),
						},
						"500": internalErrorResponse,
					},
				},
			},
			RouteTemperatures: map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Trailing year temperatures",
					"description": "Temperature readings from the 365 days up to the latest date in the dataset",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Successful response",
							"content":     jsonContent(arrayOf("TemperatureRecord")),
						},
						"404": errorResponse,
						"500": internalErrorResponse,
					},
				},
			},
			RouteFromStart: map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Temperature statistics from a start date",
					"description": "Minimum, average and maximum temperature on or after start",
					"parameters": []map[string]interface{}{
						dateParam("start", "Start date (YYYY-MM-DD), must lie within the dataset"),
					},
					"responses": map[string]interface{}{
						"200": statsResponse,
						"404": errorResponse,
						"500": internalErrorResponse,
					},
				},
			},
			RouteRange: map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Temperature statistics over a date range",
					"description": "Minimum, average and maximum temperature between start and end, both inclusive",
					"parameters": []map[string]interface{}{
						dateParam("start", "Start date (YYYY-MM-DD), must lie within the dataset"),
						dateParam("end", "End date (YYYY-MM-DD), not before start"),
					},
					"responses": map[string]interface{}{
						"200": statsResponse,
						"404": errorResponse,
						"500": internalErrorResponse,
					},
				},
			},
			RouteHealth: map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check that the API can reach its backing store",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": jsonContent(map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"status":    map[string]string{"type": "string"},
									"timestamp": map[string]string{"type": "string", "format": "date-time"},
								},
							}),
						},
						"503": map[string]interface{}{"description": "Backing store unreachable"},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"PrecipitationRecord": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"date":          map[string]string{"type": "string", "format": "date"},
						"precipitation": map[string]interface{}{"type": "number", "nullable": true},
						"station":       map[string]string{"type": "string"},
					},
				},
				"StationRecord": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"station":   map[string]string{"type": "string"},
						"name":      map[string]string{"type": "string"},
						"latitude":  map[string]string{"type": "number"},
						"longitude": map[string]string{"type": "number"},
						"elevation": map[string]string{"type": "number"},
					},
				},
				"TemperatureRecord": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"date":        map[string]string{"type": "string", "format": "date"},
						"temperature": map[string]string{"type": "number"},
						"station":     map[string]string{"type": "string"},
					},
				},
				"TemperatureStatistics": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"Minimum Temperature": map[string]string{"type": "number"},
						"Average Temperature": map[string]string{"type": "number", "description": "Rounded to two decimals"},
						"Maximum Temperature": map[string]string{"type": "number"},
						"From Date":           map[string]string{"type": "string", "format": "date"},
						"To Date":             map[string]string{"type": "string", "format": "date"},
					},
				},
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error": map[string]string{"type": "string"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
