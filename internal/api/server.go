package api

import (
	"log/slog"
	"net/http"
	"time"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, pathsH *PathHandler, weatherH *WeatherHandler, cfgH *ConfigHandler, streamH *StreamHandler, shutdown func()) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewMux(pathsH, weatherH, cfgH, streamH, shutdown),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers all routes. Nil handlers leave their routes unregistered.
func NewMux(pathsH *PathHandler, weatherH *WeatherHandler, cfgH *ConfigHandler, streamH *StreamHandler, shutdown func()) *http.ServeMux {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Logs Endpoint
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 3. Path Endpoints
	if pathsH != nil {
		mux.HandleFunc("GET /api/paths", pathsH.HandleList)
		mux.HandleFunc("POST /api/paths", pathsH.HandleCreate)
		mux.HandleFunc("POST /api/paths/merge", pathsH.HandleMerge)
		mux.HandleFunc("GET /api/paths/{id}", pathsH.HandleGet)
		mux.HandleFunc("PUT /api/paths/{id}", pathsH.HandleUpdate)
		mux.HandleFunc("DELETE /api/paths/{id}", pathsH.HandleDelete)
		mux.HandleFunc("GET /api/paths/{id}/points", pathsH.HandleGetPoints)
		mux.HandleFunc("POST /api/paths/{id}/points", pathsH.HandleAddPoints)
		mux.HandleFunc("POST /api/paths/{id}/points/move", pathsH.HandleMovePoints)
		mux.HandleFunc("DELETE /api/paths/{id}/points/{pointID}", pathsH.HandleDeletePoint)
		mux.HandleFunc("GET /api/paths/{id}/geojson", pathsH.HandleGeoJSON)
		mux.HandleFunc("POST /api/paths/{id}/simplify", pathsH.HandleSimplify)

		mux.HandleFunc("GET /api/backtrack", pathsH.HandleBacktrack)
		mux.HandleFunc("POST /api/backtrack/points", pathsH.HandleBacktrackPoint)
		mux.HandleFunc("POST /api/backtrack/end", pathsH.HandleBacktrackEnd)

		mux.HandleFunc("GET /api/altitudes", pathsH.HandleAltitudes)
	}

	// 4. Weather Endpoints
	if weatherH != nil {
		mux.HandleFunc("GET /api/weather/readings", weatherH.HandleReadings)
		mux.HandleFunc("POST /api/weather/readings", weatherH.HandleRecord)
		mux.HandleFunc("GET /api/weather/tendency", weatherH.HandleTendency)
		mux.HandleFunc("GET /api/weather/forecast", weatherH.HandleForecast)
		mux.HandleFunc("GET /api/weather/comfort", weatherH.HandleComfort)
	}

	// 5. Config Endpoints
	if cfgH != nil {
		mux.HandleFunc("/api/config", cfgH.HandleConfig)
	}

	// 6. Change Stream
	if streamH != nil {
		mux.Handle("GET /api/stream", streamH)
	}

	// 7. Shutdown Endpoint
	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// Let the response flush first
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}
