package api

import (
	"errors"
	"log/slog"
	"net/http"

	"trailgo/pkg/config"
)

// ConfigHandler handles configuration API requests.
type ConfigHandler struct {
	cfgProv config.Provider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(cfg config.Provider) *ConfigHandler {
	return &ConfigHandler{cfgProv: cfg}
}

// HandleConfig is a unified handler for all config-related methods, facilitating CORS/OPTIONS.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.HandleGetConfig(w, r)
	case http.MethodPut, http.MethodPost:
		h.HandleSetConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleGetConfig returns the effective runtime settings.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cfgProv.Settings(r.Context()))
}

// HandleSetConfig validates every submitted key before persisting any of them.
func (h *ConfigHandler) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for key, val := range req {
		validate, ok := config.RuntimeKeys[key]
		if !ok {
			writeError(w, http.StatusBadRequest, (&config.UnknownKeyError{Key: key}).Error())
			return
		}
		if err := validate(val); err != nil {
			writeError(w, http.StatusBadRequest, (&config.InvalidValueError{Key: key, Err: err}).Error())
			return
		}
	}

	ctx := r.Context()
	for key, val := range req {
		if err := h.cfgProv.Set(ctx, key, val); err != nil {
			var unknown *config.UnknownKeyError
			var invalid *config.InvalidValueError
			if errors.As(err, &unknown) || errors.As(err, &invalid) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeInternal(w, r, err)
			return
		}
		slog.Info("Setting updated", "key", key, "value", val)
	}

	h.HandleGetConfig(w, r)
}
