package httpapi

import (
	"net/http"
	"time"
)

// handleListVoices relays the provider's voice catalog verbatim.
// Provider error details are logged but never returned to the caller.
func (r *Router) handleListVoices(w http.ResponseWriter, req *http.Request) {
	apiKey, err := r.cfg.Credentials.APIKey()
	if err != nil {
		r.logger.Printf("voices[%s]: %v", requestID(req), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	started := time.Now()
	body, err := r.provider.ListVoices(req.Context(), apiKey)
	r.metrics.ObserveProvider("voices", started)
	if err != nil {
		r.logger.Printf("voices[%s]: failed to fetch voices: %v", requestID(req), err)
		captureError(req, err, "voices: provider error")
		writeError(w, http.StatusInternalServerError, "Failed to fetch voices")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
