package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/lukasbauer/voicelab/internal/costs"
)

// maxSynthesizeBody bounds the JSON request body, not the text length;
// text limits are left to the provider.
const maxSynthesizeBody = 1 << 20

type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// handleSynthesize forwards {text, voiceId} to the provider and streams back MPEG audio.
func (r *Router) handleSynthesize(w http.ResponseWriter, req *http.Request) {
	if !r.inflight.Add() {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer r.inflight.Done()
	r.metrics.InflightInc()
	defer r.metrics.InflightDec()

	id := requestID(req)

	apiKey, err := r.cfg.Credentials.APIKey()
	if err != nil {
		r.logger.Printf("synthesize[%s]: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var body synthesizeRequest
	if err := json.NewDecoder(io.LimitReader(req.Body, maxSynthesizeBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	est := costs.EstimateSynthesis(body.Text)
	r.metrics.RecordSynthesis(est.Characters, est.Cents)
	r.logger.Printf("synthesize[%s]: voice=%s chars=%d est_cost=%dc", id, body.VoiceID, est.Characters, est.CostCents)

	started := time.Now()
	audio, err := r.provider.Synthesize(req.Context(), apiKey, body.VoiceID, body.Text)
	r.metrics.ObserveProvider("synthesize", started)
	if err != nil {
		r.logger.Printf("synthesize[%s]: failed to fetch audio: %v", id, err)
		captureError(req, err, "synthesize: provider error")
		writeError(w, http.StatusInternalServerError, "Failed to fetch audio")
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	n, err := io.Copy(w, audio)
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		r.logger.Printf("synthesize[%s]: copy interrupted after %d bytes: %v", id, n, err)
		return
	}
	r.logger.Printf("synthesize[%s]: sent %d bytes", id, n)
}
