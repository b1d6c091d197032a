package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lukasbauer/voicelab/internal/costs"
)

// Default origin check: only same-origin pages may open the stream.
var upgrader = websocket.Upgrader{}

const (
	streamRequestTimeout = 10 * time.Second
	streamWriteTimeout   = 10 * time.Second
)

// streamEvent is the JSON text frame sent around the binary audio frames.
type streamEvent struct {
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleSynthesizeStream upgrades to a WebSocket, reads one {text, voiceId}
// frame and relays audio chunks from the provider's streaming endpoint as
// binary frames, followed by {"done":true}.
func (r *Router) handleSynthesizeStream(w http.ResponseWriter, req *http.Request) {
	if !r.inflight.Add() {
		r.metrics.RecordRequest("stream", http.StatusServiceUnavailable)
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer r.inflight.Done()
	r.metrics.InflightInc()
	defer r.metrics.InflightDec()

	id := requestID(req)

	apiKey, err := r.cfg.Credentials.APIKey()
	if err != nil {
		r.logger.Printf("stream[%s]: %v", id, err)
		r.metrics.RecordRequest("stream", http.StatusInternalServerError)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Printf("stream[%s]: upgrade failed: %v", id, err)
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(streamRequestTimeout))
	var body synthesizeRequest
	if err := conn.ReadJSON(&body); err != nil {
		r.logger.Printf("stream[%s]: failed to read request: %v", id, err)
		r.metrics.RecordRequest("stream", http.StatusBadRequest)
		r.closeStream(conn, streamEvent{Error: "invalid request body"})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	est := costs.EstimateSynthesis(body.Text)
	r.metrics.RecordSynthesis(est.Characters, est.Cents)
	r.logger.Printf("stream[%s]: voice=%s chars=%d est_cost=%dc", id, body.VoiceID, est.Characters, est.CostCents)

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	started := time.Now()
	chunks, err := r.provider.SynthesizeStream(ctx, apiKey, body.VoiceID, body.Text)
	if err != nil {
		r.metrics.ObserveProvider("stream", started)
		r.logger.Printf("stream[%s]: failed to fetch audio: %v", id, err)
		captureError(req, err, "stream: provider error")
		r.metrics.RecordRequest("stream", http.StatusInternalServerError)
		r.closeStream(conn, streamEvent{Error: "Failed to fetch audio"})
		return
	}

	var sent int
	for chunk := range chunks {
		if chunk.Err != nil {
			r.metrics.ObserveProvider("stream", started)
			r.logger.Printf("stream[%s]: provider stream broke after %d bytes: %v", id, sent, chunk.Err)
			captureError(req, chunk.Err, "stream: provider stream interrupted")
			r.metrics.RecordRequest("stream", http.StatusInternalServerError)
			r.closeStream(conn, streamEvent{Error: "Failed to fetch audio"})
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteMessage(websocket.BinaryMessage, chunk.Data); err != nil {
			r.logger.Printf("stream[%s]: write failed after %d bytes: %v", id, sent, err)
			return
		}
		sent += len(chunk.Data)
	}
	r.metrics.ObserveProvider("stream", started)

	r.logger.Printf("stream[%s]: sent %d bytes", id, sent)
	r.metrics.RecordRequest("stream", http.StatusOK)
	r.closeStream(conn, streamEvent{Done: true})
}

// closeStream sends a final event and a normal close frame.
func (r *Router) closeStream(conn *websocket.Conn, ev streamEvent) {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	_ = conn.WriteJSON(ev)
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
