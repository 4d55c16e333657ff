package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// EventsHandler streams hub events to the presentation layer as
// server-sent events, one per emitted event.
type EventsHandler struct {
	hub *Hub
	log *zap.Logger
}

func NewEventsHandler(hub *Hub, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		log: log.Named("events"),
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.hub.Subscribe()
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}

			if err := writeEvent(w, msg); err != nil {
				h.log.Debug("failed to write event", zap.Error(err))
				return
			}

			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, msg Message) error {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", msg.Event, err)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, data)
	return err
}
