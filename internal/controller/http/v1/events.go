package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

const eventsBuffer = 64

type EventSubscriber interface {
	SubscribeJob(jobID string, handler func(domain.Event)) func()
}

// EventsHandler relays a job's progress events as server-sent events until the job
// reaches a terminal state or the client goes away.
type EventsHandler struct {
	log        *slog.Logger
	subscriber EventSubscriber
}

func NewEventsHandler(log *slog.Logger, subscriber EventSubscriber) *EventsHandler {
	return &EventsHandler{
		log:        log,
		subscriber: subscriber,
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if uuid.Validate(jobID) != nil {
		http.Error(w, domain.ErrJobNotFound.Error(), http.StatusNotFound)
		return
	}

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.DebugContext(r.Context(), "write deadline not cleared", slog.String("err", err.Error()))
	}

	events := make(chan domain.Event, eventsBuffer)
	unsubscribe := h.subscriber.SubscribeJob(jobID, func(ev domain.Event) {
		select {
		case events <- ev:
		default:
			// slow client, progress events are superseded by later ones anyway
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.ErrorContext(r.Context(), "failed to encode event", slog.String("err", err.Error()))
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
			if terminal(ev.Name) {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func terminal(name domain.EventName) bool {
	return name == domain.EventJobCompleted || name == domain.EventJobFailed || name == domain.EventJobCancelled
}
