package progress

import (
	"context"
	"log/slog"

	"github.com/juju/clock"
	"github.com/juju/pubsub/v2"
	"github.com/kurochkinivan/member_uploader/internal/domain"
)

// Publisher relays job lifecycle events over an in-process hub. Each event name is a
// topic; subscribers receive events in publication order.
type Publisher struct {
	hub   *pubsub.SimpleHub
	clock clock.Clock
}

func NewPublisher(hub *pubsub.SimpleHub, clk clock.Clock) *Publisher {
	return &Publisher{
		hub:   hub,
		clock: clk,
	}
}

func (p *Publisher) Publish(name domain.EventName, jobID string, payload map[string]any) {
	_ = p.hub.Publish(string(name), domain.Event{
		Name:    name,
		JobID:   jobID,
		At:      p.clock.Now(),
		Payload: payload,
	})
}

// Subscribe delivers every event to handler until the returned func is called.
func (p *Publisher) Subscribe(handler func(domain.Event)) func() {
	return p.hub.SubscribeMatch(isEventTopic, func(_ string, data interface{}) {
		if ev, ok := data.(domain.Event); ok {
			handler(ev)
		}
	})
}

// SubscribeJob delivers only the events of one job.
func (p *Publisher) SubscribeJob(jobID string, handler func(domain.Event)) func() {
	return p.Subscribe(func(ev domain.Event) {
		if ev.JobID == jobID {
			handler(ev)
		}
	})
}

func isEventTopic(topic string) bool {
	for _, name := range domain.EventNames {
		if topic == string(name) {
			return true
		}
	}
	return false
}

// EventLog writes every event to the structured log.
type EventLog struct {
	log       *slog.Logger
	publisher *Publisher
}

func NewEventLog(log *slog.Logger, publisher *Publisher) *EventLog {
	return &EventLog{
		log:       log,
		publisher: publisher,
	}
}

func (l *EventLog) Run(ctx context.Context) error {
	unsubscribe := l.publisher.Subscribe(func(ev domain.Event) {
		attrs := []any{
			slog.String("event", string(ev.Name)),
			slog.String("job_id", ev.JobID),
		}
		for k, v := range ev.Payload {
			attrs = append(attrs, slog.Any(k, v))
		}

		level := slog.LevelInfo
		if ev.Name == domain.EventJobProgress {
			level = slog.LevelDebug
		}
		l.log.Log(ctx, level, "job event", attrs...)
	})
	defer unsubscribe()

	<-ctx.Done()
	return nil
}
