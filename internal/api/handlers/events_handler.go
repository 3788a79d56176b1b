package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"github.com/vladimiradmaev/health-records/internal/api/middleware"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/interfaces"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

// Server-sent event names
const (
	EventVaccines    = "vaccines"
	EventSuggestions = "suggestions"
	EventDiet        = "diet"
)

type (
	EventsHandler interface {
		Stream(c *fiber.Ctx) error
	}

	eventsHandler struct {
		subscriber interfaces.SnapshotSubscriber
		heartbeat  time.Duration
		shutdown   context.Context
	}

	sseEvent struct {
		name string
		data []byte
	}
)

// NewEventsHandler streams snapshots until the client leaves or shutdown is cancelled
func NewEventsHandler(shutdown context.Context, subscriber interfaces.SnapshotSubscriber, heartbeat time.Duration) EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &eventsHandler{
		subscriber: subscriber,
		heartbeat:  heartbeat,
		shutdown:   shutdown,
	}
}

// Stream sends the full vaccines, suggestions and diet collections on connect
// and again after each change
func (h *eventsHandler) Stream(c *fiber.Ctx) error {
	accountID := middleware.AccountID(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx, cancel := context.WithCancel(h.shutdown)
	out := make(chan sseEvent, 8)
	push := func(name string, v interface{}) {
		data, err := json.Marshal(v)
		if err != nil {
			logger.Error("Failed to encode snapshot", "account_id", accountID, "event", name, "error", err)
			return
		}
		select {
		case out <- sseEvent{name: name, data: data}:
		case <-ctx.Done():
		}
	}

	unsubscribe := []func(){
		h.subscriber.SubscribeVaccines(ctx, accountID, func(v []domain.Vaccine) { push(EventVaccines, v) }),
		h.subscriber.SubscribeSuggestions(ctx, accountID, func(s []domain.Suggestion) { push(EventSuggestions, s) }),
		h.subscriber.SubscribeDietEntries(ctx, accountID, func(d []domain.DietEntry) { push(EventDiet, d) }),
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			for _, fn := range unsubscribe {
				fn()
			}
			cancel()
		}()

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-out:
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				logger.Debug("Event stream closed", "account_id", accountID, "error", err)
				return
			}
		}
	}))

	return nil
}
