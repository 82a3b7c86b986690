package handlers

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miniinbox/inbox/internal/clock"
)

// ClockHandler streams the header clock as server-sent events.
type ClockHandler struct {
	ctx      context.Context
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewClockHandler constructs handler. Streams end when ctx is cancelled, which
// main does on shutdown.
func NewClockHandler(ctx context.Context, interval time.Duration, now func() time.Time, logger *zap.Logger) *ClockHandler {
	return &ClockHandler{ctx: ctx, interval: interval, now: now, logger: logger}
}

// Stream GET /clock.
func (h *ClockHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		err := clock.Stream(h.ctx, h.interval, h.now, func(now string) error {
			if _, err := fmt.Fprintf(w, "data: %s\n\n", now); err != nil {
				return err
			}
			return w.Flush()
		})
		h.logger.Debug("clock stream closed", zap.Error(err))
	})
	return nil
}
