package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-go-api/internal/service"
)

// LiveFeedHandler streams scored submissions to websocket clients, one feed
// per quiz.
type LiveFeedHandler struct {
	feed   service.LiveFeedService
	logger zerolog.Logger
}

// NewLiveFeedHandler builds a live feed handler instance.
func NewLiveFeedHandler(feed service.LiveFeedService, logger zerolog.Logger) *LiveFeedHandler {
	return &LiveFeedHandler{
		feed:   feed,
		logger: logger.With().Str("component", "live_feed_handler").Logger(),
	}
}

// Register attaches the websocket route to the provided router group.
func (h *LiveFeedHandler) Register(router fiber.Router) {
	router.Use("/:id/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/live", websocket.New(h.stream))
}

func (h *LiveFeedHandler) stream(conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	quizID, err := strconv.ParseUint(conn.Params("id"), 10, 64)
	if err != nil || quizID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "invalid quiz id"))
		return
	}

	events, cancel := h.feed.Subscribe(uint(quizID))
	defer cancel()

	// Reads only serve to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Uint64("quiz_id", quizID).Msg("live feed client write failed")
				return
			}
		case <-closed:
			return
		}
	}
}
