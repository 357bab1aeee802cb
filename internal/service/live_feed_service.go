package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-go-api/internal/dto"
	"github.com/noah-isme/classroom-go-api/internal/observability"
)

const scoreFeedBufferSize = 16

// LiveFeedService fans scored submissions out to websocket subscribers,
// keyed by quiz. Publishing never blocks the scoring path: slow subscribers
// drop events instead of stalling the writer.
type LiveFeedService interface {
	Publish(ctx context.Context, event dto.ScoreEvent)
	Subscribe(quizID uint) (<-chan dto.ScoreEvent, func())
	Start(ctx context.Context)
}

type liveFeedService struct {
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	broker      *scoreFeedBroker
	nodeID      string
}

type scoreFeedEvent struct {
	Source string         `json:"source"`
	Event  dto.ScoreEvent `json:"event"`
	SentAt time.Time      `json:"sent_at"`
}

type scoreFeedBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan dto.ScoreEvent]struct{}
}

// NewLiveFeedService constructs a live feed. natsConn may be nil; the feed
// then only reaches subscribers on this node.
func NewLiveFeedService(natsConn *nats.Conn, subject string, logger zerolog.Logger) LiveFeedService {
	return &liveFeedService{
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "live_feed_service").Logger(),
		broker: &scoreFeedBroker{
			subscribers: make(map[uint]map[chan dto.ScoreEvent]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *liveFeedService) Start(ctx context.Context) {
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *liveFeedService) Publish(ctx context.Context, event dto.ScoreEvent) {
	s.broker.broadcast(event.QuizID, event)

	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(scoreFeedEvent{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode score event")
		return
	}
	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.natsSubject).Msg("failed to publish score event")
	}
}

func (s *liveFeedService) Subscribe(quizID uint) (<-chan dto.ScoreEvent, func()) {
	channel := make(chan dto.ScoreEvent, scoreFeedBufferSize)

	s.broker.subscribe(quizID, channel)
	observability.LiveFeedClients().Inc()

	cleanup := func() {
		s.broker.unsubscribe(quizID, channel)
		observability.LiveFeedClients().Dec()
	}

	return channel, cleanup
}

func (s *liveFeedService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "classroom-score-feed", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("subject", s.natsSubject).Msg("failed to subscribe to score feed subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain score feed subscription")
		}
	}()
}

func (s *liveFeedService) handleEvent(payload []byte) {
	var event scoreFeedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid score feed payload")
		return
	}

	// Local subscribers already saw this node's events.
	if event.Source == s.nodeID {
		return
	}

	s.logger.Debug().Str("quiz_id", strconv.FormatUint(uint64(event.Event.QuizID), 10)).Msg("relaying remote score event")
	s.broker.broadcast(event.Event.QuizID, event.Event)
}

func (b *scoreFeedBroker) subscribe(quizID uint, ch chan dto.ScoreEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[quizID]; !exists {
		b.subscribers[quizID] = make(map[chan dto.ScoreEvent]struct{})
	}
	b.subscribers[quizID][ch] = struct{}{}
}

func (b *scoreFeedBroker) unsubscribe(quizID uint, ch chan dto.ScoreEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[quizID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, quizID)
		}
	}
}

func (b *scoreFeedBroker) broadcast(quizID uint, event dto.ScoreEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[quizID] {
		select {
		case ch <- event:
		default:
		}
	}
}
