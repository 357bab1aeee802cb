package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-go-api/internal/dto"
)

func TestLiveFeedDeliversToQuizSubscribers(t *testing.T) {
	feed := NewLiveFeedService(nil, "", testLogger())

	events, cancel := feed.Subscribe(1)
	defer cancel()
	otherQuiz, cancelOther := feed.Subscribe(2)
	defer cancelOther()

	feed.Publish(context.Background(), dto.ScoreEvent{SubmissionID: 10, QuizID: 1, StudentID: 20, Score: 80})

	select {
	case event := <-events:
		require.Equal(t, uint(10), event.SubmissionID)
		require.InDelta(t, 80.0, event.Score, 0.001)
	case <-time.After(time.Second):
		t.Fatal("expected a score event")
	}

	select {
	case <-otherQuiz:
		t.Fatal("event leaked to a different quiz's feed")
	default:
	}
}

func TestLiveFeedUnsubscribeClosesChannel(t *testing.T) {
	feed := NewLiveFeedService(nil, "", testLogger())

	events, cancel := feed.Subscribe(1)
	cancel()

	_, open := <-events
	require.False(t, open)

	// Publishing after the last subscriber left must not panic.
	feed.Publish(context.Background(), dto.ScoreEvent{SubmissionID: 11, QuizID: 1})
}

func TestLiveFeedSlowSubscriberDropsEvents(t *testing.T) {
	feed := NewLiveFeedService(nil, "", testLogger())

	events, cancel := feed.Subscribe(1)
	defer cancel()

	// Fill past the buffer; the publisher must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < scoreFeedBufferSize*2; i++ {
			feed.Publish(context.Background(), dto.ScoreEvent{SubmissionID: uint(i + 1), QuizID: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	require.Len(t, events, scoreFeedBufferSize)
}
