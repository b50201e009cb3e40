package mood_test

import (
	"math"
	"testing"
	"time"

	moodmodel "github.com/calmana/backend/internal/model/mood"
	mood "github.com/calmana/backend/internal/service/mood"
)

func TestLatestRequiresThreshold(t *testing.T) {
	store := mood.NewStore(1.0, 8, nil)

	store.Publish(moodmodel.Observation{Emotion: "sad", Confidence: 0.4})
	if _, ok := store.Latest(); ok {
		t.Fatal("low-confidence sample must not set the last-known emotion")
	}

	store.Publish(moodmodel.Observation{Emotion: "sad", Confidence: 0.8})
	latest, ok := store.Latest()
	if !ok {
		t.Fatal("expected last-known emotion after confident sample")
	}
	if latest.Emotion != "sad" {
		t.Fatalf("unexpected emotion: %s", latest.Emotion)
	}
}

func TestSmoothingBlendsConfidence(t *testing.T) {
	store := mood.NewStore(0.5, 8, nil)

	store.Publish(moodmodel.Observation{Emotion: "happy", Confidence: 1.0})
	stored := store.Publish(moodmodel.Observation{Emotion: "happy", Confidence: 0.0})

	// 0.5*0 + 0.5*(0.5*1.0) = 0.25
	if math.Abs(stored.Confidence-0.25) > 1e-9 {
		t.Fatalf("unexpected smoothed confidence: %f", stored.Confidence)
	}
}

func TestDominantEmotionWins(t *testing.T) {
	store := mood.NewStore(1.0, 8, nil)

	store.Publish(moodmodel.Observation{Emotion: "happy", Confidence: 0.9})
	stored := store.Publish(moodmodel.Observation{Emotion: "sad", Confidence: 0.3})

	if stored.Emotion != "happy" {
		t.Fatalf("expected dominant smoothed emotion, got %s", stored.Emotion)
	}
}

func TestRecentRingBound(t *testing.T) {
	store := mood.NewStore(1.0, 4, nil)

	for i := 0; i < 10; i++ {
		store.Publish(moodmodel.Observation{Emotion: "neutral", Confidence: 0.6})
	}

	recent := store.Recent()
	if len(recent) != 4 {
		t.Fatalf("expected ring capped at 4, got %d", len(recent))
	}
}

func TestSubscribeReceivesObservations(t *testing.T) {
	store := mood.NewStore(1.0, 8, nil)

	feed := store.Subscribe()
	defer store.Unsubscribe(feed)

	store.Publish(moodmodel.Observation{Emotion: "happy", Confidence: 0.9})

	select {
	case observation := <-feed:
		if observation.Emotion != "happy" {
			t.Fatalf("unexpected emotion on feed: %s", observation.Emotion)
		}
	case <-time.After(time.Second):
		t.Fatal("expected observation on the live feed")
	}
}

func TestPublishDefaultsTimestamp(t *testing.T) {
	store := mood.NewStore(1.0, 8, nil)

	stored := store.Publish(moodmodel.Observation{Emotion: "neutral", Confidence: 0.6})
	if stored.Timestamp.IsZero() {
		t.Fatal("expected timestamp to default to now")
	}
}
