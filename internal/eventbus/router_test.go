package eventbus

import (
	"testing"
	"time"
)

func TestRouterReplaysBacklogToLateSubscriber(t *testing.T) {
	router := NewRouter(WithSubscriberCapacity(4))
	first := Event{Type: ProviderStarted, RunID: "run-1", Provider: "discover-files"}
	second := Event{Type: ProviderCompleted, RunID: "run-1", Provider: "discover-files"}
	router.Publish(first)
	router.Publish(second)
	sub := router.Subscribe(AllTypes)
	defer sub.Close()
	got1 := <-sub.Events
	if got1.Type != first.Type {
		t.Fatalf("expected first buffered event, got %s", got1.Type)
	}
	got2 := <-sub.Events
	if got2.Type != second.Type {
		t.Fatalf("expected second buffered event, got %s", got2.Type)
	}
}

func TestRouterFiltersByType(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe(ProviderFailed)
	defer sub.Close()
	router.Publish(Event{Type: ProviderStarted, RunID: "run-1", Provider: "scan-archives"})
	router.Publish(Event{Type: ProviderFailed, RunID: "run-1", Provider: "scan-archives"})
	got := <-sub.Events
	if got.Type != ProviderFailed {
		t.Fatalf("unexpected event: %s", got.Type)
	}
	select {
	case extra := <-sub.Events:
		t.Fatalf("unexpected extra event: %s", extra.Type)
	default:
	}
}

func TestRouterDedupesIdenticalEvents(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe(AllTypes)
	defer sub.Close()
	event := Event{Type: ScheduleWarning, RunID: "run-1", Message: "ghost"}
	router.Publish(event)
	router.Publish(event)
	select {
	case got := <-sub.Events:
		if got.Message != "ghost" {
			t.Fatalf("unexpected event: %s", got.Message)
		}
	default:
		t.Fatalf("expected first delivery")
	}
	select {
	case <-sub.Events:
		t.Fatalf("duplicate event delivered")
	default:
	}
}

func TestRouterDropsInvalidEvents(t *testing.T) {
	router := NewRouter()
	sub := router.Subscribe(AllTypes)
	defer sub.Close()
	router.Publish(Event{Type: RunStarted}) // no run id
	router.Publish(Event{RunID: "run-1"})   // no type
	select {
	case got := <-sub.Events:
		t.Fatalf("invalid event delivered: %+v", got)
	default:
	}
}

func TestRouterKeepsCriticalEventOnOverflow(t *testing.T) {
	router := NewRouter(WithSubscriberCapacity(1))
	sub := router.Subscribe(AllTypes)
	defer sub.Close()
	oldest := Event{Type: ProviderStarted, RunID: "run-1", Provider: "a"}
	critical := Event{Type: ProviderFailed, RunID: "run-1", Provider: "a"}
	router.Publish(oldest)
	router.Publish(critical)
	if got := <-sub.Events; got.Type != ProviderFailed {
		t.Fatalf("expected critical event to replace oldest, got %s", got.Type)
	}
}

func TestRouterStampsEventsWithClock(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	router := NewRouter(WithClock(func() time.Time { return at }))
	sub := router.Subscribe(AllTypes)
	defer sub.Close()
	router.Publish(Event{Type: RunStarted, RunID: "run-1"})
	got := <-sub.Events
	if !got.At.Equal(at) {
		t.Fatalf("At = %v, want %v", got.At, at)
	}
}
