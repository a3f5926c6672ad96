package notify

import (
	"context"
	"encoding/json"
	"testing"
)

func TestLocalDeliversOnlyToRoomSubscribers(t *testing.T) {
	b := NewLocal()
	var gotA, gotB []Event
	cancelA, _ := b.Subscribe("AAAAAA", func(ev Event) { gotA = append(gotA, ev) })
	defer cancelA()
	cancelB, _ := b.Subscribe("BBBBBB", func(ev Event) { gotB = append(gotB, ev) })
	defer cancelB()

	_ = b.Publish(context.Background(), Event{Kind: Updated, Code: "AAAAAA", Version: 2})

	if len(gotA) != 1 || gotA[0].Version != 2 {
		t.Fatalf("expected one event for A, got %+v", gotA)
	}
	if len(gotB) != 0 {
		t.Fatalf("expected nothing for B, got %+v", gotB)
	}
}

func TestLocalCancelIsIdempotent(t *testing.T) {
	b := NewLocal()
	calls := 0
	cancel, _ := b.Subscribe("CODE12", func(Event) { calls++ })

	cancel()
	cancel()
	_ = b.Publish(context.Background(), Event{Kind: Deleted, Code: "CODE12"})

	if calls != 0 {
		t.Fatalf("expected no calls after cancel, got %d", calls)
	}
	if n := b.Subscribers("CODE12"); n != 0 {
		t.Fatalf("expected subscriber map cleaned up, got %d", n)
	}
}

func TestEventJSONShape(t *testing.T) {
	ev := Event{Kind: Created, Code: "ABC123", Version: 1, State: json.RawMessage(`{"a":1}`)}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != "created" || m["roomId"] != "ABC123" {
		t.Fatalf("unexpected json: %s", data)
	}
	if Subject("ABC123") != "arcade.rooms.ABC123" {
		t.Fatalf("unexpected subject %q", Subject("ABC123"))
	}
}
