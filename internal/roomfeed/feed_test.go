package roomfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestFeed(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	f, err := Dial(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), "rooms", time.Minute)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f, mr
}

func TestLiveIndex(t *testing.T) {
	f, mr := newTestFeed(t)
	ctx := context.Background()

	if err := f.MarkLive(ctx, "r1"); err != nil {
		t.Fatalf("MarkLive: %v", err)
	}
	if err := f.MarkLive(ctx, "r2"); err != nil {
		t.Fatalf("MarkLive: %v", err)
	}
	if err := f.MarkEnded(ctx, "r1"); err != nil {
		t.Fatalf("MarkEnded: %v", err)
	}
	rooms, err := f.LiveRooms(ctx)
	if err != nil {
		t.Fatalf("LiveRooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0] != "r2" {
		t.Fatalf("live rooms: %v", rooms)
	}
	if ttl := mr.TTL("rooms:live"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl on live set, got %v", ttl)
	}
}

func TestPublishDeliversAndStamps(t *testing.T) {
	f, _ := newTestFeed(t)
	ctx := context.Background()

	sub := f.rdb.Subscribe(ctx, f.Channel())
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, _ := json.Marshal(map[string]string{"san": "e4"})
	if err := f.Publish(ctx, Event{Type: "move_made", RoomID: "r1", At: at, Data: data}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage: %v", err)
	}
	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != "move_made" || ev.RoomID != "r1" || !ev.At.Equal(at) {
		t.Fatalf("event: %+v", ev)
	}

	last, ok, err := f.LastActivity(ctx, "r1")
	if err != nil || !ok || !last.Equal(at) {
		t.Fatalf("LastActivity: %v %v %v", last, ok, err)
	}
	if _, ok, _ := f.LastActivity(ctx, "other"); ok {
		t.Fatalf("unexpected activity for unknown room")
	}
}

func TestDialErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Dial(ctx, "", "rooms", 0); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := Dial(ctx, "::not a url", "rooms", 0); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNopFeed(t *testing.T) {
	var f Feed = Nop{}
	if err := f.Publish(context.Background(), Event{Type: "x"}); err != nil {
		t.Fatalf("Nop.Publish: %v", err)
	}
}
