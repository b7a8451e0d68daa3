package web

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func recvEvent(t *testing.T, ch <-chan string) StatusEvent {
	t.Helper()
	select {
	case msg := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return evt
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast")
		return StatusEvent{}
	}
}

func TestBroadcaster_SubscribeAndReceive(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Broadcast("info", "hello")

	evt := recvEvent(t, ch)
	if evt.Msg != "hello" {
		t.Errorf("msg = %q, want \"hello\"", evt.Msg)
	}
	if evt.Level != "info" {
		t.Errorf("level = %q, want \"info\"", evt.Level)
	}
}

func TestBroadcaster_MultipleSubscribers(t *testing.T) {
	b := NewStatusBroadcaster()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Broadcast("info", "multi")

	for i, ch := range []<-chan string{ch1, ch2} {
		evt := recvEvent(t, ch)
		if evt.Msg != "multi" {
			t.Errorf("subscriber %d: msg = %q, want \"multi\"", i, evt.Msg)
		}
	}
}

func TestBroadcaster_ReplaysBacklogToNewSubscriber(t *testing.T) {
	b := NewStatusBroadcaster()

	b.BroadcastMsg("first")
	b.BroadcastMsg("second")

	ch, unsub := b.Subscribe()
	defer unsub()

	if evt := recvEvent(t, ch); evt.Msg != "first" {
		t.Errorf("replay[0] = %q, want \"first\"", evt.Msg)
	}
	if evt := recvEvent(t, ch); evt.Msg != "second" {
		t.Errorf("replay[1] = %q, want \"second\"", evt.Msg)
	}
}

func TestBroadcaster_BacklogCapped(t *testing.T) {
	b := NewStatusBroadcaster()
	for i := 0; i < replayDepth+10; i++ {
		b.BroadcastMsg(fmt.Sprintf("event-%d", i))
	}

	ch, unsub := b.Subscribe()
	defer unsub()

	// The oldest replayed event is the one just inside the window.
	if evt := recvEvent(t, ch); evt.Msg != "event-10" {
		t.Errorf("first replayed = %q, want \"event-10\"", evt.Msg)
	}
}

func TestBroadcaster_UnsubscribeStops(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	unsub()

	b.Broadcast("info", "after-unsubscribe")

	if msg, ok := <-ch; ok {
		t.Errorf("received %q on a closed subscription", msg)
	}
}

func TestBroadcaster_ErrorLevel(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.BroadcastError(fmt.Errorf("wall intersection failed"))

	evt := recvEvent(t, ch)
	if evt.Level != "error" {
		t.Errorf("level = %q, want \"error\"", evt.Level)
	}
	if evt.Msg != "wall intersection failed" {
		t.Errorf("msg = %q", evt.Msg)
	}

	// nil errors broadcast nothing.
	b.BroadcastError(nil)
	select {
	case msg := <-ch:
		t.Errorf("unexpected broadcast %q for nil error", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastWriter_TrimsAndForwards(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	w := BroadcastWriter(b)
	if _, err := w.Write([]byte("  line from debug log\n")); err != nil {
		t.Fatal(err)
	}

	evt := recvEvent(t, ch)
	if evt.Msg != "line from debug log" {
		t.Errorf("msg = %q, want trimmed line", evt.Msg)
	}

	// Whitespace-only writes are dropped.
	if _, err := w.Write([]byte("\n\n")); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected broadcast %q for blank write", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
