package chat

import (
	"encoding/json"
	"testing"
	"time"
)

// recvEvent pops the next queued outbound event for a client, failing the
// test if none arrives promptly.
func recvEvent(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case b := <-c.send:
		var f Frame
		if err := json.Unmarshal(b, &f); err != nil {
			t.Fatalf("failed to decode outbound event %s: %v", b, err)
		}
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound event")
	}
	return Frame{}
}

func expectNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.send:
		t.Fatalf("unexpected outbound event: %s", b)
	default:
	}
}

func TestHubJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newClient(nil, 5)
	hub.Register(c)

	hub.Join(c, PersonalRoom(5))
	hub.Join(c, PersonalRoom(5))
	hub.Join(c, PersonalRoom(5))

	if got := hub.RoomSize(PersonalRoom(5)); got != 1 {
		t.Errorf("room size after repeated joins = %d, want 1", got)
	}
}

func TestHubJoinRequiresRegistration(t *testing.T) {
	hub := NewHub()
	c := newClient(nil, 5)

	hub.Join(c, PersonalRoom(5))

	if got := hub.RoomSize(PersonalRoom(5)); got != 0 {
		t.Errorf("unregistered client joined a room: room size = %d, want 0", got)
	}
}

func TestHubBroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub()
	member := newClient(nil, 5)
	outsider := newClient(nil, 9)
	hub.Register(member)
	hub.Register(outsider)
	hub.Join(member, "conversation:5-9")

	hub.Broadcast("conversation:5-9", EventNewMessage, typingEvent{SenderID: 5})

	f := recvEvent(t, member)
	if f.Event != EventNewMessage {
		t.Errorf("member received event %q, want %q", f.Event, EventNewMessage)
	}
	expectNoEvent(t, outsider)
}

func TestHubBroadcastToEmptyRoomIsNoOp(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(PersonalRoom(404), EventUserTyping, typingEvent{SenderID: 1})
}

func TestHubUnregisterLeavesEveryRoom(t *testing.T) {
	hub := NewHub()
	c := newClient(nil, 5)
	hub.Register(c)
	hub.Join(c, PersonalRoom(5))
	hub.Join(c, "conversation:5-9")

	hub.Unregister(c)

	if got := hub.RoomSize(PersonalRoom(5)); got != 0 {
		t.Errorf("personal room size after unregister = %d, want 0", got)
	}
	if got := hub.RoomSize("conversation:5-9"); got != 0 {
		t.Errorf("conversation room size after unregister = %d, want 0", got)
	}

	// Events addressed to a closed connection are dropped, not queued.
	hub.Broadcast(PersonalRoom(5), EventUserTyping, typingEvent{SenderID: 9})
	c.Send(EventUserTyping, typingEvent{SenderID: 9})
	expectNoEvent(t, c)
}

func TestHubBroadcastNeverBlocksOnSlowClient(t *testing.T) {
	hub := NewHub()
	slow := newClient(nil, 5)
	hub.Register(slow)
	hub.Join(slow, PersonalRoom(5))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < sendQueueSize*2; i++ {
			hub.Broadcast(PersonalRoom(5), EventUserTyping, typingEvent{SenderID: 9})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a client that never drains its queue")
	}
}
