package orderfeed

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
	}

	hub.register <- client

	ev := OrderEvent{Type: "order_created", OrderID: "abc123", TotalPrice: 54.99}
	data, _ := json.Marshal(ev)
	hub.Broadcast(data)

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	hub.unregister <- client
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// zero-buffer client that never reads
	slow := &Client{Send: make(chan []byte)}
	hub.register <- slow

	hub.Broadcast([]byte("one"))

	// the slow client must have been evicted; a healthy client still works
	ok := &Client{Send: make(chan []byte, 10)}
	hub.register <- ok
	hub.Broadcast([]byte("two"))

	select {
	case got := <-ok.Send:
		if string(got) != "two" {
			t.Fatalf("expected two, got %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for broadcast")
	}
}
