package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// register hands the client to the hub goroutine, which inserts it into the
// map asynchronously, so the first delivery is polled.
func deliverEventually(t *testing.T, hub *Hub, customerID string, payload []byte) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.deliver(customerID, payload)
	}, time.Second, time.Millisecond)
}

func TestHubDeliverToConnectedClient(t *testing.T) {
	hub := newHub()
	go hub.run()

	client := &Client{hub: hub, customerID: "42", send: make(chan []byte, 1)}
	hub.register <- client

	deliverEventually(t, hub, "42", []byte(`{"status":"SUCCESS"}`))
	assert.Equal(t, []byte(`{"status":"SUCCESS"}`), <-client.send)
}

func TestHubDeliverToAbsentCustomer(t *testing.T) {
	hub := newHub()
	go hub.run()

	assert.False(t, hub.deliver("404", []byte("event")))
}

func TestHubDeliverDropsForSlowConsumer(t *testing.T) {
	hub := newHub()
	go hub.run()

	client := &Client{hub: hub, customerID: "42", send: make(chan []byte, 1)}
	hub.register <- client

	deliverEventually(t, hub, "42", []byte("first"))
	// The buffer is full and nobody is draining it.
	assert.False(t, hub.deliver("42", []byte("second")))
}

func TestHubUnregisterIgnoresReplacedClient(t *testing.T) {
	hub := newHub()
	go hub.run()

	old := &Client{hub: hub, customerID: "42", send: make(chan []byte, 1)}
	hub.register <- old
	replacement := &Client{hub: hub, customerID: "42", send: make(chan []byte, 1)}
	hub.register <- replacement

	// The old connection's teardown must not evict the replacement.
	hub.unregister <- old
	assert.True(t, hub.deliver("42", []byte("event")))
}

func TestHubDeliverDuringReconnectStorm(t *testing.T) {
	hub := newHub()
	go hub.run()

	hub.register <- &Client{hub: hub, customerID: "42", send: make(chan []byte, 1)}

	// Deliveries racing reconnects must never hit a closed send channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			hub.deliver("42", []byte("event"))
		}
	}()
	for i := 0; i < 500; i++ {
		hub.register <- &Client{hub: hub, customerID: "42", send: make(chan []byte, 1)}
	}
	<-done
}
