package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitToConnectedUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	client := &Client{hub: hub, userID: "u1", send: make(chan []byte, 1)}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.IsConnected("u1")
	}, time.Second, 10*time.Millisecond)

	hub.EmitToUser("u1", "match:new", map[string]string{"matchId": "m1"})

	select {
	case raw := <-client.send:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "match:new", ev.Event)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
}

func TestEmitToOfflineUserIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	// no panic, no delivery target
	hub.EmitToUser("ghost", "match:new", nil)
	assert.False(t, hub.IsConnected("ghost"))
}

func TestUnregisterTracksPresenceCallbacks(t *testing.T) {
	hub := NewHub()
	connected := make(chan string, 1)
	disconnected := make(chan string, 1)
	hub.OnConnect = func(userID string) { connected <- userID }
	hub.OnDisconnect = func(userID string) { disconnected <- userID }
	go hub.Run()
	defer hub.Shutdown()

	client := &Client{hub: hub, userID: "u1", send: make(chan []byte, 1)}
	hub.register <- client

	select {
	case id := <-connected:
		assert.Equal(t, "u1", id)
	case <-time.After(time.Second):
		t.Fatal("expected connect callback")
	}

	hub.unregister <- client

	select {
	case id := <-disconnected:
		assert.Equal(t, "u1", id)
	case <-time.After(time.Second):
		t.Fatal("expected disconnect callback")
	}
	assert.False(t, hub.IsConnected("u1"))
}
