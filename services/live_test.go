package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryMultipleSessionsPerUser(t *testing.T) {
	r := NewLiveSessionRegistry()

	phone := r.Register(1)
	laptop := r.Register(1)
	require.NotEqual(t, phone.ID, laptop.ID)
	assert.True(t, r.Online(1))
	assert.Equal(t, 1, r.OnlineCount())

	delivered := r.SendToUser(1, Event{Type: NotifyChatMessage})
	assert.Equal(t, 2, delivered)

	r.Deregister(phone)
	assert.True(t, r.Online(1))
	r.Deregister(laptop)
	assert.False(t, r.Online(1))
	assert.Zero(t, r.OnlineCount())
}

func TestDeregisterIsIdempotent(t *testing.T) {
	r := NewLiveSessionRegistry()
	s := r.Register(5)
	r.Deregister(s)
	r.Deregister(s) // second call must not double-close the channel

	_, open := <-s.Events
	assert.False(t, open)
}

// A slow consumer drops events instead of blocking the sender; the rows are
// persisted anyway and the client reconciles by poll.
func TestSendToUserNeverBlocks(t *testing.T) {
	r := NewLiveSessionRegistry()
	s := r.Register(1)
	defer r.Deregister(s)

	for i := 0; i < sessionBuffer; i++ {
		require.Equal(t, 1, r.SendToUser(1, Event{Type: NotifyChatMessage, RefID: uint(i)}))
	}
	// Buffer full: the send returns immediately with zero deliveries.
	assert.Zero(t, r.SendToUser(1, Event{Type: NotifyChatMessage}))

	// Per-session order is the send order.
	first := <-s.Events
	assert.Equal(t, uint(0), first.RefID)
}

func TestSendToOfflineUser(t *testing.T) {
	r := NewLiveSessionRegistry()
	assert.Zero(t, r.SendToUser(42, Event{Type: NotifyBookingRequest}))
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewLiveSessionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			s := r.Register(userID % 4)
			r.SendToUser(userID%4, Event{Type: NotifyChatMessage})
			r.Deregister(s)
		}(uint(i))
	}
	wg.Wait()

	assert.Zero(t, r.OnlineCount())
}
