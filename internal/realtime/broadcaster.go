package realtime

import "context"

// Broadcaster pushes room snapshots to whoever is watching the room's
// realtime channel. Delivery is fire and forget: the core never waits on or
// retries a broadcast. Implementations are injected into the service layer;
// there is no process-wide emitter.
type Broadcaster interface {
	BroadcastRoom(ctx context.Context, roomID string, payload any)
}

// NopBroadcaster discards every broadcast. Used in tests and in deployments
// without a realtime channel.
type NopBroadcaster struct{}

// BroadcastRoom does nothing.
func (NopBroadcaster) BroadcastRoom(ctx context.Context, roomID string, payload any) {}
