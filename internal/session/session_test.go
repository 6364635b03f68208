package session

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/universe"
)

func TestSwitchFocusPreservesCameraPosition(t *testing.T) {
	positions := map[universe.ID]geom.Vec3{
		0: {},
		1: {X: 1.5e11, Y: 2e9},
		2: {X: -7e10, Y: 4e10, Z: 1e9},
	}

	sess := &Session{FocusedBody: 1, FocusOffset: geom.Vec3{X: 1e8, Y: -3e7, Z: 5e6}}
	before := sess.CameraPosition(positions)

	sess.SwitchFocus(2, positions)

	assert.Equal(t, universe.ID(2), sess.FocusedBody)
	after := sess.CameraPosition(positions)
	assert.Equal(t, before, after)

	// Switching again, including back to the original target, still holds.
	sess.SwitchFocus(0, positions)
	assert.Equal(t, before, sess.CameraPosition(positions))
}

func TestSwitchFocusMissingBodiesFallBackToOrigin(t *testing.T) {
	positions := map[universe.ID]geom.Vec3{1: {X: 5e10}}

	sess := &Session{FocusedBody: 99, FocusOffset: geom.Vec3{X: 1e9}}
	sess.SwitchFocus(1, positions)

	// Old focus resolved to the origin; the camera stays at origin+offset.
	assert.Equal(t, geom.Vec3{X: 1e9 - 5e10}, sess.FocusOffset)
}

func TestSwitchFocusResetsNaNOffset(t *testing.T) {
	positions := map[universe.ID]geom.Vec3{
		1: {X: math.NaN()},
		2: {X: 1e10},
	}

	sess := &Session{FocusedBody: 1, FocusOffset: geom.Vec3{X: 1e8}}
	sess.SwitchFocus(2, positions)

	assert.Equal(t, geom.Zero, sess.FocusOffset)
	assert.Equal(t, universe.ID(2), sess.FocusedBody)
}

func TestInMemoryServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)

	sess, err := svc.Create(ctx, universe.ID(3))
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, universe.ID(3), sess.FocusedBody)
	assert.Equal(t, geom.Zero, sess.FocusOffset)

	loaded, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.FocusedBody, loaded.FocusedBody)

	loaded.FocusedBody = 7
	require.NoError(t, svc.Save(ctx, loaded))

	reloaded, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, universe.ID(7), reloaded.FocusedBody)

	// The copy returned by Get is detached from the store.
	reloaded.FocusedBody = 9
	again, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, universe.ID(7), again.FocusedBody)

	_, err = svc.Get(ctx, "missing")
	assert.Error(t, err)
}

func TestInMemorySessionExpires(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)

	sess, err := svc.Create(ctx, universe.ID(1))
	require.NoError(t, err)

	// Backdate the stored expiry past the TTL.
	svc.mu.Lock()
	entry := svc.local[sess.ID]
	entry.expiresAt = time.Now().Add(-time.Minute)
	svc.local[sess.ID] = entry
	svc.mu.Unlock()

	_, err = svc.Get(ctx, sess.ID)
	assert.Error(t, err)

	// The expired entry is dropped, not just hidden.
	svc.mu.RLock()
	_, ok := svc.local[sess.ID]
	svc.mu.RUnlock()
	assert.False(t, ok)

	// Saving refreshes the deadline.
	fresh, err := svc.Create(ctx, universe.ID(2))
	require.NoError(t, err)
	svc.mu.Lock()
	entry = svc.local[fresh.ID]
	entry.expiresAt = time.Now().Add(time.Minute)
	svc.local[fresh.ID] = entry
	svc.mu.Unlock()

	require.NoError(t, svc.Save(ctx, fresh))
	svc.mu.RLock()
	deadline := svc.local[fresh.ID].expiresAt
	svc.mu.RUnlock()
	assert.Greater(t, deadline, time.Now().Add(sessionTTL-time.Minute))
}

func TestCleanupExpiredLocalSweepsOnlyStale(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)

	stale, err := svc.Create(ctx, universe.ID(1))
	require.NoError(t, err)
	live, err := svc.Create(ctx, universe.ID(2))
	require.NoError(t, err)

	svc.mu.Lock()
	entry := svc.local[stale.ID]
	entry.expiresAt = time.Now().Add(-time.Second)
	svc.local[stale.ID] = entry
	svc.mu.Unlock()

	svc.cleanupExpiredLocal()

	svc.mu.RLock()
	_, staleOK := svc.local[stale.ID]
	_, liveOK := svc.local[live.ID]
	svc.mu.RUnlock()
	assert.False(t, staleOK)
	assert.True(t, liveOK)
}
