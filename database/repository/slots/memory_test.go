package slotsRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveMutualExclusion(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	const contenders = 20
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.Reserve(ctx, "S1", "2025-03-01", "09:00", time.Minute)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var winners, losers int
	for err := range results {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, ErrSlotTaken)
			losers++
		}
	}
	assert.Equal(t, 1, winners, "exactly one contender must win the slot")
	assert.Equal(t, contenders-1, losers)
}

func TestReserveDistinctSlotsDoNotContend(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	_, err := registry.Reserve(ctx, "S1", "2025-03-01", "09:00", time.Minute)
	require.NoError(t, err)

	// Same slot, different date and different service, both free.
	_, err = registry.Reserve(ctx, "S1", "2025-03-02", "09:00", time.Minute)
	assert.NoError(t, err)
	_, err = registry.Reserve(ctx, "S2", "2025-03-01", "09:00", time.Minute)
	assert.NoError(t, err)
}

func TestReleaseMakesSlotReservableAgain(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	hold, err := registry.Reserve(ctx, "S1", "2025-03-01", "10:00", time.Minute)
	require.NoError(t, err)
	require.NoError(t, registry.Confirm(ctx, hold, "bk-1"))

	_, err = registry.Reserve(ctx, "S1", "2025-03-01", "10:00", time.Minute)
	require.ErrorIs(t, err, ErrSlotTaken)

	require.NoError(t, registry.Release(ctx, "S1", "2025-03-01", "10:00"))

	_, err = registry.Reserve(ctx, "S1", "2025-03-01", "10:00", time.Minute)
	assert.NoError(t, err)
}

func TestReleaseIsIdempotent(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	assert.NoError(t, registry.Release(ctx, "S1", "2025-03-01", "11:00"))
	assert.NoError(t, registry.Release(ctx, "S1", "2025-03-01", "11:00"))
}

func TestReserveTakesOverExpiredHold(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	stale, err := registry.Reserve(ctx, "S1", "2025-03-01", "09:00", -time.Second)
	require.NoError(t, err)

	// The first hold expired, so a second customer can claim the slot.
	fresh, err := registry.Reserve(ctx, "S1", "2025-03-01", "09:00", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, stale.Token, fresh.Token)

	// The stale hold can no longer be confirmed.
	err = registry.Confirm(ctx, stale, "bk-stale")
	assert.ErrorIs(t, err, ErrHoldLost)

	// The fresh one can.
	assert.NoError(t, registry.Confirm(ctx, fresh, "bk-fresh"))
}

func TestConfirmRequiresLiveHold(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	hold, err := registry.Reserve(ctx, "S1", "2025-03-01", "12:00", time.Minute)
	require.NoError(t, err)
	require.NoError(t, registry.Release(ctx, "S1", "2025-03-01", "12:00"))

	err = registry.Confirm(ctx, hold, "bk-1")
	assert.ErrorIs(t, err, ErrHoldLost)
}

func TestReleaseExpiredIsTokenScoped(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	hold, err := registry.Reserve(ctx, "S1", "2025-03-01", "13:00", time.Minute)
	require.NoError(t, err)

	// Wrong token: nothing released.
	released, err := registry.ReleaseExpired(ctx, "S1", "2025-03-01", "13:00", "other-token")
	require.NoError(t, err)
	assert.False(t, released)

	// Confirmed bookings are never reclaimed, even with the right token.
	require.NoError(t, registry.Confirm(ctx, hold, "bk-1"))
	released, err = registry.ReleaseExpired(ctx, "S1", "2025-03-01", "13:00", hold.Token)
	require.NoError(t, err)
	assert.False(t, released)

	_, err = registry.Reserve(ctx, "S1", "2025-03-01", "13:00", time.Minute)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestReleaseExpiredFreesPendingHold(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	hold, err := registry.Reserve(ctx, "S1", "2025-03-01", "14:00", time.Minute)
	require.NoError(t, err)

	released, err := registry.ReleaseExpired(ctx, "S1", "2025-03-01", "14:00", hold.Token)
	require.NoError(t, err)
	assert.True(t, released)

	_, err = registry.Reserve(ctx, "S1", "2025-03-01", "14:00", time.Minute)
	assert.NoError(t, err)
}

func TestListAvailableFiltersClaimedSlots(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()
	candidates := []string{"09:00", "10:00", "11:00"}

	free, err := registry.ListAvailable(ctx, "S1", "2025-03-01", candidates)
	require.NoError(t, err)
	assert.Equal(t, candidates, free)

	hold, err := registry.Reserve(ctx, "S1", "2025-03-01", "10:00", time.Minute)
	require.NoError(t, err)
	require.NoError(t, registry.Confirm(ctx, hold, "bk-1"))

	free, err = registry.ListAvailable(ctx, "S1", "2025-03-01", candidates)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, free)
}
