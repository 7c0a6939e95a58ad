package booking

import (
	"context"
	"testing"
	"time"

	slotsRepo "homely/database/repository/slots"
	"homely/services/catalog"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAvailability(t *testing.T) (*DefaultAvailabilityService, *slotsRepo.MemoryRegistry, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	registry := slotsRepo.NewMemoryRegistry()
	svc := &DefaultAvailabilityService{
		Registry: registry,
		Catalog: newFakeCatalog(catalog.ServiceInfo{
			ID:    "S1",
			Price: 80,
			Slots: []string{"09:00", "10:00", "11:00"},
		}),
		Cache:  redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		TTL:    5 * time.Second,
		Logger: testLogger(),
	}
	return svc, registry, mr
}

func TestListAvailable(t *testing.T) {
	svc, registry, _ := newTestAvailability(t)
	ctx := context.Background()

	free, err := svc.ListAvailable(ctx, "S1", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, free)

	hold, err := registry.Reserve(ctx, "S1", "2025-03-01", "10:00", time.Minute)
	require.NoError(t, err)
	require.NoError(t, registry.Confirm(ctx, hold, "bk-1"))

	// The snapshot still serves the stale listing until it expires or is
	// invalidated.
	free, err = svc.ListAvailable(ctx, "S1", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, free)

	svc.InvalidateSnapshot(ctx, "S1", "2025-03-01")
	free, err = svc.ListAvailable(ctx, "S1", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, free)
}

func TestListAvailableSnapshotExpires(t *testing.T) {
	svc, registry, mr := newTestAvailability(t)
	ctx := context.Background()

	_, err := svc.ListAvailable(ctx, "S1", "2025-03-01")
	require.NoError(t, err)

	hold, err := registry.Reserve(ctx, "S1", "2025-03-01", "09:00", time.Minute)
	require.NoError(t, err)
	require.NoError(t, registry.Confirm(ctx, hold, "bk-1"))

	mr.FastForward(6 * time.Second)

	free, err := svc.ListAvailable(ctx, "S1", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "11:00"}, free)
}

func TestListAvailableUnknownService(t *testing.T) {
	svc, _, _ := newTestAvailability(t)

	_, err := svc.ListAvailable(context.Background(), "S99", "2025-03-01")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestListAvailableBadDate(t *testing.T) {
	svc, _, _ := newTestAvailability(t)

	_, err := svc.ListAvailable(context.Background(), "S1", "tomorrow")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
}

func TestListAvailableWithoutCache(t *testing.T) {
	registry := slotsRepo.NewMemoryRegistry()
	svc := &DefaultAvailabilityService{
		Registry: registry,
		Catalog: newFakeCatalog(catalog.ServiceInfo{
			ID:    "S1",
			Slots: []string{"09:00", "10:00"},
		}),
		Logger: testLogger(),
	}

	free, err := svc.ListAvailable(context.Background(), "S1", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, free)
}
