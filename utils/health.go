package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthMonitor performs periodic health checks and keeps the latest
// snapshot in memory.
type HealthMonitor struct {
	mu      sync.RWMutex
	current HealthStatus
	stop    chan struct{}
}

// NewHealthMonitor starts checking the given clients every interval.
func NewHealthMonitor(mongoClient *mongo.Client, cache *redis.Client, interval time.Duration) *HealthMonitor {
	m := &HealthMonitor{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		ctx := context.Background()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				status := HealthStatus{
					Mongo:     mongoClient.Ping(ctx, nil) == nil,
					Redis:     cache.Ping(ctx).Err() == nil,
					CheckedAt: time.Now(),
				}
				m.mu.Lock()
				m.current = status
				m.mu.Unlock()
			}
		}
	}()

	return m
}

// Status returns the latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Stop halts the background checks.
func (m *HealthMonitor) Stop() {
	close(m.stop)
}
