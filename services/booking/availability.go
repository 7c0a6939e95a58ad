package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	slotsRepo "homely/database/repository/slots"
	"homely/services/catalog"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultAvailabilityService serves the free-slot read path. Listings come
// from a short-lived Redis snapshot so browsing traffic never touches the
// reservation path; tiny staleness is fine because the real guarantee is
// enforced at reserve time.
type DefaultAvailabilityService struct {
	Registry slotsRepo.Registry
	Catalog  catalog.Service
	Cache    *redis.Client
	TTL      time.Duration
	Logger   *zap.Logger
}

func snapshotKey(serviceID, date string) string {
	return "slots:avail:" + serviceID + ":" + date
}

func (s *DefaultAvailabilityService) ListAvailable(ctx context.Context, serviceID, date string) ([]string, error) {
	if serviceID == "" || date == "" {
		return nil, newError(CodeInvalidInput, "serviceId and date are required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, newError(CodeInvalidInput, "date %q is not in YYYY-MM-DD format", date)
	}

	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, snapshotKey(serviceID, date)).Result(); err == nil {
			var free []string
			if err := json.Unmarshal([]byte(data), &free); err == nil {
				return free, nil
			}
		}
	}

	svc, err := s.Catalog.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownService) {
			return nil, newError(CodeNotFound, "service %s not found", serviceID)
		}
		return nil, err
	}

	free, err := s.Registry.ListAvailable(ctx, serviceID, date, svc.Slots)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(free); err == nil {
			if err := s.Cache.Set(ctx, snapshotKey(serviceID, date), data, s.TTL).Err(); err != nil {
				s.Logger.Debug("failed to cache availability snapshot", zap.Error(err))
			}
		}
	}
	return free, nil
}

// InvalidateSnapshot drops the cached listing after a reservation or
// release. Best-effort; the TTL bounds staleness anyway.
func (s *DefaultAvailabilityService) InvalidateSnapshot(ctx context.Context, serviceID, date string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, snapshotKey(serviceID, date)).Err(); err != nil {
		s.Logger.Debug("failed to invalidate availability snapshot", zap.Error(err))
	}
}
