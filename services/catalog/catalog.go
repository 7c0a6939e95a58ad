package catalog

import (
	"context"
	"errors"

	"homely/config"
)

// ErrUnknownService is returned when the catalog has no entry for a service
// and no defaults are configured.
var ErrUnknownService = errors.New("unknown service")

// ServiceInfo is what the core consumes from the catalog collaborator: the
// price and the day's candidate slot grid, plus the skill tag a worker must
// carry to take the job.
type ServiceInfo struct {
	ID    string
	Name  string
	Price float64
	Slots []string
	Skill string
}

// Service is the catalog boundary. The real catalog lives outside the core;
// this interface is what the booking components see.
type Service interface {
	GetService(ctx context.Context, serviceID string) (*ServiceInfo, error)
}

// StaticCatalog serves the configured service projection. Unlisted services
// fall back to the configured default grid and price when those are set.
type StaticCatalog struct {
	services     map[string]ServiceInfo
	defaultSlots []string
	defaultPrice float64
}

// NewStaticCatalog builds the catalog from configuration.
func NewStaticCatalog(cfg *config.Config) *StaticCatalog {
	services := make(map[string]ServiceInfo, len(cfg.Services))
	for _, e := range cfg.Services {
		services[e.ID] = ServiceInfo{
			ID:    e.ID,
			Name:  e.Name,
			Price: e.Price,
			Slots: e.Slots,
			Skill: e.Skill,
		}
	}
	return &StaticCatalog{
		services:     services,
		defaultSlots: cfg.DefaultSlots,
		defaultPrice: cfg.DefaultServicePrice,
	}
}

func (c *StaticCatalog) GetService(ctx context.Context, serviceID string) (*ServiceInfo, error) {
	if info, ok := c.services[serviceID]; ok {
		if len(info.Slots) == 0 {
			info.Slots = c.defaultSlots
		}
		if info.Price == 0 {
			info.Price = c.defaultPrice
		}
		return &info, nil
	}
	if len(c.defaultSlots) == 0 {
		return nil, ErrUnknownService
	}
	return &ServiceInfo{
		ID:    serviceID,
		Price: c.defaultPrice,
		Slots: c.defaultSlots,
	}, nil
}
