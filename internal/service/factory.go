package service

import (
	"github.com/anokye0712/ai-route-planner/internal/extract"
	"github.com/anokye0712/ai-route-planner/internal/store"
)

type ServicesConfig struct {
	Extractor     extract.Extractor
	Resolver      AddressResolver
	Optimizer     RouteOptimizer
	Enricher      GeometryEnricher
	Stores        *store.Stores
	DefaultUserID string
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{cfg: cfg}
}

func (s *Services) Plan() PlanService {
	return NewPlanService(PlanServiceConfig{
		Extractor:     s.cfg.Extractor,
		Resolver:      s.cfg.Resolver,
		Optimizer:     s.cfg.Optimizer,
		Enricher:      s.cfg.Enricher,
		Runs:          s.cfg.Stores.PlanRuns(),
		Persist:       s.cfg.Stores.Enabled(),
		DefaultUserID: s.cfg.DefaultUserID,
	})
}
