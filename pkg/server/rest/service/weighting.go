package service

import (
	"context"

	"github.com/m4ra-routing/m4ra/pkg/cache"
	"github.com/m4ra-routing/m4ra/pkg/datastructure"
	"github.com/m4ra-routing/m4ra/pkg/util"
	"github.com/m4ra-routing/m4ra/pkg/vertexindex"
	"github.com/m4ra-routing/m4ra/pkg/weighting"
)

// CityStatus describes the cached artifacts of one city.
type CityStatus struct {
	City             string   `json:"city"`
	WeightedNetworks []string `json:"weighted_networks"`
	VertexIndices    []string `json:"vertex_indices"`
	DoneFlags        []string `json:"done_flags"`
}

// WeightingService exposes the cache pipeline to the REST handlers.
type WeightingService struct {
	cfg     *cache.Config
	orch    *weighting.Orchestrator
	builder *vertexindex.Builder
}

func NewWeightingService(cfg *cache.Config, orch *weighting.Orchestrator, builder *vertexindex.Builder) *WeightingService {
	return &WeightingService{cfg: cfg, orch: orch, builder: builder}
}

// CacheStatus lists the cached artifacts for a city.
func (s *WeightingService) CacheStatus(_ context.Context, city string) (CityStatus, error) {
	city = util.NormalizeCity(city)
	weighted, err := s.cfg.ListWeighted(city)
	if err != nil {
		return CityStatus{}, err
	}
	indices, err := s.cfg.ListVertexIndices(city)
	if err != nil {
		return CityStatus{}, err
	}
	flags, err := s.cfg.ListDoneFlags(city)
	if err != nil {
		return CityStatus{}, err
	}
	return CityStatus{
		City:             city,
		WeightedNetworks: weighted,
		VertexIndices:    indices,
		DoneFlags:        flags,
	}, nil
}

// WeightFromFile loads a raw network artifact from disk and runs the
// per-city weighting pipeline on it.
func (s *WeightingService) WeightFromFile(_ context.Context, city, networkPath string) ([]string, error) {
	network, err := cache.ReadNetwork(networkPath)
	if err != nil {
		return nil, err
	}
	return s.orch.WeightNetworks(network, city, true)
}

// WeightNetwork runs the pipeline on an in-memory network.
func (s *WeightingService) WeightNetwork(_ context.Context, city string, network *datastructure.Network) ([]string, error) {
	return s.orch.WeightNetworks(network, city, true)
}

// BuildVertexIndices builds the pairwise vertex indices for a city.
func (s *WeightingService) BuildVertexIndices(_ context.Context, city string) ([]string, error) {
	return s.builder.BuildVertexIndices(city)
}
