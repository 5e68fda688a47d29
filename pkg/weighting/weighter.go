// Package weighting orchestrates the external graph-weighting step and
// keeps its derived artifacts consistent in the cache. The weighting
// algorithm itself (penalty application, turn costs, contraction) lives
// behind the Weighter interface.
package weighting

import (
	"github.com/m4ra-routing/m4ra/pkg/datastructure"
)

// WeightOptions carries the optional inputs of one weighting invocation.
type WeightOptions struct {
	// ProfilePath points at a penalty configuration document. Empty for
	// modes that carry no penalty parameters.
	ProfilePath string
	// TurnPenalty enables turn-cost application.
	TurnPenalty bool
}

// Weighter is the external weighting collaborator. Weight assigns new,
// run-specific internal edge identifiers on every invocation: any
// fingerprint taken before the call is invalid for the returned network.
type Weighter interface {
	Weight(network *datastructure.Network, mode datastructure.Mode, opts WeightOptions) (*datastructure.WeightedNetwork, error)

	// WriteDefaultProfile writes the collaborator's fixed default penalty
	// configuration into dir and returns its path. The two motorcar
	// penalty values are not injectable directly; the profile builder
	// patches the written document instead.
	WriteDefaultProfile(dir string) (string, error)
}
