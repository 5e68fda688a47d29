package weighting

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/m4ra-routing/m4ra/pkg/cache"
	"github.com/m4ra-routing/m4ra/pkg/datastructure"
	"github.com/m4ra-routing/m4ra/pkg/fingerprint"
	"github.com/m4ra-routing/m4ra/pkg/util"
)

// Orchestrator decides, per travel mode, whether a cached weighted network
// already satisfies the current input identity, and invokes the external
// weighting step on miss. One orchestrator call is single-threaded and
// synchronous; the done-flag protocol is the only coordination with other
// processes, and it is advisory.
type Orchestrator struct {
	cfg      *cache.Config
	weighter Weighter
	policy   cache.FlagPolicy
	logger   *slog.Logger
	metrics  *Metrics
}

func NewOrchestrator(cfg *cache.Config, weighter Weighter) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		weighter: weighter,
		policy:   cache.FlagBeforeWork,
		logger:   slog.Default(),
	}
}

// SetFlagPolicy selects when the done flag is written (see cache.FlagPolicy).
func (o *Orchestrator) SetFlagPolicy(p cache.FlagPolicy) { o.policy = p }

func (o *Orchestrator) SetLogger(l *slog.Logger) { o.logger = l }

func (o *Orchestrator) SetMetrics(m *Metrics) { o.metrics = m }

// WeightNetworks produces the per-mode weighted networks for one city,
// reusing cached artifacts when the input fingerprint already completed.
// Returns the manifest of cached plus newly written artifact paths.
//
// Any failure of the weighting collaborator aborts the whole city and is
// returned unwrapped of extra typing; nothing is retried. Under the
// FlagBeforeWork policy the flag stays set after such an abort, which
// callers must treat as a sign that the cache needs manual inspection.
func (o *Orchestrator) WeightNetworks(network *datastructure.Network, city string, quiet bool) ([]string, error) {
	city = util.NormalizeCity(city)

	hash, err := fingerprint.Compute(network, false)
	if err != nil {
		return nil, err
	}

	manifest, err := o.cfg.ListWeighted(city)
	if err != nil {
		return nil, err
	}

	if o.cfg.HasDoneFlag(city, hash) {
		o.metrics.hit()
		if !quiet {
			o.logger.Info("weighting cache hit", "city", city, "hash", hash)
		}
		return manifest, nil
	}
	o.metrics.miss()

	if _, err := o.cfg.EnsureCityDir(city); err != nil {
		return nil, err
	}

	var claim *cache.Claim
	switch o.policy {
	case cache.FlagAfterVerify:
		claim, err = o.cfg.AcquireClaim(city, hash)
		if err != nil {
			return nil, err
		}
		defer claim.Release()
	default:
		// claim the identity before doing any work
		if err := o.cfg.WriteDoneFlag(city, hash); err != nil {
			return nil, err
		}
	}

	for _, mode := range datastructure.Modes {
		if !quiet {
			o.logger.Info("weighting network", "city", city, "mode", mode.String())
		}

		opts := WeightOptions{}
		if mode == datastructure.ModeMotorcar {
			profilePath, profErr := EnsureProfile(o.cfg, city, o.weighter,
				DefaultTrafficLightPenalty, DefaultTurnPenalty)
			if profErr != nil {
				return nil, profErr
			}
			opts = WeightOptions{ProfilePath: profilePath, TurnPenalty: true}
		}

		start := time.Now()
		weighted, weightErr := o.weighter.Weight(network, mode, opts)
		if weightErr != nil {
			return nil, fmt.Errorf("weighting %s for %s: %w", mode, city, weightErr)
		}
		weighted.Mode = mode
		o.metrics.observe(mode.String(), time.Since(start).Seconds())

		// the weighting step reassigned internal edge ids; only a forced
		// post-weighting fingerprint identifies this artifact
		weightedHash, fpErr := fingerprint.ComputeWeighted(weighted)
		if fpErr != nil {
			return nil, fpErr
		}

		path := o.cfg.WeightedNetworkPath(city, mode, weightedHash)
		if err := cache.WriteWeightedNetwork(path, weighted); err != nil {
			return nil, err
		}
		manifest = append(manifest, path)

		if !quiet {
			o.logger.Info("weighted network written", "city", city, "mode", mode.String(), "path", path)
		}
	}

	if o.policy == cache.FlagAfterVerify {
		if err := o.verifyModeSet(city); err != nil {
			return nil, err
		}
		if err := o.cfg.WriteDoneFlag(city, hash); err != nil {
			return nil, err
		}
	}

	return manifest, nil
}

func (o *Orchestrator) verifyModeSet(city string) error {
	for _, mode := range datastructure.Modes {
		path, err := o.cfg.FindWeighted(city, mode)
		if err != nil {
			return err
		}
		if path == "" {
			return fmt.Errorf("weighted network for %s/%s missing after weighting run", city, mode)
		}
	}
	return nil
}
