package main

import (
	"flag"
	"log"
	"strings"

	"github.com/m4ra-routing/m4ra/pkg/batch"
	"github.com/m4ra-routing/m4ra/pkg/cache"
	"github.com/m4ra-routing/m4ra/pkg/vertexindex"
	"github.com/m4ra-routing/m4ra/pkg/weighting"
	"github.com/m4ra-routing/m4ra/pkg/weighting/streetweighter"
)

var (
	networkDir  = flag.String("dir", "", "directory of raw per-city network files for batch weighting")
	networkFile = flag.String("f", "", "single raw network file")
	city        = flag.String("city", "", "city name for single-file weighting")
	cacheDir    = flag.String("cachedir", "", "cache root override (default: $M4RA_CACHE_DIR or the user cache dir)")
	exclude     = flag.String("exclude", "", "comma separated city names to skip in batch mode")
	quiet       = flag.Bool("quiet", false, "suppress per-mode progress output")
	verify      = flag.Bool("verify", false, "write the done flag only after all per-mode artifacts are verified")
	vertIndex   = flag.Bool("vertexindex", false, "build pairwise vertex indices after weighting")
)

func main() {
	flag.Parse()

	var cfg *cache.Config
	if *cacheDir != "" {
		cfg = cache.NewConfigWithRoot(*cacheDir)
	} else {
		var err error
		cfg, err = cache.NewConfig()
		if err != nil {
			log.Fatal(err)
		}
	}

	orch := weighting.NewOrchestrator(cfg, streetweighter.New())
	if *verify {
		orch.SetFlagPolicy(cache.FlagAfterVerify)
	}

	var cities []string
	switch {
	case *networkDir != "":
		var excluded []string
		if *exclude != "" {
			excluded = strings.Split(*exclude, ",")
		}
		driver := batch.NewDriver(orch)
		manifest, err := driver.BatchWeight(*networkDir, excluded)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("weighted %d artifacts from %s", len(manifest), *networkDir)

		if *vertIndex {
			entries, err := batchCities(*networkDir, excluded)
			if err != nil {
				log.Fatal(err)
			}
			cities = entries
		}

	case *networkFile != "" && *city != "":
		network, err := cache.ReadNetwork(*networkFile)
		if err != nil {
			log.Fatal(err)
		}
		manifest, err := orch.WeightNetworks(network, *city, *quiet)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("weighted %d artifacts for %s", len(manifest), *city)
		if *vertIndex {
			cities = []string{*city}
		}

	default:
		log.Fatal("either -dir or both -f and -city are required")
	}

	if *vertIndex {
		builder := vertexindex.NewBuilder(cfg, vertexindex.NewRtreeMatcher())
		for _, c := range cities {
			paths, err := builder.BuildVertexIndices(c)
			if err != nil {
				log.Fatal(err)
			}
			log.Printf("built %d vertex indices for %s", len(paths), c)
		}
	}
}

func batchCities(dir string, excluded []string) ([]string, error) {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}
	entries, err := batch.ListCities(dir)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, c := range entries {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
