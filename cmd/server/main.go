package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/m4ra-routing/m4ra/pkg/cache"
	"github.com/m4ra-routing/m4ra/pkg/server/rest"
	"github.com/m4ra-routing/m4ra/pkg/server/rest/service"
	"github.com/m4ra-routing/m4ra/pkg/vertexindex"
	"github.com/m4ra-routing/m4ra/pkg/weighting"
	"github.com/m4ra-routing/m4ra/pkg/weighting/streetweighter"
)

var (
	configFile = flag.String("config", "", "yaml server configuration file")
	listenAddr = flag.String("listenaddr", ":5050", "server listen address")
	cacheDir   = flag.String("cachedir", "", "cache root override (default: $M4RA_CACHE_DIR or the user cache dir)")
)

type serverConfig struct {
	ListenAddr string `yaml:"listen-addr"`
	CacheDir   string `yaml:"cache-dir"`
	// VerifyFlags delays the done flag until every per-mode artifact is
	// verified on disk.
	VerifyFlags bool `yaml:"verify-flags"`
}

func readConfig(path string) (*serverConfig, error) {
	cfg := &serverConfig{ListenAddr: ":5050"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	conf, err := readConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *listenAddr != ":5050" {
		conf.ListenAddr = *listenAddr
	}
	if *cacheDir != "" {
		conf.CacheDir = *cacheDir
	}

	var cacheCfg *cache.Config
	if conf.CacheDir != "" {
		cacheCfg = cache.NewConfigWithRoot(conf.CacheDir)
	} else {
		cacheCfg, err = cache.NewConfig()
		if err != nil {
			log.Fatal(err)
		}
	}

	reg := prometheus.NewRegistry()
	restMetrics := rest.NewMetrics(reg)
	weightMetrics := weighting.NewMetrics(reg)

	orch := weighting.NewOrchestrator(cacheCfg, streetweighter.New())
	orch.SetMetrics(weightMetrics)
	if conf.VerifyFlags {
		orch.SetFlagPolicy(cache.FlagAfterVerify)
	}
	builder := vertexindex.NewBuilder(cacheCfg, vertexindex.NewRtreeMatcher())
	svc := service.NewWeightingService(cacheCfg, orch, builder)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(rest.PromHTTPMiddleware(restMetrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	rest.WeightingRouter(r, svc)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Printf("m4ra weighting server listening on %s, cache root %s", conf.ListenAddr, cacheCfg.Root())
	log.Fatal(http.ListenAndServe(conf.ListenAddr, r))
}
