package monitor

import (
	"context"
	"fmt"
	"net/http"

	// profiling endpoints are attached to the monitoring mux only
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config for the monitoring server
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

var (
	// CacheHits counts performance cache hits per component
	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "performance_cache_hit_count",
		Help: "Performance cache hits",
	}, []string{"component"})
	// CacheMisses counts performance cache misses per component
	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "performance_cache_miss_count",
		Help: "Performance cache misses",
	}, []string{"component"})
	// CacheErrors counts cache backend failures, which degrade to a miss
	CacheErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "performance_cache_error_count",
		Help: "Performance cache backend errors",
	}, []string{"op"})
	// CalculatorDuration observes how long each calculator takes
	CalculatorDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "performance_calculator_duration_seconds",
		Help:    "Duration of performance calculator runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"component"})
	// LeaderboardBuildDuration observes full leaderboard builds per type
	LeaderboardBuildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "performance_leaderboard_build_duration_seconds",
		Help:    "Duration of leaderboard builds",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(CacheErrors)
	prometheus.MustRegister(CalculatorDuration)
	prometheus.MustRegister(LeaderboardBuildDuration)
}

var profilingServer *http.Server

// LoopProfilingServer starts the metrics and profiling endpoint when enabled
func LoopProfilingServer(cfg Config) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	addr := fmt.Sprintf(":%d", cfg.Port)
	profilingServer = &http.Server{Addr: addr, Handler: mux}
	log.Info().Str("section", "monitor").Str("addr", addr).Msg("Monitoring server started")
	if err := profilingServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Str("section", "monitor").Msg("Monitoring server stopped")
	}
}

// ShutdownServer stops the monitoring endpoint during graceful shutdown
func ShutdownServer() {
	if profilingServer == nil {
		return
	}
	if err := profilingServer.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Str("section", "monitor").Msg("Unable to shutdown monitoring server")
	}
}
