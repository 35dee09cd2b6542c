package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline configuration and hardening metrics.
var (
	ConfigLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retrievalcfg",
			Name:      "config_loads_total",
			Help:      "Configuration document loads by outcome",
		},
		[]string{"outcome"}, // "ok" / "missing" / "parse_error" / "fallback"
	)

	ConfigCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retrievalcfg",
			Name:      "config_cache_total",
			Help:      "Configuration document cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	LimitsResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retrievalcfg",
			Name:      "limits_resolutions_total",
			Help:      "Pipeline limit resolutions by source",
		},
		[]string{"source"}, // "cache" / "computed"
	)

	HardeningCasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "retrievalcfg",
			Name:      "hardening_cases_total",
			Help:      "Hardening harness case outcomes",
		},
		[]string{"status"}, // "passed" / "failed" / "error"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once
// from main; library consumers that bring their own registry skip it.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ConfigLoadsTotal)
	prometheus.MustRegister(ConfigCacheTotal)
	prometheus.MustRegister(LimitsResolutionsTotal)
	prometheus.MustRegister(HardeningCasesTotal)
	pipelineMetricsRegistered = true
}
