// Package limits turns typed retrieval settings into the final integer
// limits used by the candidate-gathering and reranking stages. Each limit
// follows the same pattern: settings-derived default, optional environment
// override, clamp to a safety range. Operators can tune a live deployment
// via environment variables without being able to push the pipeline into a
// pathological state (empty pools, unbounded top-k).
package limits

import (
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/querylab/retrievalcfg/internal/config"
	"github.com/querylab/retrievalcfg/internal/metrics"
)

// Environment override variables. Unparseable values fall back silently to
// the settings-derived default.
const (
	EnvShortlist       = "RETRIEVER_SHORTLIST"
	EnvDenseTopK       = "RETRIEVER_DENSE_TOPK"
	EnvBM25TopK        = "RETRIEVER_BM25_TOPK"
	EnvTopK            = "RETRIEVER_TOPK"
	EnvRerankKeep      = "RERANK_KEEP"
	EnvRerankInputTopK = "RERANK_INPUT_TOPK"
)

// Clamp bounds. Safety rails rather than business rules; confirm with the
// pipeline operators before changing them.
const (
	ShortlistMax   = 500
	DenseTopKMin   = 10
	DenseTopKMax   = 500
	BM25TopKMin    = 10
	BM25TopKMax    = 500
	RerankKeepMin  = 1
	RerankKeepMax  = 100
	RerankInputMax = 500
	TopKMin        = 1
)

// Limits is the resolved set of pipeline limits.
type Limits struct {
	Shortlist       int `json:"shortlist"`
	TopK            int `json:"topk"`
	DenseTopK       int `json:"dense_topk"`
	BM25TopK        int `json:"bm25_topk"`
	RerankInputTopK int `json:"rerank_input_topk"`
	RerankKeep      int `json:"rerank_keep"`
}

type cacheKey struct {
	tag  string
	path string
}

// Resolver computes and memoizes Limits per (tag, path) pair.
type Resolver struct {
	mu     sync.Mutex
	cache  map[cacheKey]Limits
	loader *config.Loader
	logger *zap.Logger
}

// NewResolver creates a Resolver backed by the given config loader.
// logger may be nil.
func NewResolver(loader *config.Loader, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cache:  make(map[cacheKey]Limits),
		loader: loader,
		logger: logger,
	}
}

// Load resolves the pipeline limits for the given tag and config path
// (both may be empty). Results are memoized per (tag, path).
func (r *Resolver) Load(tag, path string) Limits {
	key := cacheKey{tag: tag, path: path}

	r.mu.Lock()
	if lim, ok := r.cache[key]; ok {
		r.mu.Unlock()
		metrics.LimitsResolutionsTotal.WithLabelValues("cache").Inc()
		return lim
	}
	r.mu.Unlock()

	lim := r.resolve(path)
	metrics.LimitsResolutionsTotal.WithLabelValues("computed").Inc()

	r.logger.Debug("Resolved pipeline limits",
		zap.String("tag", tag),
		zap.String("path", path),
		zap.Int("shortlist", lim.Shortlist),
		zap.Int("topk", lim.TopK),
		zap.Int("rerank_keep", lim.RerankKeep),
	)

	r.mu.Lock()
	r.cache[key] = lim
	r.mu.Unlock()
	return lim
}

// Clear drops the memoized limits. Intended for tests.
func (r *Resolver) Clear() {
	r.mu.Lock()
	r.cache = make(map[cacheKey]Limits)
	r.mu.Unlock()
}

func (r *Resolver) resolve(path string) Limits {
	doc := r.loader.Load(path)
	cand := config.CandidateLimitsFrom(doc)
	rerank := config.RerankSettingsFrom(doc)

	shortlist := clamp(
		envInt(EnvShortlist, max(cand.FinalLimit, cand.MinCandidates)),
		cand.MinCandidates, ShortlistMax,
	)

	denseTopK := clamp(envInt(EnvDenseTopK, cand.VectorLimit), DenseTopKMin, DenseTopKMax)
	bm25TopK := clamp(envInt(EnvBM25TopK, cand.BM25Limit), BM25TopKMin, BM25TopKMax)

	rerankKeep := clamp(
		envInt(EnvRerankKeep, max(rerank.FinalTopN, 1)),
		RerankKeepMin, RerankKeepMax,
	)

	// The rerank pool may be raised by the override but never shrunk below
	// what the earlier stages already committed to.
	inputFloor := max(shortlist, rerankKeep)
	rerankInputTopK := clamp(
		envInt(EnvRerankInputTopK, rerank.RecommendedInputPool(inputFloor)),
		inputFloor, RerankInputMax,
	)

	// The final hand-off can never exceed the shortlist size.
	topK := clamp(envInt(EnvTopK, min(shortlist, rerankKeep)), TopKMin, shortlist)

	return Limits{
		Shortlist:       shortlist,
		TopK:            topK,
		DenseTopK:       denseTopK,
		BM25TopK:        bm25TopK,
		RerankInputTopK: rerankInputTopK,
		RerankKeep:      rerankKeep,
	}
}

// envInt reads an integer environment override, falling back to def when the
// variable is unset or unparseable.
func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func clamp(v, low, high int) int {
	return max(low, min(high, v))
}
