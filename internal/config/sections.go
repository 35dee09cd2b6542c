package config

// Document is the raw retrieval configuration mapping as parsed from YAML.
// It is read-only: the typed section views copy scalar fields out of it and
// nothing in this package ever writes back.
type Document map[string]any

// Section returns the named top-level section as a mapping. A missing key or
// a non-mapping value both yield nil, which the section constructors treat as
// "no data, use defaults".
func (d Document) Section(name string) map[string]any {
	if d == nil {
		return nil
	}
	m, _ := d[name].(map[string]any)
	return m
}

// CandidateLimits sizes the first-stage candidate pools.
type CandidateLimits struct {
	BM25Limit     int `json:"bm25_limit"`
	VectorLimit   int `json:"vector_limit"`
	FinalLimit    int `json:"final_limit"`
	MinCandidates int `json:"min_candidates"`
}

// FusionSettings governs reciprocal-rank fusion of lexical and dense runs.
type FusionSettings struct {
	K         int     `json:"k"`
	LambdaLex float64 `json:"lambda_lex"`
	LambdaSem float64 `json:"lambda_sem"`
}

// PrefilterSettings drops weak candidates before fusion and reranking.
type PrefilterSettings struct {
	MinBM25Score       float64 `json:"min_bm25_score"`
	MinVectorScore     float64 `json:"min_vector_score"`
	MinDocLength       int     `json:"min_doc_length"`
	MaxDocLength       int     `json:"max_doc_length"`
	EnableDiversity    bool    `json:"enable_diversity"`
	DiversityThreshold float64 `json:"diversity_threshold"`
}

// CrossEncoderSettings configures the second-stage reranking model client.
// TimeoutMS and MaxTimeoutMS are passive values consumed by the rerank
// client; nothing in this package enforces them.
type CrossEncoderSettings struct {
	ModelName           string `json:"model_name"`
	ONNXPath            string `json:"onnx_path"`
	MicroBatchSize      int    `json:"micro_batch_size"`
	TimeoutMS           int    `json:"timeout_ms"`
	MaxTimeoutMS        int    `json:"max_timeout_ms"`
	Workers             int    `json:"workers"`
	FallbackToHeuristic bool   `json:"fallback_to_heuristic"`
}

// WindowingSettings splits long documents into token windows before rerank.
type WindowingSettings struct {
	Enabled               bool `json:"enabled"`
	WindowSizeTokens      int  `json:"window_size_tokens"`
	OverlapPct            int  `json:"overlap_pct"`
	PreserveDocBoundaries bool `json:"preserve_doc_boundaries"`
}

// DedupSettings removes near-duplicate candidates.
type DedupSettings struct {
	Enabled      bool    `json:"enabled"`
	Method       string  `json:"method"`
	Threshold    float64 `json:"threshold"`
	BeforeRerank bool    `json:"before_rerank"`
}

// RerankSettings configures the reranking stage and owns its sub-sections.
type RerankSettings struct {
	Enabled        bool                 `json:"enabled"`
	Alpha          float64              `json:"alpha"`
	MinScore       float64              `json:"min_score"`
	PerFilePenalty float64              `json:"per_file_penalty"`
	FinalTopN      int                  `json:"final_top_n"`
	Method         string               `json:"method"`
	CrossEncoder   CrossEncoderSettings `json:"cross_encoder"`
	Windowing      WindowingSettings    `json:"windowing"`
	Dedup          DedupSettings        `json:"dedup"`
}

// Defaults. Fusion K follows the standard RRF constant (Cormack et al. 2009).
var (
	DefaultCandidateLimits = CandidateLimits{
		BM25Limit:     100,
		VectorLimit:   100,
		FinalLimit:    50,
		MinCandidates: 10,
	}

	DefaultFusionSettings = FusionSettings{
		K:         60,
		LambdaLex: 0.6,
		LambdaSem: 0.4,
	}

	DefaultPrefilterSettings = PrefilterSettings{
		MinBM25Score:       0.1,
		MinVectorScore:     0.7,
		MinDocLength:       50,
		MaxDocLength:       8000,
		EnableDiversity:    false,
		DiversityThreshold: 0.9,
	}

	DefaultCrossEncoderSettings = CrossEncoderSettings{
		ModelName:           "cross-encoder/ms-marco-MiniLM-L-6-v2",
		ONNXPath:            "",
		MicroBatchSize:      16,
		TimeoutMS:           250,
		MaxTimeoutMS:        1000,
		Workers:             2,
		FallbackToHeuristic: true,
	}

	DefaultWindowingSettings = WindowingSettings{
		Enabled:               true,
		WindowSizeTokens:      512,
		OverlapPct:            20,
		PreserveDocBoundaries: true,
	}

	DefaultDedupSettings = DedupSettings{
		Enabled:      true,
		Method:       "cosine",
		Threshold:    0.9,
		BeforeRerank: true,
	}

	DefaultRerankSettings = RerankSettings{
		Enabled:        true,
		Alpha:          0.7,
		MinScore:       0.0,
		PerFilePenalty: 0.1,
		FinalTopN:      12,
		Method:         "cross_encoder",
		CrossEncoder:   DefaultCrossEncoderSettings,
		Windowing:      DefaultWindowingSettings,
		Dedup:          DefaultDedupSettings,
	}
)

// CandidateLimitsFrom builds CandidateLimits from the `candidates` section.
// A nil or partial document yields the defaults; malformed fields fall back
// per-field.
func CandidateLimitsFrom(doc Document) CandidateLimits {
	s := doc.Section("candidates")
	d := DefaultCandidateLimits
	return CandidateLimits{
		BM25Limit:     AsInt(s["bm25_limit"], d.BM25Limit),
		VectorLimit:   AsInt(s["vector_limit"], d.VectorLimit),
		FinalLimit:    AsInt(s["final_limit"], d.FinalLimit),
		MinCandidates: AsInt(s["min_candidates"], d.MinCandidates),
	}
}

// FusionSettingsFrom builds FusionSettings from the `fusion` section.
// The type does not enforce lambda_lex + lambda_sem == 1.0; the component
// validator checks that separately.
func FusionSettingsFrom(doc Document) FusionSettings {
	s := doc.Section("fusion")
	d := DefaultFusionSettings
	return FusionSettings{
		K:         AsInt(s["k"], d.K),
		LambdaLex: AsFloat(s["lambda_lex"], d.LambdaLex),
		LambdaSem: AsFloat(s["lambda_sem"], d.LambdaSem),
	}
}

// PrefilterSettingsFrom builds PrefilterSettings from the `prefilter` section.
func PrefilterSettingsFrom(doc Document) PrefilterSettings {
	s := doc.Section("prefilter")
	d := DefaultPrefilterSettings
	return PrefilterSettings{
		MinBM25Score:       AsFloat(s["min_bm25_score"], d.MinBM25Score),
		MinVectorScore:     AsFloat(s["min_vector_score"], d.MinVectorScore),
		MinDocLength:       AsInt(s["min_doc_length"], d.MinDocLength),
		MaxDocLength:       AsInt(s["max_doc_length"], d.MaxDocLength),
		EnableDiversity:    AsBool(s["enable_diversity"], d.EnableDiversity),
		DiversityThreshold: AsFloat(s["diversity_threshold"], d.DiversityThreshold),
	}
}

// RerankSettingsFrom builds RerankSettings from the `rerank` section,
// including the nested cross_encoder, windowing, and dedup sub-sections.
func RerankSettingsFrom(doc Document) RerankSettings {
	s := doc.Section("rerank")
	d := DefaultRerankSettings
	return RerankSettings{
		Enabled:        AsBool(s["enabled"], d.Enabled),
		Alpha:          AsFloat(s["alpha"], d.Alpha),
		MinScore:       AsFloat(s["min_score"], d.MinScore),
		PerFilePenalty: AsFloat(s["per_file_penalty"], d.PerFilePenalty),
		FinalTopN:      AsInt(s["final_top_n"], d.FinalTopN),
		Method:         AsString(s["method"], d.Method),
		CrossEncoder:   crossEncoderFrom(subSection(s, "cross_encoder")),
		Windowing:      windowingFrom(subSection(s, "windowing")),
		Dedup:          dedupFrom(subSection(s, "dedup")),
	}
}

// RecommendedInputPool returns the candidate pool size the rerank stage
// should receive. With reranking disabled the baseline passes through
// unchanged. Otherwise the pool is at least three candidates per slot the
// reranker ultimately keeps, but never below the caller's baseline.
func (r RerankSettings) RecommendedInputPool(baseline int) int {
	if !r.Enabled {
		return baseline
	}
	want := r.FinalTopN * 3
	if baseline > want {
		return baseline
	}
	return want
}

func subSection(s map[string]any, name string) map[string]any {
	if s == nil {
		return nil
	}
	m, _ := s[name].(map[string]any)
	return m
}

func crossEncoderFrom(s map[string]any) CrossEncoderSettings {
	d := DefaultCrossEncoderSettings
	return CrossEncoderSettings{
		ModelName:           AsString(s["model_name"], d.ModelName),
		ONNXPath:            AsString(s["onnx_path"], d.ONNXPath),
		MicroBatchSize:      AsInt(s["micro_batch_size"], d.MicroBatchSize),
		TimeoutMS:           AsInt(s["timeout_ms"], d.TimeoutMS),
		MaxTimeoutMS:        AsInt(s["max_timeout_ms"], d.MaxTimeoutMS),
		Workers:             AsInt(s["workers"], d.Workers),
		FallbackToHeuristic: AsBool(s["fallback_to_heuristic"], d.FallbackToHeuristic),
	}
}

func windowingFrom(s map[string]any) WindowingSettings {
	d := DefaultWindowingSettings
	return WindowingSettings{
		Enabled:               AsBool(s["enabled"], d.Enabled),
		WindowSizeTokens:      AsInt(s["window_size_tokens"], d.WindowSizeTokens),
		OverlapPct:            AsInt(s["overlap_pct"], d.OverlapPct),
		PreserveDocBoundaries: AsBool(s["preserve_doc_boundaries"], d.PreserveDocBoundaries),
	}
}

func dedupFrom(s map[string]any) DedupSettings {
	d := DefaultDedupSettings
	return DedupSettings{
		Enabled:      AsBool(s["enabled"], d.Enabled),
		Method:       AsString(s["method"], d.Method),
		Threshold:    AsFloat(s["threshold"], d.Threshold),
		BeforeRerank: AsBool(s["before_rerank"], d.BeforeRerank),
	}
}
