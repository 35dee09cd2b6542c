package config

import "testing"

func TestSections_NilDocumentYieldsDefaults(t *testing.T) {
	var doc Document

	if got := CandidateLimitsFrom(doc); got != DefaultCandidateLimits {
		t.Errorf("CandidateLimitsFrom(nil) = %+v, want defaults %+v", got, DefaultCandidateLimits)
	}
	if got := FusionSettingsFrom(doc); got != DefaultFusionSettings {
		t.Errorf("FusionSettingsFrom(nil) = %+v, want defaults %+v", got, DefaultFusionSettings)
	}
	if got := PrefilterSettingsFrom(doc); got != DefaultPrefilterSettings {
		t.Errorf("PrefilterSettingsFrom(nil) = %+v, want defaults %+v", got, DefaultPrefilterSettings)
	}
	if got := RerankSettingsFrom(doc); got != DefaultRerankSettings {
		t.Errorf("RerankSettingsFrom(nil) = %+v, want defaults %+v", got, DefaultRerankSettings)
	}
}

func TestSections_MalformedSectionsYieldDefaults(t *testing.T) {
	doc := Document{
		"candidates": "not a mapping",
		"fusion":     42,
		"prefilter":  []any{"wrong"},
		"rerank":     nil,
	}

	if got := CandidateLimitsFrom(doc); got != DefaultCandidateLimits {
		t.Errorf("expected defaults for malformed candidates, got %+v", got)
	}
	if got := FusionSettingsFrom(doc); got != DefaultFusionSettings {
		t.Errorf("expected defaults for malformed fusion, got %+v", got)
	}
	if got := PrefilterSettingsFrom(doc); got != DefaultPrefilterSettings {
		t.Errorf("expected defaults for malformed prefilter, got %+v", got)
	}
	if got := RerankSettingsFrom(doc); got != DefaultRerankSettings {
		t.Errorf("expected defaults for malformed rerank, got %+v", got)
	}
}

func TestSections_PartialWithStringScalars(t *testing.T) {
	doc := Document{
		"candidates": map[string]any{
			"bm25_limit": "250",
			"final_limit": 3.7, // truncates
		},
		"rerank": map[string]any{
			"enabled":     "false",
			"final_top_n": 5,
			"dedup": map[string]any{
				"threshold": "0.85",
			},
		},
	}

	cand := CandidateLimitsFrom(doc)
	if cand.BM25Limit != 250 {
		t.Errorf("expected bm25_limit=250, got %d", cand.BM25Limit)
	}
	if cand.FinalLimit != 3 {
		t.Errorf("expected final_limit=3, got %d", cand.FinalLimit)
	}
	if cand.VectorLimit != DefaultCandidateLimits.VectorLimit {
		t.Errorf("expected default vector_limit, got %d", cand.VectorLimit)
	}

	rerank := RerankSettingsFrom(doc)
	if rerank.Enabled {
		t.Error("expected enabled=false from string \"false\"")
	}
	if rerank.FinalTopN != 5 {
		t.Errorf("expected final_top_n=5, got %d", rerank.FinalTopN)
	}
	if rerank.Dedup.Threshold != 0.85 {
		t.Errorf("expected dedup threshold 0.85, got %v", rerank.Dedup.Threshold)
	}
	if rerank.CrossEncoder != DefaultCrossEncoderSettings {
		t.Errorf("expected default cross_encoder, got %+v", rerank.CrossEncoder)
	}
}

func TestRecommendedInputPool(t *testing.T) {
	t.Run("disabled returns baseline unchanged", func(t *testing.T) {
		r := RerankSettings{Enabled: false, FinalTopN: 100}
		for _, baseline := range []int{0, 1, 50, 400} {
			if got := r.RecommendedInputPool(baseline); got != baseline {
				t.Errorf("RecommendedInputPool(%d) = %d, want %d", baseline, got, baseline)
			}
		}
	})

	t.Run("enabled wants three per kept slot", func(t *testing.T) {
		r := RerankSettings{Enabled: true, FinalTopN: 10}
		if got := r.RecommendedInputPool(5); got != 30 {
			t.Errorf("RecommendedInputPool(5) = %d, want 30", got)
		}
	})

	t.Run("never shrinks the baseline", func(t *testing.T) {
		r := RerankSettings{Enabled: true, FinalTopN: 10}
		if got := r.RecommendedInputPool(120); got != 120 {
			t.Errorf("RecommendedInputPool(120) = %d, want 120", got)
		}
	})
}
