// Package classify implements the rule-based transaction classifier. It
// assigns a spending category to a single transaction given its reference
// string and amounts. The insight engine never calls into this package;
// categories are attached to transactions before the engine runs.
package classify

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"finsight/internal/cache"
)

// Classification sources.
const (
	SourceRules    = "rules"
	SourceFallback = "fallback"
)

// Confidence levels derived from the numeric confidence score.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Result is the classifier output contract consumed by the transport layer
// and the statement importer.
type Result struct {
	Source           string  `json:"source"`
	CategoryInternal string  `json:"category_internal"`
	CategoryHuman    string  `json:"category_human"`
	Confidence       float64 `json:"confidence"`
	ConfidenceLevel  string  `json:"confidence_level"`
	NeedsUserReview  bool    `json:"needs_user_review"`
}

// Classifier matches transaction references against keyword rules.
// Classification is deterministic, so results for repeated references are
// cached with an LRU+TTL cache.
type Classifier struct {
	rules   []rule
	results *cache.LRUCache[Result]
}

// New creates a classifier with the built-in rule set.
func New() *Classifier {
	return &Classifier{
		rules:   defaultRules,
		results: cache.NewLRUCache[Result](1000, 30*time.Minute),
	}
}

// Classify determines the category for a single transaction. Withdraw and
// deposit decide direction: a pure deposit is income regardless of keywords.
func (c *Classifier) Classify(ctx context.Context, reference string, withdraw, deposit float64) Result {
	key := cacheKey(reference, withdraw, deposit)
	if res, ok := c.results.Get(key); ok {
		slog.DebugContext(ctx, "Classification cache hit", "reference", reference)
		return res
	}

	res := c.classify(reference, withdraw, deposit)
	c.results.Set(key, res)

	slog.DebugContext(ctx, "Transaction classified",
		"reference", reference,
		"category", res.CategoryInternal,
		"source", res.Source,
		"confidence", res.Confidence)

	return res
}

// CacheSize reports how many classification results are currently cached.
func (c *Classifier) CacheSize() int {
	return c.results.Size()
}

// ResultCache exposes the result cache for cleanup registration and metrics.
func (c *Classifier) ResultCache() *cache.LRUCache[Result] {
	return c.results
}

func (c *Classifier) classify(reference string, withdraw, deposit float64) Result {
	ref := normalizeReference(reference)

	// Direction heuristic: money coming in with nothing going out is income.
	if deposit > 0 && withdraw == 0 {
		return newResult(SourceRules, "income", "Income", 0.95)
	}

	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(ref, kw) {
				return newResult(SourceRules, r.internal, r.human, r.confidence)
			}
		}
	}

	return newResult(SourceFallback, "other", "Other", 0.3)
}

func newResult(source, internal, human string, confidence float64) Result {
	level := confidenceLevel(confidence)
	return Result{
		Source:           source,
		CategoryInternal: internal,
		CategoryHuman:    human,
		Confidence:       confidence,
		ConfidenceLevel:  level,
		NeedsUserReview:  level == ConfidenceLow,
	}
}

func confidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.85:
		return ConfidenceHigh
	case confidence >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func normalizeReference(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cacheKey(reference string, withdraw, deposit float64) string {
	return normalizeReference(reference) + "|" +
		strconv.FormatFloat(withdraw, 'g', -1, 64) + "|" +
		strconv.FormatFloat(deposit, 'g', -1, 64)
}
