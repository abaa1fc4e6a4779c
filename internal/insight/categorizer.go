package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"pennywise/internal/cache"
	"pennywise/internal/core"
)

// Source tells where a category came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceCache    Source = "cache"
	SourceKeywords Source = "keywords"
)

type CategorizerOptions struct {
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// Categorizer labels transaction descriptions. Model answers are cached by
// normalized description; concurrent lookups of the same description share
// one model call.
type Categorizer struct {
	gen     Generator
	timeout time.Duration
	cache   *cache.LRU[string]
	group   singleflight.Group
}

// NewCategorizer accepts a nil Generator, in which case every description is
// classified by keywords.
func NewCategorizer(gen Generator, opts CategorizerOptions) *Categorizer {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 512
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &Categorizer{
		gen:     gen,
		timeout: opts.Timeout,
		cache:   cache.NewLRU[string](opts.CacheSize, opts.CacheTTL),
	}
}

// Cache exposes the result cache so it can be swept.
func (c *Categorizer) Cache() *cache.LRU[string] {
	return c.cache
}

// Categorize never fails: any model error, timeout or out-of-set answer
// falls back to the keyword classifier.
func (c *Categorizer) Categorize(ctx context.Context, description string) (string, Source) {
	key := strings.ToLower(strings.Join(strings.Fields(description), " "))
	if c.gen == nil || key == "" {
		return core.CategorizeByKeywords(description), SourceKeywords
	}
	if label, ok := c.cache.Get(key); ok {
		return label, SourceCache
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		answer, err := c.gen.Classify(callCtx, description, core.Categories)
		if err != nil {
			return "", err
		}
		label, ok := core.IsCategory(answer)
		if !ok {
			return "", fmt.Errorf("%w: label %q outside category set", core.ErrExternalService, answer)
		}
		c.cache.Set(key, label)
		return label, nil
	})
	if err != nil {
		fallback := core.CategorizeByKeywords(description)
		slog.WarnContext(ctx, "Categorization fell back to keywords",
			"component", "insight", "error", err, "category", fallback)
		return fallback, SourceKeywords
	}
	return v.(string), SourceModel
}
