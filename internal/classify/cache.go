package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"security-suite/internal/model"
)

const DefaultCacheTTL = 10 * time.Minute

// Cached remembers successful verdicts keyed by the file's name, type,
// size and content excerpt. Errors are not cached.
type Cached struct {
	inner Classifier
	cache *cache.Cache
}

func NewCached(inner Classifier, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{inner: inner, cache: cache.New(ttl, 2*ttl)}
}

func (c *Cached) Classify(ctx context.Context, file model.FileInfo) (model.Verdict, error) {
	key := cacheKey(file)
	if v, ok := c.cache.Get(key); ok {
		return v.(model.Verdict), nil
	}
	v, err := c.inner.Classify(ctx, file)
	if err != nil {
		return v, err
	}
	c.cache.Set(key, v, cache.DefaultExpiration)
	return v, nil
}

func cacheKey(file model.FileInfo) string {
	h := sha256.New()
	h.Write([]byte(file.Name))
	h.Write([]byte{0})
	h.Write([]byte(file.Type))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(file.Size, 10)))
	h.Write([]byte{0})
	h.Write([]byte(Excerpt(file.Content, MaxContentChars)))
	return hex.EncodeToString(h.Sum(nil))
}
