package dashboard

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"civisense/internal/record"
)

// DecodeCache memoizes record.Decode by blob text. The same records come
// back on every refresh, so most decodes are cache hits.
type DecodeCache struct {
	lru *expirable.LRU[string, record.Decoded]
}

func NewDecodeCache(size int, ttl time.Duration) *DecodeCache {
	return &DecodeCache{lru: expirable.NewLRU[string, record.Decoded](size, nil, ttl)}
}

// Decode returns the cached decode of text, decoding on a miss
func (c *DecodeCache) Decode(text string) record.Decoded {
	if c == nil {
		return record.Decode(text)
	}
	if d, ok := c.lru.Get(text); ok {
		return d
	}
	d := record.Decode(text)
	c.lru.Add(text, d)
	return d
}

// Len reports the number of cached entries
func (c *DecodeCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
