package voice

import (
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/datatypes"
)

// DecodeEmbedding parses a stored embedding into a numeric vector. The store
// holds either a JSON float array or a JSON string wrapping one (legacy
// text-encoded rows).
func DecodeEmbedding(raw datatypes.JSON) ([]float32, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	if v, ok := parseFloat32ArrayJSON(raw); ok {
		return v, true
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil || inner == "" {
		return nil, false
	}
	return parseFloat32ArrayJSON([]byte(inner))
}

func parseFloat32ArrayJSON(raw []byte) ([]float32, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var tmp []float64
	if err := json.Unmarshal(raw, &tmp); err != nil || len(tmp) == 0 {
		return nil, false
	}
	out := make([]float32, 0, len(tmp))
	for _, f := range tmp {
		out = append(out, float32(f))
	}
	return out, true
}

// ParseCache memoizes embedding decodes behind a bounded LRU keyed by the raw
// column value. Decoding is cheap but runs once per post per pipeline stage,
// and the same rows come back on every recluster.
type ParseCache struct {
	lru *lru.Cache[string, []float32]
}

func NewParseCache(capacity int) (*ParseCache, error) {
	if capacity <= 0 {
		capacity = 1000
	}
	c, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &ParseCache{lru: c}, nil
}

func (c *ParseCache) Decode(raw datatypes.JSON) ([]float32, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	key := string(raw)
	if v, ok := c.lru.Get(key); ok {
		return v, v != nil
	}
	v, ok := DecodeEmbedding(raw)
	if !ok {
		c.lru.Add(key, nil)
		return nil, false
	}
	c.lru.Add(key, v)
	return v, true
}

func (c *ParseCache) Len() int {
	return c.lru.Len()
}
