package server

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/S0me0neR0man/skipstash/internal/metrics"
	"github.com/S0me0neR0man/skipstash/internal/skipscan"
)

type cachedFilter struct {
	raw    []byte
	filter *skipscan.Filter
}

// filterCache keeps decoded filter templates by the hash of their encoding,
// which is skipscan.Filter.Hash for encodings made by MarshalBinary.
// Templates are never navigated, every scan gets a clone.
type filterCache struct {
	lru     *lru.Cache
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func newFilterCache(size int, logger *zap.Logger, m *metrics.Metrics) (*filterCache, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &filterCache{lru: c, logger: logger, metrics: m}, nil
}

// get returns a filter with a fresh cursor for the encoded filter raw.
func (c *filterCache) get(raw []byte) (*skipscan.Filter, error) {
	h := xxhash.Sum64(raw)
	if v, ok := c.lru.Get(h); ok {
		if e := v.(*cachedFilter); bytes.Equal(e.raw, raw) {
			c.metrics.FilterCacheHit()
			return e.filter.Clone(), nil
		}
	}

	v, err, _ := c.group.Do(string(raw), func() (interface{}, error) {
		f, err := skipscan.Read(bytes.NewReader(raw), skipscan.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		e := &cachedFilter{raw: append([]byte(nil), raw...), filter: f}
		c.lru.Add(h, e)
		c.logger.Sugar().Debugw("filter decoded", "fingerprint", fmt.Sprintf("%016x", h), "filter", f.String())
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cachedFilter).filter.Clone(), nil
}
