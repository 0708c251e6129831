package offline

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Strategy resolves an intercepted request to a response.
type Strategy interface {
	Execute(ctx context.Context, req *http.Request) (*Response, error)
}

// CacheFirstStrategy serves from the cache when possible and falls back to the network.
// Network responses are not written back to the cache.
type CacheFirstStrategy struct {
	storage *CacheStorage
	fetcher Fetcher
	logger  *zap.Logger
}

// NewCacheFirstStrategy creates a cache-first strategy.
func NewCacheFirstStrategy(storage *CacheStorage, fetcher Fetcher, logger *zap.Logger) *CacheFirstStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheFirstStrategy{storage: storage, fetcher: fetcher, logger: logger}
}

func (s *CacheFirstStrategy) Execute(ctx context.Context, req *http.Request) (*Response, error) {
	cached, ok, err := s.storage.Match(ctx, req)
	if err != nil {
		s.logger.Warn("Cache lookup failed", zap.String("url", req.URL.String()), zap.Error(err))
	}
	if ok {
		s.logger.Info("Cache hit", zap.String("url", req.URL.String()))
		return cached, nil
	}

	s.logger.Info("Cache miss, fetching", zap.String("url", req.URL.String()))
	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		s.logger.Error("Fetch failed", zap.Error(err))
		return nil, err
	}
	return resp, nil
}
