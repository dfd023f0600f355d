package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"pantry-chef/internal/core/search"
	"pantry-chef/internal/pkg/common"

	"go.uber.org/zap"
)

// Searcher 以查詢字串為鍵快取搜尋回應，只快取成功且可解析的回應
type Searcher struct {
	next    search.Searcher
	backend Backend
}

// NewSearcher 包裝 next
func NewSearcher(next search.Searcher, backend Backend) *Searcher {
	return &Searcher{next: next, backend: backend}
}

// Search 先查快取，未命中再呼叫下游
func (s *Searcher) Search(ctx context.Context, query string) (*search.Response, error) {
	key := searchKey(query)

	cached, err := s.backend.Get(ctx, key)
	switch {
	case err == nil:
		var resp search.Response
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			common.LogDebug("search cache hit", zap.String("query", query))
			return &resp, nil
		}
		common.LogWarn("discarding corrupt search cache entry", zap.String("query", query))
	case !errors.Is(err, ErrCacheMiss):
		common.LogWarn("search cache lookup failed", zap.String("query", query), zap.Error(err))
	}

	resp, err := s.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if resp.OK && !resp.Payload.ParseError {
		data, err := json.Marshal(resp)
		if err == nil {
			err = s.backend.Set(ctx, key, string(data))
		}
		if err != nil {
			common.LogWarn("search cache store failed", zap.String("query", query), zap.Error(err))
		}
	}

	return resp, nil
}

func searchKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "search:" + hex.EncodeToString(sum[:])
}
