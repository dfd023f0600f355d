package recipe

import (
	"context"
	"errors"
	"fmt"

	"pantry-chef/internal/core/search"
	"pantry-chef/internal/pkg/common"
	"pantry-chef/internal/pkg/fallback"

	"go.uber.org/zap"
)

// ErrNoIngredients 正規化後沒有任何食材
var ErrNoIngredients = errors.New("at least one ingredient is required")

// Service 分層搜尋食譜：依序執行查詢計畫，第一個有可用結果的查詢即停止
type Service struct {
	searcher search.Searcher
}

// NewService 創建食譜服務；searcher 為 nil 時直接使用備用食譜
func NewService(searcher search.Searcher) *Service {
	return &Service{searcher: searcher}
}

// Generate 依食材產生食譜。只有在沒有食材時回傳錯誤，其餘失敗都退回備用食譜
func (s *Service) Generate(ctx context.Context, ingredients []string) (*Result, error) {
	names := search.NormalizeIngredients(ingredients)
	if len(names) == 0 {
		return nil, ErrNoIngredients
	}

	var traces []AttemptTrace
	if s.searcher != nil {
		plan := search.BuildTieredQueries(names)
		attempts := make([]fallback.Attempt[[]search.RawResult], len(plan))
		for i, query := range plan {
			attempts[i] = fallback.Attempt[[]search.RawResult]{
				Name: query,
				Run: func(ctx context.Context) ([]search.RawResult, error) {
					trace := AttemptTrace{Query: query}
					results, err := s.attempt(ctx, query, names, &trace)
					if err != nil {
						trace.Error = err.Error()
					}
					traces = append(traces, trace)
					return results, err
				},
			}
		}

		res, err := fallback.Run(ctx, attempts, fallback.AlwaysContinue)
		if err == nil {
			used := res.Name
			recipes := MapResults(res.Value)
			common.LogInfo("recipe search succeeded",
				zap.String("query", used),
				zap.Int("attempts", len(traces)),
				zap.Int("recipes", len(recipes)),
			)
			return &Result{
				Recipes:   recipes,
				Message:   foundMessage(len(recipes)),
				UsedQuery: &used,
				Attempts:  len(traces),
				Debug:     traces,
			}, nil
		}

		common.LogWarn("all recipe search queries failed, using fallback catalog",
			zap.Int("attempts", len(traces)),
			zap.Error(err),
		)
	}

	recipes := MatchCatalog(names)
	return &Result{
		Recipes:  recipes,
		Message:  foundMessage(len(recipes)),
		Attempts: len(traces),
		Debug:    traces,
	}, nil
}

// attempt 執行單一查詢並過濾；沒有可用結果時返回錯誤讓下一個查詢接手
func (s *Service) attempt(ctx context.Context, query string, names []string, trace *AttemptTrace) ([]search.RawResult, error) {
	resp, err := s.searcher.Search(ctx, query)
	if err != nil {
		common.LogWarn("recipe search attempt failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	trace.Status = resp.Status
	if !resp.OK {
		common.LogWarn("recipe search returned error status",
			zap.String("query", query),
			zap.Int("status", resp.Status),
		)
		return nil, fmt.Errorf("search provider returned status %d", resp.Status)
	}
	if resp.Payload.ParseError {
		return nil, fmt.Errorf("search provider returned unparseable body: %w", search.ErrNoUsableResults)
	}

	trace.RawCount = len(resp.Payload.Results)
	filtered := search.FilterAndRank(resp.Payload.Results, names)
	trace.FilteredCount = len(filtered)

	if len(filtered) == 0 {
		common.LogDebug("no usable results for query",
			zap.String("query", query),
			zap.Int("raw", trace.RawCount),
		)
		return nil, search.ErrNoUsableResults
	}

	return filtered, nil
}

func foundMessage(n int) string {
	return fmt.Sprintf("Found %d recipes for your ingredients", n)
}
