package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIngredients(t *testing.T) {
	in := []string{" Chicken ", "RICE", "", "chicken", "  ", "garlic"}
	assert.Equal(t, []string{"chicken", "rice", "garlic"}, NormalizeIngredients(in))
	assert.Equal(t, []string{" Chicken ", "RICE", "", "chicken", "  ", "garlic"}, in, "input must not change")

	many := make([]string, 12)
	for i := range many {
		many[i] = fmt.Sprintf("item%d", i)
	}
	assert.Len(t, NormalizeIngredients(many), MaxIngredients)
}

func TestBuildTieredQueries_ChickenRice(t *testing.T) {
	queries := BuildTieredQueries([]string{"chicken", "rice"})
	require.NotEmpty(t, queries)

	first := queries[0]
	assert.Contains(t, first, "chicken")
	assert.Contains(t, first, "rice")
	assert.Contains(t, first, siteClause())

	last := queries[len(queries)-1]
	assert.True(t, strings.HasPrefix(last, "recipe chicken rice -site:instagram.com"), last)
	assert.NotContains(t, last, "site:allrecipes.com")
}

func TestBuildTieredQueries_Templates(t *testing.T) {
	queries := BuildTieredQueries([]string{"egg", "spinach"})

	wantPrefixes := []string{
		"recipe egg spinach (",
		"easy egg recipe (",
		"quick egg recipe (",
		"healthy egg recipe (",
		"egg and spinach recipe (",
		"egg with spinach (",
		"egg recipe -site:",
		"recipe egg spinach -site:",
	}
	require.Len(t, queries, len(wantPrefixes))
	for i, prefix := range wantPrefixes {
		assert.True(t, strings.HasPrefix(queries[i], prefix), "query %d = %q", i, queries[i])
	}
}

func TestBuildTieredQueries_SingleIngredient(t *testing.T) {
	queries := BuildTieredQueries([]string{"Tofu"})

	for _, q := range queries {
		assert.NotContains(t, q, " and ")
		assert.NotContains(t, q, " with ")
	}
	assert.Equal(t, "recipe tofu "+excludeClause(), queries[len(queries)-1])
	assert.Equal(t, "tofu recipe "+excludeClause(), queries[len(queries)-2])
}

func TestBuildTieredQueries_Empty(t *testing.T) {
	assert.Empty(t, BuildTieredQueries(nil))
	assert.Empty(t, BuildTieredQueries([]string{" ", ""}))
}

func TestBuildTieredQueries_Deterministic(t *testing.T) {
	in := []string{"beef", "onion", "carrot", "potato", "garlic"}
	assert.Equal(t, BuildTieredQueries(in), BuildTieredQueries(in))
}

func TestBuildTieredQueries_CapAndDuplicates(t *testing.T) {
	base := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}
	noisy := append([]string{"A1", " a2 ", "a1"}, base...)
	noisy = append(noisy, "a9", "a10")

	assert.Equal(t, BuildTieredQueries(base), BuildTieredQueries(noisy))
	for _, q := range BuildTieredQueries(noisy) {
		assert.NotContains(t, q, "a9")
	}
}

func TestBuildTieredQueries_TierOrderAndCaps(t *testing.T) {
	names := []string{"beef", "onion", "carrot", "potato", "garlic"}
	queries := BuildTieredQueries(names)

	tier := func(q string) int {
		switch {
		case strings.HasPrefix(q, "recipe ") && strings.Contains(q, "(site:"):
			terms := strings.Fields(strings.SplitN(q, " (", 2)[0])
			if len(terms) == 4 {
				return 0
			}
			return 1
		case strings.Contains(q, "(site:"):
			return 2
		case strings.HasPrefix(q, "recipe "):
			return 4
		default:
			return 3
		}
	}

	counts := map[int]int{}
	prev := 0
	for _, q := range queries {
		cur := tier(q)
		assert.GreaterOrEqual(t, cur, prev, "tier order broken at %q", q)
		prev = cur
		counts[cur]++
	}
	assert.Equal(t, MaxTripleQueries, counts[0])
	assert.Equal(t, MaxPairQueries, counts[1])
	assert.Equal(t, 1, counts[4])

	assert.True(t, strings.HasPrefix(queries[0], "recipe beef onion carrot ("))
	assert.True(t, strings.HasPrefix(queries[MaxTripleQueries], "recipe beef onion ("))
}

func TestBuildTieredQueries_NoDuplicates(t *testing.T) {
	queries := BuildTieredQueries([]string{"a", "b", "c", "d", "e", "f", "g", "h"})
	seen := map[string]bool{}
	for _, q := range queries {
		assert.False(t, seen[q], "duplicate %q", q)
		seen[q] = true
	}
}

func TestCombinations(t *testing.T) {
	items := []string{"a", "b", "c", "d"}

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"a", "b", "d"}, {"a", "c", "d"}, {"b", "c", "d"}},
		combinations(items, 3, 10))
	assert.Equal(t, [][]string{{"a", "b"}, {"a", "c"}}, combinations(items, 2, 2))
	assert.Nil(t, combinations(items, 5, 10))
	assert.Nil(t, combinations(items, 2, 0))
}
