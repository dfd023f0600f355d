package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attempt(name string, value string, err error, calls *[]string) Attempt[string] {
	return Attempt[string]{
		Name: name,
		Run: func(ctx context.Context) (string, error) {
			*calls = append(*calls, name)
			return value, err
		},
	}
}

func TestRun_FirstSuccessShortCircuits(t *testing.T) {
	var calls []string
	res, err := Run(context.Background(), []Attempt[string]{
		attempt("a", "A", nil, &calls),
		attempt("b", "B", nil, &calls),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "A", res.Value)
	assert.Equal(t, "a", res.Name)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{"a"}, calls)
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	var calls []string
	res, err := Run(context.Background(), []Attempt[string]{
		attempt("a", "", errors.New("boom"), &calls),
		attempt("b", "B", nil, &calls),
	}, AlwaysContinue)

	require.NoError(t, err)
	assert.Equal(t, "B", res.Value)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "a", res.Failures[0].Name)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestRun_AbortStopsImmediately(t *testing.T) {
	fatal := errors.New("bad request")
	var calls []string
	_, err := Run(context.Background(), []Attempt[string]{
		attempt("a", "", fatal, &calls),
		attempt("b", "B", nil, &calls),
	}, func(error) Decision { return Abort })

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.True(t, ex.Aborted)
	assert.Equal(t, []string{"a"}, ex.Tried())
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, []string{"a"}, calls)
}

func TestRun_ExhaustedAggregatesEveryCandidate(t *testing.T) {
	var calls []string
	_, err := Run(context.Background(), []Attempt[string]{
		attempt("a", "", errors.New("first"), &calls),
		attempt("b", "", errors.New("second"), &calls),
	}, nil)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.False(t, ex.Aborted)
	assert.Equal(t, []string{"a", "b"}, ex.Tried())
	assert.EqualError(t, ex.Last(), "second")
	assert.Contains(t, err.Error(), "tried: a, b")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	_, err := Run(ctx, []Attempt[string]{attempt("a", "A", nil, &calls)}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}

func TestRun_NoAttempts(t *testing.T) {
	_, err := Run[string](context.Background(), nil, nil)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Empty(t, ex.Tried())
	assert.Nil(t, ex.Last())
}
