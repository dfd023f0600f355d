// Package fallback runs an ordered list of attempts and returns the first
// success. A classifier decides after each failure whether the next attempt
// is worth trying or the whole sequence should stop.
package fallback

import (
	"context"
	"fmt"
	"strings"
)

// Decision 失敗後的下一步
type Decision int

const (
	// Continue 嘗試下一個候選
	Continue Decision = iota
	// Abort 立即停止，剩餘候選不會被嘗試
	Abort
)

// Attempt 一個具名的嘗試
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Classifier 依錯誤決定繼續或中止
type Classifier func(err error) Decision

// AlwaysContinue 所有錯誤都嘗試下一個候選
func AlwaysContinue(error) Decision { return Continue }

// Failure 單次嘗試的失敗紀錄
type Failure struct {
	Name string
	Err  error
}

// ExhaustedError 所有候選失敗或被中止時的彙總錯誤
type ExhaustedError struct {
	Failures []Failure
	Aborted  bool
}

// Tried 已嘗試的候選名稱（依順序）
func (e *ExhaustedError) Tried() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Name
	}
	return names
}

// Last 最後一個底層錯誤
func (e *ExhaustedError) Last() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("all candidates failed (tried: %s)", strings.Join(e.Tried(), ", "))
	if last := e.Last(); last != nil {
		msg += ": " + last.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last()
}

// Result 成功結果與成功前的失敗紀錄
type Result[T any] struct {
	Value    T
	Name     string
	Failures []Failure
}

// Run 依序執行 attempts，第一個成功即返回。
// classify 為 nil 時等同 AlwaysContinue。context 取消會立即中止。
func Run[T any](ctx context.Context, attempts []Attempt[T], classify Classifier) (*Result[T], error) {
	if classify == nil {
		classify = AlwaysContinue
	}

	var failures []Failure
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Failure{Name: a.Name, Err: err})
			return nil, &ExhaustedError{Failures: failures, Aborted: true}
		}

		value, err := a.Run(ctx)
		if err == nil {
			return &Result[T]{Value: value, Name: a.Name, Failures: failures}, nil
		}

		failures = append(failures, Failure{Name: a.Name, Err: err})
		if classify(err) == Abort {
			return nil, &ExhaustedError{Failures: failures, Aborted: true}
		}
	}

	return nil, &ExhaustedError{Failures: failures}
}
