package provider

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// Outcome 一次呼叫的結果分類
type Outcome int

const (
	// OutcomeSuccess 成功
	OutcomeSuccess Outcome = iota
	// OutcomeNotFound 模型不存在或不支援，換下一個模型可能成功
	OutcomeNotFound
	// OutcomeOther 其他錯誤（參數、授權、配額），換模型也不會成功
	OutcomeOther
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// ErrModelNotFound 模型不可用
var ErrModelNotFound = errors.New("model not found")

// notFoundPattern 供應商沒有結構化錯誤碼時的最後手段
var notFoundPattern = regexp.MustCompile(`(?i)not found|404|unsupported|not supported|no such model`)

// StatusError 供應商回傳非 2xx
type StatusError struct {
	Provider   string
	Model      string
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s model %s returned status %d: %s", e.Provider, e.Model, e.StatusCode, e.Message)
}

// Classify 先看狀態碼，再退回訊息比對
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, ErrModelNotFound) {
		return OutcomeNotFound
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusNotFound:
			return OutcomeNotFound
		case http.StatusBadRequest:
			// 部分模型對 generateContent 回 400 "not supported"
			if notFoundPattern.MatchString(se.Message) {
				return OutcomeNotFound
			}
		}
		return OutcomeOther
	}

	if notFoundPattern.MatchString(err.Error()) {
		return OutcomeNotFound
	}
	return OutcomeOther
}

// ParseRetryAfter 解析 Retry-After 秒數，無效時為 0
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
