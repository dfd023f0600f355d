package common

import (
	"errors"
	"net/http"
)

// ErrorResponse API 錯誤響應結構
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// CustomError 自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Wrap 以預定義錯誤為模板包裝底層錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// Response 轉為 API 錯誤響應，detail 取自底層錯誤
func (e *CustomError) Response() ErrorResponse {
	resp := ErrorResponse{Error: e.Message, Code: e.Code}
	if e.Err != nil {
		resp.Detail = e.Err.Error()
	}
	return resp
}

// AsCustomError 取出錯誤鏈中的 CustomError，找不到時包成內部錯誤
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"
	ErrCodeTooLarge        = "PAYLOAD_TOO_LARGE"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeServiceUnavail  = "SERVICE_UNAVAILABLE"
	ErrCodeGatewayTimeout  = "GATEWAY_TIMEOUT"
	ErrCodeParseFailed     = "RECEIPT_PARSE_FAILED"
	ErrCodeInvalidImage    = "INVALID_IMAGE"
	ErrCodeMissingAPIKey   = "MISSING_API_KEY"
	ErrCodeProviderFailure = "PROVIDER_FAILURE"
)

// 預定義錯誤
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "Invalid request", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "Resource not found", http.StatusNotFound, nil)
	ErrRequestTimeout     = NewError(ErrCodeRequestTimeout, "Request timeout", http.StatusRequestTimeout, nil)
	ErrPayloadTooLarge    = NewError(ErrCodeTooLarge, "Payload too large", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavail, "Service temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "Gateway timeout", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrInvalidImage       = NewError(ErrCodeInvalidImage, "Only PNG, JPG, JPEG, or WEBP images are allowed", http.StatusBadRequest, nil)
	ErrReceiptParseFailed = NewError(ErrCodeParseFailed, "Gemini parsing failed", http.StatusInternalServerError, nil)
	ErrMissingAPIKey      = NewError(ErrCodeMissingAPIKey, "Missing provider API key", http.StatusBadRequest, nil)
	ErrProviderFailure    = NewError(ErrCodeProviderFailure, "Upstream provider request failed", http.StatusBadGateway, nil)
)
