package serverutils

// BaseResponse is the envelope every JSON endpoint answers with
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// RetryableErrorResponse marks failures the client may retry as-is
func RetryableErrorResponse(code int, message string) BaseResponse[map[string]bool] {
	return BaseResponse[map[string]bool]{
		Success: false,
		Code:    code,
		Message: message,
		Data:    map[string]bool{"retryable": true},
	}
}
