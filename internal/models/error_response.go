package models

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	StatusCode int      `json:"-"`
	Message    string   `json:"reason"`
	Details    []string `json:"details,omitempty"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// WithDetails добавляет к ошибке список уточнений (например, ошибки валидации полей).
func (e *ErrorResponse) WithDetails(details []string) *ErrorResponse {
	e.Details = details
	return e
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}
