package elnk

// Result is the uniform envelope every operation can be reduced to.
// Data is meaningful when Success is true, Message otherwise.
type Result[T any] struct {
	Success    bool   `json:"success"`
	Data       T      `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// NewResult builds the envelope for the (data, err) pair returned by a Client method.
func NewResult[T any](data T, err error) Result[T] {
	if err != nil {
		return Result[T]{
			Success:    false,
			Message:    ErrorMessage(err),
			StatusCode: StatusCode(err),
		}
	}
	return Result[T]{Success: true, Data: data}
}

// Succeeded builds a successful envelope carrying only a message,
// as returned for deletes.
func Succeeded(message string) Result[struct{}] {
	return Result[struct{}]{Success: true, Message: message}
}
