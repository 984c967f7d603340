package dto

// SuccessResponse - body for successful writes
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse - body for 4xx/5xx responses
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewSuccess(message string) SuccessResponse {
	return SuccessResponse{Success: true, Message: message}
}

func NewError(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// WSEvent is one message pushed to dashboard websocket clients
type WSEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
