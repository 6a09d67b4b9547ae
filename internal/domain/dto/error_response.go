package dto

import "time"

// ErrorResponse is the standard error body of every failed request.
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid amount"`
	ErrorDetails string    `json:"error,omitempty" example:"amount must be a non-negative number"`
	Timestamp    time.Time `json:"timestamp" example:"2025-09-11T10:00:00Z"`
}

// NewErrorResponse builds an ErrorResponse with the current UTC time.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
