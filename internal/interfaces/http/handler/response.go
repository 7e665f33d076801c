package handler

import "github.com/globoesim/gateway/internal/interfaces/http/dto"

// APIResponse is the success envelope with a typed data field
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the error envelope
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
