package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidLimit        = "limit must be a positive integer"
	ErrInvalidSessionID    = "Invalid session id"
	ErrUnauthorized        = "Unauthorized"
	ErrSessionTimedOut     = "session timed out"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"

	defaultDifficultLimit = 10
	maxListLimit          = 100
)
