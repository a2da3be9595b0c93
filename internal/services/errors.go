package services

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrUserExists     = errors.New("user already exists")
	ErrInvalidRequest = errors.New("invalid request")
)
