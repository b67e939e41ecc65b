package models

import "errors"

var (
	// auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrDuplicateEmail     = errors.New("email already registered")

	// lead errors
	ErrInvalidPageSize = errors.New("page_size must be greater than 0")
	ErrNotFound        = errors.New("not found")
)
